package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisSink(t *testing.T) *RedisSink {
	t.Helper()
	srv := miniredis.RunT(t)
	sink, err := NewRedisSink(RedisSinkConfig{Addr: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })
	return sink
}

func TestRedisSink_PersistAndLoad(t *testing.T) {
	t.Parallel()
	sink := newTestRedisSink(t)
	ctx := context.Background()

	require.NoError(t, sink.Persist(ctx, sampleSnapshot("s1", 1)))
	require.NoError(t, sink.Persist(ctx, sampleSnapshot("s1", 2)))

	snap, err := sink.Load(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	// Latest persist wins; snapshots are not versioned in Redis.
	assert.Equal(t, 2, snap.Iteration)
	require.Len(t, snap.Conflicts, 1)
	assert.Equal(t, "cf-deadbeef-1", snap.Conflicts[0].ConflictID)
}

func TestRedisSink_LoadUnknownSession(t *testing.T) {
	t.Parallel()
	sink := newTestRedisSink(t)

	snap, err := sink.Load(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestRedisSink_TTLExpiresSnapshot(t *testing.T) {
	t.Parallel()
	srv := miniredis.RunT(t)
	sink, err := NewRedisSink(RedisSinkConfig{Addr: srv.Addr(), TTL: time.Minute})
	require.NoError(t, err)
	defer sink.Close()

	ctx := context.Background()
	require.NoError(t, sink.Persist(ctx, sampleSnapshot("s1", 1)))

	srv.FastForward(2 * time.Minute)

	snap, err := sink.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestRedisSink_ConnectFailure(t *testing.T) {
	t.Parallel()
	_, err := NewRedisSink(RedisSinkConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

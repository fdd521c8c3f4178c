package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMirror(t *testing.T) *RedisMirror {
	t.Helper()
	srv := miniredis.RunT(t)
	m, err := NewRedisMirror(RedisMirrorConfig{Addr: srv.Addr()}, "sess-1")
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestRedisMirror_AppendAndHistory(t *testing.T) {
	t.Parallel()
	m := newTestMirror(t)

	r1 := resp("w1", 0.9, "policy X applies")
	r2 := resp("w1", 0.4, "updated view")
	require.NoError(t, m.MirrorAppend("w1", r1))
	require.NoError(t, m.MirrorAppend("w1", r2))

	history, err := m.History(context.Background(), "w1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "policy X applies", history[0].Content)
	assert.Equal(t, 0.4, history[1].Confidence)
}

func TestRedisMirror_WiredThroughLedger(t *testing.T) {
	t.Parallel()
	m := newTestMirror(t)
	l := New(zap.NewNop(), WithMirror(m))

	require.NoError(t, l.Append("w2", resp("w2", 0.6, "answer")))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	history, err := m.History(ctx, "w2")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "answer", history[0].Content)
}

func TestRedisMirror_ConnectFailure(t *testing.T) {
	t.Parallel()
	_, err := NewRedisMirror(RedisMirrorConfig{Addr: "127.0.0.1:1"}, "sess-1")
	assert.Error(t, err)
}

package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chorus-ai/chorus/agent/session"
)

// RedisSink keeps the latest snapshot of each session in a Redis key so
// external dashboards can poll live session progress.
type RedisSink struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisSinkConfig configures a RedisSink.
type RedisSinkConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	// TTL expires stale snapshots; zero keeps them forever.
	TTL time.Duration
}

// NewRedisSink connects to Redis and verifies the connection.
func NewRedisSink(cfg RedisSinkConfig) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "chorus:"
	}
	return &RedisSink{
		client:    client,
		keyPrefix: prefix + "session:",
		ttl:       cfg.TTL,
	}, nil
}

func (s *RedisSink) sessionKey(sessionID string) string {
	return s.keyPrefix + sessionID
}

// Persist overwrites the session's snapshot key.
func (s *RedisSink) Persist(ctx context.Context, snap *session.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.client.Set(ctx, s.sessionKey(snap.SessionID), data, s.ttl).Err()
}

// Load reads back the last persisted snapshot for a session. Returns
// nil without error when the session is unknown or expired.
func (s *RedisSink) Load(ctx context.Context, sessionID string) (*session.Snapshot, error) {
	raw, err := s.client.Get(ctx, s.sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap session.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Close releases the Redis connection.
func (s *RedisSink) Close() error {
	return s.client.Close()
}

var _ Sink = (*RedisSink)(nil)

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chorus-ai/chorus/types"
)

// RedisMirror duplicates ledger appends into a Redis list per worker,
// so a running session can be inspected out of process and a crashed
// session's history survives for audit. It is write-only from the
// engine's point of view; the in-memory ledger stays authoritative.
type RedisMirror struct {
	client    *redis.Client
	keyPrefix string
	sessionID string
	timeout   time.Duration
	ttl       time.Duration
}

// RedisMirrorConfig configures a RedisMirror.
type RedisMirrorConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
	// Timeout bounds each mirror write; the ledger never waits longer.
	Timeout time.Duration `yaml:"timeout"`
	// TTL expires mirrored history; zero keeps it forever.
	TTL time.Duration `yaml:"ttl"`
}

// NewRedisMirror connects to Redis and verifies the connection.
func NewRedisMirror(cfg RedisMirrorConfig, sessionID string) (*RedisMirror, error) {
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
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return &RedisMirror{
		client:    client,
		keyPrefix: prefix + "ledger:",
		sessionID: sessionID,
		timeout:   timeout,
		ttl:       cfg.TTL,
	}, nil
}

func (m *RedisMirror) workerKey(workerID string) string {
	return m.keyPrefix + m.sessionID + ":" + workerID
}

// MirrorAppend pushes the serialized response onto the worker's list.
func (m *RedisMirror) MirrorAppend(workerID string, resp *types.AgentResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	key := m.workerKey(workerID)
	pipe := m.client.Pipeline()
	pipe.RPush(ctx, key, data)
	if m.ttl > 0 {
		pipe.Expire(ctx, key, m.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// History reads back the mirrored history for a worker. Used by audit
// tooling, not by the engine itself.
func (m *RedisMirror) History(ctx context.Context, workerID string) ([]*types.AgentResponse, error) {
	raw, err := m.client.LRange(ctx, m.workerKey(workerID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*types.AgentResponse, 0, len(raw))
	for _, item := range raw {
		var resp types.AgentResponse
		if err := json.Unmarshal([]byte(item), &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mirrored response: %w", err)
		}
		out = append(out, &resp)
	}
	return out, nil
}

// Close releases the Redis connection.
func (m *RedisMirror) Close() error {
	return m.client.Close()
}

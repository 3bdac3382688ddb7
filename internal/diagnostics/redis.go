package diagnostics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leofalp/agentswarm/core/recovery"
)

const (
	defaultKeyPrefix = "agentswarm:diagnostics:"
	defaultTTL       = 7 * 24 * time.Hour
	defaultRecent    = 100
)

// ErrNotFound is returned by RedisSink.Load for an unknown correlation id.
var ErrNotFound = errors.New("diagnostics entry not found")

// RedisSink stores entries as JSON strings with a TTL and keeps the most
// recent correlation ids in a capped list.
type RedisSink struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
	recent    int64
	now       func() time.Time
}

var _ recovery.Sink = (*RedisSink)(nil)

// RedisOption configures a RedisSink.
type RedisOption func(*RedisSink)

// WithKeyPrefix sets the key prefix. Default "agentswarm:diagnostics:".
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisSink) {
		s.keyPrefix = prefix
	}
}

// WithTTL sets how long entries are kept. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisSink) {
		s.ttl = ttl
	}
}

// WithRecent caps the list of recent correlation ids.
func WithRecent(n int64) RedisOption {
	return func(s *RedisSink) {
		s.recent = n
	}
}

// NewRedisSink wraps an existing client.
func NewRedisSink(client redis.UniversalClient, opts ...RedisOption) *RedisSink {
	s := &RedisSink{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       defaultTTL,
		recent:    defaultRecent,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DialRedisSink connects to the redis:// URL and checks the connection.
func DialRedisSink(ctx context.Context, url string, opts ...RedisOption) (*RedisSink, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisSink(client, opts...), nil
}

func (s *RedisSink) entryKey(id string) string {
	return s.keyPrefix + "entry:" + safeName(id)
}

func (s *RedisSink) recentKey() string {
	return s.keyPrefix + "recent"
}

func (s *RedisSink) Persist(ctx context.Context, correlationID string, report *recovery.FailureReport) error {
	entry := NewEntry(correlationID, report, s.now())
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal diagnostics entry: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.entryKey(entry.CorrelationID), data, s.ttl)
	pipe.LPush(ctx, s.recentKey(), entry.CorrelationID)
	if s.recent > 0 {
		pipe.LTrim(ctx, s.recentKey(), 0, s.recent-1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store diagnostics entry: %w", err)
	}
	return nil
}

// Load returns the entry stored for correlationID.
func (s *RedisSink) Load(ctx context.Context, correlationID string) (*Entry, error) {
	data, err := s.client.Get(ctx, s.entryKey(correlationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode diagnostics entry: %w", err)
	}
	return &entry, nil
}

// Recent returns up to n of the latest correlation ids, newest first.
func (s *RedisSink) Recent(ctx context.Context, n int64) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	return s.client.LRange(ctx, s.recentKey(), 0, n-1).Result()
}

// Ping checks the connection.
func (s *RedisSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"noisyspell/internal/corrector"
	"noisyspell/internal/langmodel"
)

const DefaultRedisKey = "noisyspell:snapshot"

// RedisStore keeps one snapshot blob under a Redis key, so trained models
// can be shared between server instances.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

// WithKey overrides DefaultRedisKey.
func WithKey(key string) RedisOption {
	return func(s *RedisStore) { s.key = key }
}

// WithTTL expires published snapshots after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, key: DefaultRedisKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Key() string { return s.key }

// Put publishes m, replacing any previous snapshot.
func (s *RedisStore) Put(ctx context.Context, m *corrector.Model) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("snapshot publish %s: %w", s.key, err)
	}
	return nil
}

// Get fetches and decodes the published snapshot.
func (s *RedisStore) Get(ctx context.Context, opts ...langmodel.Option) (*corrector.Model, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: redis key %s", ErrNotFound, s.key)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot fetch %s: %w", s.key, err)
	}
	return Unmarshal(data, opts...)
}

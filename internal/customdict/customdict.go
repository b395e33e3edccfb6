package customdict

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

const DefaultKey = "noisyspell:custom_words"

// CustomDict wraps a Redis client to store custom dictionary words in a set.
type CustomDict struct {
	client *redis.Client
	key    string
}

type Option func(*CustomDict)

// WithKey stores the words under key instead of DefaultKey.
func WithKey(key string) Option {
	return func(cd *CustomDict) { cd.key = key }
}

// New creates a new CustomDict with the provided Redis client.
func New(client *redis.Client, opts ...Option) *CustomDict {
	cd := &CustomDict{client: client, key: DefaultKey}
	for _, opt := range opts {
		opt(cd)
	}
	return cd
}

// Add inserts a word into the custom dictionary.
func (cd *CustomDict) Add(ctx context.Context, word string) error {
	if err := cd.client.SAdd(ctx, cd.key, word).Err(); err != nil {
		return fmt.Errorf("customdict add: %w", err)
	}
	return nil
}

// Remove deletes a word from the custom dictionary.
func (cd *CustomDict) Remove(ctx context.Context, word string) error {
	if err := cd.client.SRem(ctx, cd.key, word).Err(); err != nil {
		return fmt.Errorf("customdict remove: %w", err)
	}
	return nil
}

// Contains reports whether word is in the custom dictionary.
func (cd *CustomDict) Contains(ctx context.Context, word string) (bool, error) {
	ok, err := cd.client.SIsMember(ctx, cd.key, word).Result()
	if err != nil {
		return false, fmt.Errorf("customdict contains: %w", err)
	}
	return ok, nil
}

// All returns all words stored in the custom dictionary, sorted.
func (cd *CustomDict) All(ctx context.Context) ([]string, error) {
	words, err := cd.client.SMembers(ctx, cd.key).Result()
	if err != nil {
		return nil, fmt.Errorf("customdict list: %w", err)
	}
	sort.Strings(words)
	return words, nil
}

// Ping checks the Redis connection.
func (cd *CustomDict) Ping(ctx context.Context) error {
	return cd.client.Ping(ctx).Err()
}

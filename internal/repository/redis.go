package repository

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionRepository stores short-lived bot test records in Redis. Values are
// opaque text; expiry is enforced store-side via TTL.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *SessionRepository) Close() error {
	return r.client.Close()
}

// Get returns the value stored under key, or empty when the key is absent or
// has expired.
func (r *SessionRepository) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set stores value under key with the given TTL, falling back to the
// repository default when ttl is not positive.
func (r *SessionRepository) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.ttl
	}
	return r.client.SetEX(ctx, key, value, ttl).Err()
}

func (r *SessionRepository) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

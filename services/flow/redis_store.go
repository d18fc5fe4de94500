package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultContextKeyPrefix = "flow:context:"

// RedisContextStore persists booking contexts as JSON under a key prefix,
// the same way the booking session cache works elsewhere in the platform.
// A zero TTL means entries never expire.
type RedisContextStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisStoreOption configures a RedisContextStore.
type RedisStoreOption func(*RedisContextStore)

// WithTTL sets the expiry applied on every Put.
func WithTTL(ttl time.Duration) RedisStoreOption {
	return func(s *RedisContextStore) { s.ttl = ttl }
}

// WithKeyPrefix overrides the default key prefix.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisContextStore) { s.prefix = prefix }
}

// NewRedisContextStore wraps an existing redis client.
func NewRedisContextStore(client *redis.Client, opts ...RedisStoreOption) *RedisContextStore {
	store := &RedisContextStore{
		client: client,
		prefix: defaultContextKeyPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *RedisContextStore) key(bookingID string) string {
	return s.prefix + bookingID
}

func (s *RedisContextStore) Get(ctx context.Context, bookingID string) (*BookingContext, error) {
	data, err := s.client.Get(ctx, s.key(bookingID)).Result()
	if err == redis.Nil {
		return nil, ErrContextNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking context %s: %w", bookingID, err)
	}
	var bc BookingContext
	if err := json.Unmarshal([]byte(data), &bc); err != nil {
		return nil, fmt.Errorf("failed to parse booking context %s: %w", bookingID, err)
	}
	return &bc, nil
}

func (s *RedisContextStore) Put(ctx context.Context, bc *BookingContext) error {
	data, err := json.Marshal(bc)
	if err != nil {
		return fmt.Errorf("failed to marshal booking context %s: %w", bc.BookingID, err)
	}
	if err := s.client.Set(ctx, s.key(bc.BookingID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store booking context %s: %w", bc.BookingID, err)
	}
	return nil
}

func (s *RedisContextStore) Delete(ctx context.Context, bookingID string) error {
	if err := s.client.Del(ctx, s.key(bookingID)).Err(); err != nil {
		return fmt.Errorf("failed to delete booking context %s: %w", bookingID, err)
	}
	return nil
}

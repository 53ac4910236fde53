package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kyrios-fx/backend/internal/domain"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

const pendingKeyPrefix = "registration:pending:"

// RedisPendingStore keeps pending registrations in redis and lets key expiry remove them.
type RedisPendingStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewRedisPendingStore(client redis.UniversalClient, ttl time.Duration, clock clockwork.Clock) *RedisPendingStore {
	return &RedisPendingStore{
		client: client,
		ttl:    ttl,
		clock:  clock,
	}
}

func pendingKey(email string) string {
	return pendingKeyPrefix + email
}

func (s *RedisPendingStore) Admit(ctx context.Context, entry *domain.PendingRegistration) error {
	const op = "cache.RedisPendingStore.Admit"

	ttl := entry.ExpiresIn(s.clock.Now(), s.ttl)
	if ttl <= 0 {
		return fmt.Errorf("%s: %w", op, ErrNoLifetime)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	ok, err := s.client.SetNX(ctx, pendingKey(entry.Email), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("%s: setnx: %w", op, err)
	}
	if !ok {
		return domain.ErrDuplicateEntry
	}
	return nil
}

func (s *RedisPendingStore) Get(ctx context.Context, email string) (*domain.PendingRegistration, error) {
	const op = "cache.RedisPendingStore.Get"

	data, err := s.client.Get(ctx, pendingKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: get: %w", op, err)
	}

	var entry domain.PendingRegistration
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%s: unmarshal: %w", op, err)
	}
	return &entry, nil
}

func (s *RedisPendingStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, pendingKey(email)).Err(); err != nil {
		return fmt.Errorf("cache.RedisPendingStore.Delete: %w", err)
	}
	return nil
}

// Sweep is a no-op, redis expires the keys itself.
func (s *RedisPendingStore) Sweep(context.Context) (int, error) {
	return 0, nil
}

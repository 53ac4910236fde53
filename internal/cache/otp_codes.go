package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kyrios-fx/backend/internal/domain"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

const otpKeyPrefix = "registration:otp:"

type RedisOTPCodes struct {
	client redis.UniversalClient
}

func NewRedisOTPCodes(client redis.UniversalClient) *RedisOTPCodes {
	return &RedisOTPCodes{client: client}
}

func (c *RedisOTPCodes) Set(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := c.client.Set(ctx, otpKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("cache.RedisOTPCodes.Set: %w", err)
	}
	return nil
}

func (c *RedisOTPCodes) Get(ctx context.Context, email string) (string, error) {
	code, err := c.client.Get(ctx, otpKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("cache.RedisOTPCodes.Get: %w", err)
	}
	return code, nil
}

func (c *RedisOTPCodes) Delete(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, otpKey(email)).Err(); err != nil {
		return fmt.Errorf("cache.RedisOTPCodes.Delete: %w", err)
	}
	return nil
}

func otpKey(email string) string {
	return otpKeyPrefix + email
}

type otpItem struct {
	code      string
	expiresAt time.Time
}

// MemoryOTPCodes checks expiry lazily on read.
type MemoryOTPCodes struct {
	mu    sync.Mutex
	codes map[string]otpItem
	clock clockwork.Clock
}

func NewMemoryOTPCodes(clock clockwork.Clock) *MemoryOTPCodes {
	return &MemoryOTPCodes{
		codes: make(map[string]otpItem),
		clock: clock,
	}
}

func (c *MemoryOTPCodes) Set(_ context.Context, email, code string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[email] = otpItem{code: code, expiresAt: c.clock.Now().Add(ttl)}
	return nil
}

func (c *MemoryOTPCodes) Get(_ context.Context, email string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.codes[email]
	if !ok {
		return "", domain.ErrNotFound
	}
	if !c.clock.Now().Before(item.expiresAt) {
		delete(c.codes, email)
		return "", domain.ErrNotFound
	}
	return item.code, nil
}

func (c *MemoryOTPCodes) Delete(_ context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.codes, email)
	return nil
}

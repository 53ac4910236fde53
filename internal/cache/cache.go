package cache

import (
	"context"
	"errors"
	"time"

	"github.com/kyrios-fx/backend/internal/domain"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// ErrNoLifetime is returned by Admit for an entry whose lifetime has already run out.
var ErrNoLifetime = errors.New("pending registration has no lifetime left")

// PendingRegistrations holds registrants between Register and OTP confirmation.
// Entries are keyed by email and disappear ttl after their CreatedAt.
type PendingRegistrations interface {
	// Admit stores entry unless one already exists for the email (domain.ErrDuplicateEntry)
	// or its lifetime is not positive (ErrNoLifetime).
	Admit(ctx context.Context, entry *domain.PendingRegistration) error
	// Get returns domain.ErrNotFound when no entry exists.
	Get(ctx context.Context, email string) (*domain.PendingRegistration, error)
	// Delete is a no-op for absent emails.
	Delete(ctx context.Context, email string) error
	// Sweep drops entries expired at now and returns how many were removed.
	Sweep(ctx context.Context) (int, error)
}

// OTPCodes holds the latest verification code per email.
type OTPCodes interface {
	Set(ctx context.Context, email, code string, ttl time.Duration) error
	// Get returns domain.ErrNotFound when no live code exists.
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

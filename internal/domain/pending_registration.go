package domain

import "time"

// PendingRegistration is a registrant waiting for OTP confirmation.
type PendingRegistration struct {
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Password       string    `json:"password"`
	ReferredByCode string    `json:"referred_by_code,omitempty"`
	ReferralCode   string    `json:"referral_code"`
	Verified       bool      `json:"verified"`
	CreatedAt      time.Time `json:"created_at"`
}

// Expired reports whether the entry is at least ttl old at now.
func (p *PendingRegistration) Expired(now time.Time, ttl time.Duration) bool {
	return !now.Before(p.CreatedAt.Add(ttl))
}

// ExpiresIn is the remaining lifetime, never negative.
func (p *PendingRegistration) ExpiresIn(now time.Time, ttl time.Duration) time.Duration {
	d := p.CreatedAt.Add(ttl).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

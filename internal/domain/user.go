package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleTrader   Role = "trader"
	RoleReferral Role = "referral"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTrader, RoleReferral:
		return true
	}
	return false
}

type Status string

const (
	StatusActive Status = "active"
	StatusHold   Status = "hold"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusHold
}

type Plan string

const (
	PlanA Plan = "plana"
	PlanB Plan = "planb"
	PlanC Plan = "planc"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

type User struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Email          string         `db:"email" json:"email"`
	Phone          string         `db:"phone" json:"phone"`
	PasswordHash   string         `db:"password_hash" json:"-"`
	ReferralCode   string         `db:"referral_code" json:"referral_code"`
	ReferredByCode sql.NullString `db:"referred_by_code" json:"referred_by_code"`
	EmailVerified  bool           `db:"email_verified" json:"email_verified"`
	OTPVerified    bool           `db:"otp_verified" json:"otp_verified"`
	Status         Status         `db:"status" json:"status"`
	Role           Role           `db:"role" json:"role"`

	LoginAttempts        int            `db:"login_attempts" json:"-"`
	LockUntil            *time.Time     `db:"lock_until" json:"-"`
	PasswordResetToken   sql.NullString `db:"password_reset_token" json:"-"`
	PasswordResetExpires *time.Time     `db:"password_reset_expires" json:"-"`

	DOB        *time.Time      `db:"dob" json:"dob,omitempty"`
	Country    sql.NullString  `db:"country" json:"country"`
	MT5ID      sql.NullString  `db:"mt5_id" json:"mt5_id"`
	BrokerName sql.NullString  `db:"broker_name" json:"broker_name"`
	Plan       sql.NullString  `db:"plan" json:"plan"`
	Capital    decimal.Decimal `db:"capital" json:"capital"`

	AdminVerified      bool               `db:"admin_verified" json:"admin_verified"`
	VerificationStatus VerificationStatus `db:"verification_status" json:"verification_status"`

	Version   int        `db:"version" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`

	Referrals Referrals `db:"-" json:"referral"`
}

// ReferrerCode returns the referral code of the user who referred u, or "" for roots.
func (u *User) ReferrerCode() string {
	if !u.ReferredByCode.Valid {
		return ""
	}
	return u.ReferredByCode.String
}

func (u *User) Locked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

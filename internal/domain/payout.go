package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutPending PayoutStatus = "pending"
	PayoutPaid    PayoutStatus = "paid"
)

type PayoutRequest struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount_requested"`
	Status      PayoutStatus    `db:"status" json:"status"`
	RequestedAt time.Time       `db:"requested_at" json:"date_requested"`
	PaidAt      *time.Time      `db:"paid_at" json:"paid_at,omitempty"`
}

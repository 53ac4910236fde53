package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProfitEntry is a fortnightly profit recorded for a user.
type ProfitEntry struct {
	ID        uuid.UUID       `db:"id" json:"profit_entry_id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Date      time.Time       `db:"date" json:"date"`
	Amount    decimal.Decimal `db:"amount" json:"fortnightly_profit"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// ReferralIncentive is the share of a referred user's profit credited to an ancestor.
type ReferralIncentive struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	ProfitEntryID  uuid.UUID       `db:"profit_entry_id" json:"profit_entry_id"`
	OwnerID        uuid.UUID       `db:"owner_id" json:"owner_id"`
	ReferredUserID uuid.UUID       `db:"referred_user_id" json:"referred_user_id"`
	Stage          ReferralStage   `db:"stage" json:"stage"`
	Profit         decimal.Decimal `db:"profit" json:"fortnightly_profit"`
	Incentive      decimal.Decimal `db:"incentive" json:"incentive"`
	Date           time.Time       `db:"date" json:"date"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

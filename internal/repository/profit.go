package repository

import (
	"context"
	"fmt"

	"github.com/kyrios-fx/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type profitRepository struct {
	db *sqlx.DB
}

func newProfitRepository(db *sqlx.DB) *profitRepository {
	return &profitRepository{
		db: db,
	}
}

// Create stores the profit entry together with the incentives it produced.
func (r *profitRepository) Create(ctx context.Context, entry *domain.ProfitEntry, incentives []domain.ReferralIncentive) (err error) {
	const op = "repository.profit.Create"

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx failed: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const entryQuery = `
	INSERT INTO profit_entry (id, user_id, date, amount)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), ?, ?);
	`
	if _, err = tx.ExecContext(ctx, entryQuery, entry.ID, entry.UserID, entry.Date, entry.Amount); err != nil {
		return fmt.Errorf("%s: insert profit entry failed: %w", op, err)
	}

	const incentiveQuery = `
	INSERT INTO referral_incentive (id, profit_entry_id, owner_id, referred_user_id, stage, profit, incentive, date)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), uuid_to_bin(?), uuid_to_bin(?), ?, ?, ?, ?);
	`
	for _, inc := range incentives {
		if _, err = tx.ExecContext(ctx, incentiveQuery,
			inc.ID, inc.ProfitEntryID, inc.OwnerID, inc.ReferredUserID, inc.Stage, inc.Profit, inc.Incentive, inc.Date,
		); err != nil {
			return fmt.Errorf("%s: insert referral incentive failed: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit failed: %w", op, err)
	}
	return nil
}

func (r *profitRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ProfitEntry, error) {
	const query = `
	SELECT id, user_id, date, amount, created_at
	FROM profit_entry WHERE user_id = uuid_to_bin(?)
	ORDER BY date DESC;
	`

	var entries []domain.ProfitEntry
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("repository.profit.ListByUser: select failed: %w", err)
	}
	return entries, nil
}

func (r *profitRepository) ListIncentivesByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.ReferralIncentive, error) {
	const query = `
	SELECT id, profit_entry_id, owner_id, referred_user_id, stage, profit, incentive, date, created_at
	FROM referral_incentive WHERE owner_id = uuid_to_bin(?)
	ORDER BY date DESC;
	`

	var incentives []domain.ReferralIncentive
	if err := r.db.SelectContext(ctx, &incentives, query, ownerID); err != nil {
		return nil, fmt.Errorf("repository.profit.ListIncentivesByOwner: select failed: %w", err)
	}
	return incentives, nil
}

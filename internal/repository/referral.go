package repository

import (
	"context"
	"fmt"

	"github.com/kyrios-fx/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type referralRepository struct {
	db *sqlx.DB
}

func newReferralRepository(db *sqlx.DB) *referralRepository {
	return &referralRepository{
		db: db,
	}
}

// Append relies on the unique (owner_id, stage, referred_user_id) key, so two
// concurrent appends to the same owner cannot both land the same user.
func (r *referralRepository) Append(ctx context.Context, entry *domain.ReferralEntry) (bool, error) {
	const op = "repository.referral.Append"

	const query = `
	INSERT IGNORE INTO user_referral (owner_id, stage, referred_user_id, name, created_at)
	VALUES (uuid_to_bin(?), ?, uuid_to_bin(?), ?, ?);
	`

	result, err := r.db.ExecContext(ctx, query, entry.OwnerID, entry.Stage, entry.UserID, entry.Name, entry.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("%s: insert referral failed: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: rows affected failed: %w", op, err)
	}

	return rows == 1, nil
}

func (r *referralRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.ReferralEntry, error) {
	const query = `
	SELECT owner_id, stage, referred_user_id, name, created_at
	FROM user_referral WHERE owner_id = uuid_to_bin(?)
	ORDER BY seq;
	`

	var entries []domain.ReferralEntry
	if err := r.db.SelectContext(ctx, &entries, query, ownerID); err != nil {
		return nil, fmt.Errorf("repository.referral.ListByOwner: select failed: %w", err)
	}
	return entries, nil
}

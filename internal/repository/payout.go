package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kyrios-fx/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type payoutRepository struct {
	db *sqlx.DB
}

func newPayoutRepository(db *sqlx.DB) *payoutRepository {
	return &payoutRepository{
		db: db,
	}
}

func (r *payoutRepository) Create(ctx context.Context, payout *domain.PayoutRequest) error {
	const query = `
	INSERT INTO payout_request (id, user_id, amount, status, requested_at)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), ?, ?, ?);
	`
	if _, err := r.db.ExecContext(ctx, query, payout.ID, payout.UserID, payout.Amount, payout.Status, payout.RequestedAt); err != nil {
		return fmt.Errorf("db insert payout request: %w", err)
	}
	return nil
}

func (r *payoutRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error) {
	const query = `
	SELECT id, user_id, amount, status, requested_at, paid_at
	FROM payout_request WHERE id = uuid_to_bin(?);
	`
	var payout domain.PayoutRequest
	if err := r.db.GetContext(ctx, &payout, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select payout request by id failed: %w", err)
	}
	return &payout, nil
}

func (r *payoutRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PayoutRequest, error) {
	const query = `
	SELECT id, user_id, amount, status, requested_at, paid_at
	FROM payout_request WHERE user_id = uuid_to_bin(?)
	ORDER BY requested_at DESC;
	`
	var payouts []domain.PayoutRequest
	if err := r.db.SelectContext(ctx, &payouts, query, userID); err != nil {
		return nil, fmt.Errorf("select payout requests failed: %w", err)
	}
	return payouts, nil
}

// MarkPaid only moves pending requests, a second call reports domain.ErrNoRowsAffected.
func (r *payoutRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	const query = `
	UPDATE payout_request SET status = ?, paid_at = ?
	WHERE id = uuid_to_bin(?) AND status = ?;
	`
	result, err := r.db.ExecContext(ctx, query, domain.PayoutPaid, paidAt, id, domain.PayoutPending)
	if err != nil {
		return fmt.Errorf("update payout request failed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected failed: %w", err)
	}
	if rows == 0 {
		return domain.ErrNoRowsAffected
	}
	return nil
}

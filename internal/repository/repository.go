package repository

import (
	"context"
	"time"

	"github.com/kyrios-fx/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Users          Users
	Referrals      Referrals
	Profits        Profits
	Payouts        Payouts
	RefreshSession RefreshSession
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Users:          newUserRepository(db),
		Referrals:      newReferralRepository(db),
		Profits:        newProfitRepository(db),
		Payouts:        newPayoutRepository(db),
		RefreshSession: newRefreshSessionRepository(db),
	}
}

type UserFilter struct {
	Role           *domain.Role
	Status         *domain.Status
	Email          string // substring match
	ReferredByCode string
	SortBy         string // createdAt, name, email
	Order          string // asc, desc
	Limit          int
	Offset         int
}

type Users interface {
	Create(ctx context.Context, user *domain.User) error
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByReferralCode(ctx context.Context, code string) (*domain.User, error)
	GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error)
	// Update writes every mutable column when user.Version still matches and bumps it.
	Update(ctx context.Context, user *domain.User) error
	Count(ctx context.Context, filter UserFilter) (int64, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type Referrals interface {
	// Append reports false when the referred user is already in the owner's sequence.
	Append(ctx context.Context, entry *domain.ReferralEntry) (bool, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.ReferralEntry, error)
}

type Profits interface {
	Create(ctx context.Context, entry *domain.ProfitEntry, incentives []domain.ReferralIncentive) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ProfitEntry, error)
	ListIncentivesByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.ReferralIncentive, error)
}

type Payouts interface {
	Create(ctx context.Context, payout *domain.PayoutRequest) error
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PayoutRequest, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error
}

type RefreshSession interface {
	Create(ctx context.Context, session *domain.RefreshSession) error
	GetByToken(ctx context.Context, token uuid.UUID) (*domain.RefreshSession, error)
	DeleteByToken(ctx context.Context, token uuid.UUID) error
}

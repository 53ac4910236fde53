package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/repository"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
)

type payoutService struct {
	userRepository   repository.Users
	payoutRepository repository.Payouts
	clock            clockwork.Clock
}

func newPayoutService(userRepository repository.Users, payoutRepository repository.Payouts, clock clockwork.Clock) *payoutService {
	return &payoutService{
		userRepository:   userRepository,
		payoutRepository: payoutRepository,
		clock:            clock,
	}
}

func (s *payoutService) RequestPayout(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.PayoutRequest, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if _, err := getUser(ctx, s.userRepository, userID); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate payout id failed: %w", err)
	}
	payout := &domain.PayoutRequest{
		ID:          id,
		UserID:      userID,
		Amount:      amount.Round(moneyPlaces),
		Status:      domain.PayoutPending,
		RequestedAt: s.clock.Now(),
	}
	if err := s.payoutRepository.Create(ctx, payout); err != nil {
		return nil, fmt.Errorf("create payout request failed: %w", err)
	}
	return payout, nil
}

func (s *payoutService) ListPayouts(ctx context.Context, userID uuid.UUID) ([]domain.PayoutRequest, error) {
	payouts, err := s.payoutRepository.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list payouts failed: %w", err)
	}
	return payouts, nil
}

// MarkPaid moves a pending request to paid exactly once.
func (s *payoutService) MarkPaid(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error) {
	payout, err := s.payoutRepository.GetOneByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrPayoutNotFound
		}
		return nil, fmt.Errorf("get payout request failed: %w", err)
	}
	if payout.Status == domain.PayoutPaid {
		return nil, ErrPayoutAlreadyPaid
	}

	paidAt := s.clock.Now()
	if err := s.payoutRepository.MarkPaid(ctx, id, paidAt); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return nil, ErrPayoutAlreadyPaid
		}
		return nil, fmt.Errorf("mark payout paid failed: %w", err)
	}

	payout.Status = domain.PayoutPaid
	payout.PaidAt = &paidAt
	return payout, nil
}

package service

import (
	"context"
	"fmt"

	"github.com/kyrios-fx/backend/internal/config"
	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/repository"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

type profitService struct {
	userRepository   repository.Users
	profitRepository repository.Profits
	clock            clockwork.Clock
	rates            map[domain.ReferralStage]decimal.Decimal
}

func newProfitService(userRepository repository.Users, profitRepository repository.Profits, clock clockwork.Clock, cfg config.IncentiveConfig) *profitService {
	return &profitService{
		userRepository:   userRepository,
		profitRepository: profitRepository,
		clock:            clock,
		rates: map[domain.ReferralStage]decimal.Decimal{
			domain.StageDirect: decimal.NewFromFloat(cfg.DirectPercent).Div(hundred),
			domain.StageSecond: decimal.NewFromFloat(cfg.Stage2Percent).Div(hundred),
			domain.StageThird:  decimal.NewFromFloat(cfg.Stage3Percent).Div(hundred),
		},
	}
}

// RecordProfit stores a profit entry and credits each ancestor of the user with its stage rate.
func (s *profitService) RecordProfit(ctx context.Context, input RecordProfitInput) (*ProfitRecord, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	user, err := getUser(ctx, s.userRepository, input.UserID)
	if err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = s.clock.Now()
	}

	entryID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate profit entry id failed: %w", err)
	}
	entry := &domain.ProfitEntry{
		ID:        entryID,
		UserID:    user.ID,
		Date:      date,
		Amount:    input.Amount.Round(moneyPlaces),
		CreatedAt: s.clock.Now(),
	}

	var incentives []domain.ReferralIncentive
	err = walkAncestors(ctx, s.userRepository, user.ID, user.ReferrerCode(),
		func(stage domain.ReferralStage, owner *domain.User) error {
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("generate incentive id failed: %w", err)
			}
			incentives = append(incentives, domain.ReferralIncentive{
				ID:             id,
				ProfitEntryID:  entry.ID,
				OwnerID:        owner.ID,
				ReferredUserID: user.ID,
				Stage:          stage,
				Profit:         entry.Amount,
				Incentive:      entry.Amount.Mul(s.rates[stage]).Round(moneyPlaces),
				Date:           date,
				CreatedAt:      entry.CreatedAt,
			})
			return nil
		})
	if err != nil {
		return nil, err
	}

	if err := s.profitRepository.Create(ctx, entry, incentives); err != nil {
		return nil, fmt.Errorf("create profit entry failed: %w", err)
	}

	return &ProfitRecord{Entry: entry, Incentives: incentives}, nil
}

func (s *profitService) ListProfits(ctx context.Context, userID uuid.UUID) ([]domain.ProfitEntry, error) {
	entries, err := s.profitRepository.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list profits failed: %w", err)
	}
	return entries, nil
}

func (s *profitService) ListIncentives(ctx context.Context, ownerID uuid.UUID) ([]domain.ReferralIncentive, error) {
	incentives, err := s.profitRepository.ListIncentivesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list incentives failed: %w", err)
	}
	return incentives, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/repository"
	"github.com/kyrios-fx/backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// walkAncestors visits up to MaxReferralDepth owners starting from the holder of code.
// The next code is read before visit runs, so visit may change the owner freely.
// An unknown code ends the walk without error.
func walkAncestors(ctx context.Context, users repository.Users, subject uuid.UUID, code string,
	visit func(stage domain.ReferralStage, owner *domain.User) error,
) error {
	for stage := domain.StageDirect; stage <= domain.MaxReferralDepth && code != ""; stage++ {
		owner, err := users.GetByReferralCode(ctx, code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Debug("referral chain ends at unknown code",
					zap.String("code", code),
					zap.Stringer("stage", stage),
				)
				return nil
			}
			return fmt.Errorf("get ancestor by referral code failed: %w", err)
		}
		if owner.ID == subject {
			logger.Warn("referral chain loops back to its subject", zap.String("user_id", subject.String()))
			return nil
		}

		next := owner.ReferrerCode()
		if err := visit(stage, owner); err != nil {
			return err
		}
		code = next
	}
	return nil
}

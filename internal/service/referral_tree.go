package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/metrics"
	"github.com/kyrios-fx/backend/internal/repository"
	"github.com/kyrios-fx/backend/pkg/hash"
	"github.com/kyrios-fx/backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type referralTreeService struct {
	userRepository     repository.Users
	referralRepository repository.Referrals
	hasher             hash.PasswordHasher
	sessions           *sessionIssuer
	clock              clockwork.Clock
	adminEmails        []string
}

func newReferralTreeService(
	userRepository repository.Users,
	referralRepository repository.Referrals,
	hasher hash.PasswordHasher,
	sessions *sessionIssuer,
	clock clockwork.Clock,
	adminEmails []string,
) *referralTreeService {
	normalized := make([]string, 0, len(adminEmails))
	for _, email := range adminEmails {
		if email = normalizeEmail(email); email != "" {
			normalized = append(normalized, email)
		}
	}
	return &referralTreeService{
		userRepository:     userRepository,
		referralRepository: referralRepository,
		hasher:             hasher,
		sessions:           sessions,
		clock:              clock,
		adminEmails:        normalized,
	}
}

// Promote creates the user (or reuses it on a retry) and appends it to the
// direct, stage-2 and stage-3 sequences of its ancestors. Levels are written
// one by one; a missing ancestor ends propagation without undoing earlier levels.
func (s *referralTreeService) Promote(ctx context.Context, candidate *domain.PendingRegistration, client ClientInfo) (*AuthResult, error) {
	user, err := s.ensureUser(ctx, candidate)
	if err != nil {
		return nil, err
	}

	if err := s.link(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.sessions.create(ctx, user.ID, client)
	if err != nil {
		return nil, fmt.Errorf("create session failed: %w", err)
	}

	logger.Info("user promoted",
		zap.String("user_id", user.ID.String()),
		zap.String("referral_code", user.ReferralCode),
		zap.String("role", string(user.Role)),
	)

	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (s *referralTreeService) ensureUser(ctx context.Context, candidate *domain.PendingRegistration) (*domain.User, error) {
	existing, err := s.userRepository.GetByEmail(ctx, candidate.Email)
	switch {
	case err == nil:
		if existing.ReferralCode == candidate.ReferralCode {
			return existing, nil
		}
		return nil, ErrEmailInUse
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get user by email failed: %w", err)
	}

	passwordHash, err := s.hasher.Hash(candidate.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	userID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate user id failed: %w", err)
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           userID,
		Name:         candidate.Name,
		Email:        candidate.Email,
		Phone:        candidate.Phone,
		PasswordHash: passwordHash,
		ReferralCode: candidate.ReferralCode,
		ReferredByCode: sql.NullString{
			String: candidate.ReferredByCode,
			Valid:  candidate.ReferredByCode != "",
		},
		EmailVerified:      true,
		OTPVerified:        candidate.Verified,
		Status:             domain.StatusActive,
		Role:               s.roleFor(candidate.Email),
		Capital:            decimal.Zero,
		VerificationStatus: domain.VerificationPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.userRepository.Create(ctx, user)
	if errors.Is(err, domain.ErrDuplicateEntry) {
		err = s.resolveDuplicate(ctx, candidate, user)
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// resolveDuplicate tells an email collision from a referral code collision.
// A code taken since Register is replaced once; the user keeps the new code.
func (s *referralTreeService) resolveDuplicate(ctx context.Context, candidate *domain.PendingRegistration, user *domain.User) error {
	_, err := s.userRepository.GetByEmail(ctx, candidate.Email)
	switch {
	case err == nil:
		return ErrEmailInUse
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("get user by email failed: %w", err)
	}

	code, err := uniqueReferralCode(ctx, s.userRepository)
	if err != nil {
		return fmt.Errorf("regenerate referral code failed: %w", err)
	}
	logger.Warn("referral code taken before promotion, regenerated",
		zap.String("email", candidate.Email),
		zap.String("old_code", candidate.ReferralCode),
		zap.String("new_code", code),
	)
	candidate.ReferralCode = code
	user.ReferralCode = code

	err = s.userRepository.Create(ctx, user)
	switch {
	case errors.Is(err, domain.ErrDuplicateEntry):
		return ErrReferralCodeConflict
	case err != nil:
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (s *referralTreeService) roleFor(email string) domain.Role {
	if slices.Contains(s.adminEmails, normalizeEmail(email)) {
		return domain.RoleAdmin
	}
	return domain.RoleReferral
}

func (s *referralTreeService) link(ctx context.Context, user *domain.User) error {
	return walkAncestors(ctx, s.userRepository, user.ID, user.ReferrerCode(),
		func(stage domain.ReferralStage, owner *domain.User) error {
			added, err := s.referralRepository.Append(ctx, &domain.ReferralEntry{
				OwnerID:   owner.ID,
				Stage:     stage,
				UserID:    user.ID,
				Name:      user.Name,
				CreatedAt: s.clock.Now(),
			})
			if err != nil {
				return fmt.Errorf("append %s referral failed: %w", stage, err)
			}
			if added {
				metrics.ReferralLinks.WithLabelValues(stage.String()).Inc()
			}
			return nil
		})
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kyrios-fx/backend/internal/cache"
	"github.com/kyrios-fx/backend/internal/config"
	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/metrics"
	"github.com/kyrios-fx/backend/internal/repository"
	"github.com/kyrios-fx/backend/pkg/logger"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type registrationService struct {
	pending        cache.PendingRegistrations
	userRepository repository.Users
	otp            OTP
	tree           ReferralTree
	mailer         Mailer
	clock          clockwork.Clock
	config         config.RegistrationConfig
}

func newRegistrationService(
	pending cache.PendingRegistrations,
	userRepository repository.Users,
	otp OTP,
	tree ReferralTree,
	mailer Mailer,
	clock clockwork.Clock,
	config config.RegistrationConfig,
) *registrationService {
	return &registrationService{
		pending:        pending,
		userRepository: userRepository,
		otp:            otp,
		tree:           tree,
		mailer:         mailer,
		clock:          clock,
		config:         config,
	}
}

// Register admits a candidate to the pending store and sends the OTP.
// Nothing is stored until every check has passed.
func (s *registrationService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	input.Email = normalizeEmail(input.Email)
	input.ReferralCode = strings.ToUpper(strings.TrimSpace(input.ReferralCode))
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	if _, err := s.pending.Get(ctx, input.Email); err == nil {
		return nil, ErrPendingRegistrationExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get pending registration failed: %w", err)
	}

	if _, err := s.userRepository.GetByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get user by email failed: %w", err)
	}

	if input.ReferralCode != "" {
		if _, err := s.userRepository.GetByReferralCode(ctx, input.ReferralCode); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, ErrUnknownReferrer
			}
			return nil, fmt.Errorf("get referrer failed: %w", err)
		}
	}

	referralCode, err := uniqueReferralCode(ctx, s.userRepository)
	if err != nil {
		return nil, err
	}

	entry := &domain.PendingRegistration{
		Name:           strings.TrimSpace(input.Name),
		Email:          input.Email,
		Phone:          strings.TrimSpace(input.Phone),
		Password:       input.Password,
		ReferredByCode: input.ReferralCode,
		ReferralCode:   referralCode,
		CreatedAt:      s.clock.Now(),
	}

	if err := s.pending.Admit(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return nil, ErrPendingRegistrationExists
		}
		return nil, fmt.Errorf("admit pending registration failed: %w", err)
	}

	if err := s.otp.Send(ctx, entry.Email); err != nil {
		if delErr := s.pending.Delete(ctx, entry.Email); delErr != nil {
			logger.Error("drop pending registration after otp failure", zap.Error(delErr))
		}
		return nil, err
	}

	if err := s.mailer.SendWelcome(ctx, *entry); err != nil {
		logger.Error("enqueue welcome email failed", zap.String("email", entry.Email), zap.Error(err))
	}

	metrics.RegistrationsAdmitted.Inc()
	logger.Info("registration admitted",
		zap.String("email", entry.Email),
		zap.String("referred_by", entry.ReferredByCode),
	)

	return &RegisterResult{OTPSent: true, ExpiresIn: s.config.PendingTTL}, nil
}

func (s *registrationService) ConfirmOTP(ctx context.Context, input ConfirmOTPInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	code := strings.TrimSpace(input.OTP)
	if email == "" {
		return nil, &domain.Error{Kind: domain.KindValidation, Field: "email", Message: "this field is required"}
	}
	if code == "" {
		return nil, ErrOTPRequired
	}

	entry, err := s.pending.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.RegistrationsConfirmed.WithLabelValues("not_found").Inc()
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("get pending registration failed: %w", err)
	}

	if entry.Expired(s.clock.Now(), s.config.PendingTTL) {
		if err := s.pending.Delete(ctx, email); err != nil {
			return nil, fmt.Errorf("delete expired registration failed: %w", err)
		}
		metrics.RegistrationsConfirmed.WithLabelValues("expired").Inc()
		return nil, ErrRegistrationExpired
	}

	ok, err := s.otp.Verify(ctx, email, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.RegistrationsConfirmed.WithLabelValues("invalid_otp").Inc()
		return nil, ErrInvalidOTP
	}

	entry.Verified = true
	result, promoteErr := s.tree.Promote(ctx, entry, input.Client)

	if err := s.pending.Delete(ctx, email); err != nil {
		logger.Error("delete pending registration failed", zap.String("email", email), zap.Error(err))
	}

	if promoteErr != nil {
		metrics.RegistrationsConfirmed.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("promote registration failed: %w", promoteErr)
	}

	metrics.RegistrationsConfirmed.WithLabelValues("confirmed").Inc()
	return result, nil
}

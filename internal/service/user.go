package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/kyrios-fx/backend/internal/config"
	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/repository"
	"github.com/kyrios-fx/backend/pkg/hash"
	"github.com/kyrios-fx/backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	profileUpdateAttempts = 3
	resetTokenBytes       = 32
)

type userService struct {
	userRepository     repository.Users
	referralRepository repository.Referrals
	profitRepository   repository.Profits
	hasher             hash.PasswordHasher
	sessions           *sessionIssuer
	mailer             Mailer
	clock              clockwork.Clock
	authConfig         config.AuthConfig
	publicURL          string
}

func newUserService(userRepository repository.Users,
	referralRepository repository.Referrals,
	profitRepository repository.Profits,
	hasher hash.PasswordHasher,
	sessions *sessionIssuer,
	mailer Mailer,
	clock clockwork.Clock,
	authConfig config.AuthConfig,
	publicURL string,
) *userService {
	return &userService{
		userRepository:     userRepository,
		referralRepository: referralRepository,
		profitRepository:   profitRepository,
		hasher:             hasher,
		sessions:           sessions,
		mailer:             mailer,
		clock:              clock,
		authConfig:         authConfig,
		publicURL:          strings.TrimRight(publicURL, "/"),
	}
}

func (s *userService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	user, err := s.userRepository.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user by email failed: %w", err)
	}

	now := s.clock.Now()
	if user.Locked(now) {
		return nil, ErrAccountLocked
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	ok, err := s.hasher.Compare(input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("compare password failed: %w", err)
	}
	if !ok {
		user.LoginAttempts++
		if s.authConfig.MaxLoginAttempts > 0 && user.LoginAttempts >= s.authConfig.MaxLoginAttempts {
			lockUntil := now.Add(s.authConfig.LockDuration)
			user.LockUntil = &lockUntil
			user.LoginAttempts = 0
			logger.Warn("account locked after failed logins", zap.String("user_id", user.ID.String()))
		}
		if err := s.userRepository.Update(ctx, user); err != nil && !errors.Is(err, domain.ErrVersionConflict) {
			return nil, fmt.Errorf("record failed login failed: %w", err)
		}
		return nil, ErrInvalidCredentials
	}

	if user.LoginAttempts > 0 || user.LockUntil != nil {
		user.LoginAttempts = 0
		user.LockUntil = nil
		if err := s.userRepository.Update(ctx, user); err != nil && !errors.Is(err, domain.ErrVersionConflict) {
			return nil, fmt.Errorf("reset login attempts failed: %w", err)
		}
	}

	tokens, err := s.sessions.create(ctx, user.ID, input.Client)
	if err != nil {
		return nil, fmt.Errorf("create session failed: %w", err)
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Refresh rotates the refresh session: the presented token stops working.
func (s *userService) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*AuthResult, error) {
	token, err := s.sessions.tokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	session, err := s.sessions.refreshSessionRepository.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("get refresh session failed: %w", err)
	}

	if err := s.sessions.refreshSessionRepository.DeleteByToken(ctx, token); err != nil {
		return nil, fmt.Errorf("delete refresh session failed: %w", err)
	}

	if session.Expired(s.clock.Now()) {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepository.GetOneByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("get user by id failed: %w", err)
	}

	tokens, err := s.sessions.create(ctx, user.ID, client)
	if err != nil {
		return nil, fmt.Errorf("create session failed: %w", err)
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	token, err := s.sessions.tokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil
	}
	if err := s.sessions.refreshSessionRepository.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("delete refresh session failed: %w", err)
	}
	return nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ForgotPassword mails a reset link. Unknown emails are accepted silently.
func (s *userService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return &domain.Error{Kind: domain.KindValidation, Field: "email", Message: "this field is required"}
	}

	user, err := s.userRepository.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Info("password reset requested for unknown email", zap.String("email", email))
			return nil
		}
		return fmt.Errorf("get user by email failed: %w", err)
	}

	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generate reset token failed: %w", err)
	}
	token := hex.EncodeToString(raw)

	expires := s.clock.Now().Add(s.authConfig.PasswordResetTTL)
	user.PasswordResetToken = sql.NullString{String: hashResetToken(token), Valid: true}
	user.PasswordResetExpires = &expires
	if err := s.userRepository.Update(ctx, user); err != nil {
		return fmt.Errorf("store reset token failed: %w", err)
	}

	resetURL := s.publicURL + "/reset-password/" + token
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		user.PasswordResetToken = sql.NullString{}
		user.PasswordResetExpires = nil
		if clearErr := s.userRepository.Update(ctx, user); clearErr != nil {
			logger.Error("clear reset token failed", zap.Error(clearErr))
		}
		return fmt.Errorf("send password reset email failed: %w", err)
	}

	return nil
}

func (s *userService) ResetPassword(ctx context.Context, input ResetPasswordInput) (*AuthResult, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.Password != input.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	user, err := s.userRepository.GetByResetToken(ctx, hashResetToken(input.Token))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("get user by reset token failed: %w", err)
	}
	if user.PasswordResetExpires == nil || !s.clock.Now().Before(*user.PasswordResetExpires) {
		return nil, ErrInvalidResetToken
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user.PasswordHash = passwordHash
	user.PasswordResetToken = sql.NullString{}
	user.PasswordResetExpires = nil
	user.LoginAttempts = 0
	user.LockUntil = nil
	if err := s.userRepository.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("update password failed: %w", err)
	}

	tokens, err := s.sessions.create(ctx, user.ID, input.Client)
	if err != nil {
		return nil, fmt.Errorf("create session failed: %w", err)
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if current == "" {
		return &domain.Error{Kind: domain.KindValidation, Field: "current_password", Message: "this field is required"}
	}
	if err := validate.Var(next, "required,strongpassword"); err != nil {
		return &domain.Error{Kind: domain.KindValidation, Field: "new_password", Message: passwordPolicyMessage}
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Compare(current, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("compare password failed: %w", err)
	}
	if !ok {
		return ErrWrongPassword
	}

	passwordHash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password failed: %w", err)
	}
	user.PasswordHash = passwordHash
	if err := s.userRepository.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return ErrProfileConflict
		}
		return fmt.Errorf("update password failed: %w", err)
	}
	return nil
}

// UpdateProfile reapplies the changes on a fresh copy when a concurrent writer wins.
func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		input.Email = &email
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < profileUpdateAttempts; attempt++ {
		user, err := s.getUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		if input.Email != nil && *input.Email != user.Email {
			other, err := s.userRepository.GetByEmail(ctx, *input.Email)
			if err == nil && other.ID != user.ID {
				return nil, ErrEmailInUse
			}
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("get user by email failed: %w", err)
			}
			user.Email = *input.Email
		}
		if input.Name != nil {
			user.Name = strings.TrimSpace(*input.Name)
		}
		if input.Phone != nil {
			user.Phone = strings.TrimSpace(*input.Phone)
		}

		err = s.userRepository.Update(ctx, user)
		switch {
		case err == nil:
			return user, nil
		case errors.Is(err, domain.ErrVersionConflict):
			logger.Debug("profile update lost a race, retrying", zap.Int("attempt", attempt+1))
			continue
		case errors.Is(err, domain.ErrDuplicateEntry):
			return nil, ErrEmailInUse
		default:
			return nil, fmt.Errorf("update profile failed: %w", err)
		}
	}

	return nil, ErrProfileConflict
}

func (s *userService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := loadReferrals(ctx, s.referralRepository, s.profitRepository, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) getUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return getUser(ctx, s.userRepository, userID)
}

func getUser(ctx context.Context, users repository.Users, userID uuid.UUID) (*domain.User, error) {
	user, err := users.GetOneByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id failed: %w", err)
	}
	return user, nil
}

// loadReferrals fills the three sequences of user together with their incentive history.
func loadReferrals(ctx context.Context, referrals repository.Referrals, profits repository.Profits, user *domain.User) error {
	entries, err := referrals.ListByOwner(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("list referrals failed: %w", err)
	}
	incentives, err := profits.ListIncentivesByOwner(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("list incentives failed: %w", err)
	}

	user.Referrals = domain.GroupReferrals(entries)
	user.Referrals.AttachIncentives(incentives)
	return nil
}

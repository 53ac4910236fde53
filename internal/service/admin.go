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

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	adminUpdateTries = 3
)

type adminService struct {
	userRepository     repository.Users
	referralRepository repository.Referrals
	profitRepository   repository.Profits
}

func newAdminService(userRepository repository.Users, referralRepository repository.Referrals, profitRepository repository.Profits) *adminService {
	return &adminService{
		userRepository:     userRepository,
		referralRepository: referralRepository,
		profitRepository:   profitRepository,
	}
}

func (s *adminService) EnsureAdmin(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepository.GetOneByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("get user by id failed: %w", err)
	}
	if !user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *adminService) ListUsers(ctx context.Context, input ListUsersInput) (*UserPage, error) {
	filter := repository.UserFilter{
		Email:          normalizeEmail(input.Email),
		ReferredByCode: input.ReferredByCode,
		SortBy:         input.SortBy,
		Order:          input.Order,
	}
	if input.Role != "" {
		role := domain.Role(input.Role)
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
		filter.Role = &role
	}
	if input.Status != "" {
		status := domain.Status(input.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		filter.Status = &status
	}

	page, limit := input.Page, input.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	total, err := s.userRepository.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count users failed: %w", err)
	}

	users, err := s.userRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users failed: %w", err)
	}

	return &UserPage{
		Users:      users,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *adminService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := getUser(ctx, s.userRepository, id)
	if err != nil {
		return nil, err
	}
	if err := loadReferrals(ctx, s.referralRepository, s.profitRepository, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *adminService) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	return s.update(ctx, id, func(user *domain.User) { user.Role = role })
}

func (s *adminService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (*domain.User, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.update(ctx, id, func(user *domain.User) { user.Status = status })
}

func (s *adminService) update(ctx context.Context, id uuid.UUID, apply func(*domain.User)) (*domain.User, error) {
	for attempt := 0; attempt < adminUpdateTries; attempt++ {
		user, err := getUser(ctx, s.userRepository, id)
		if err != nil {
			return nil, err
		}
		apply(user)

		err = s.userRepository.Update(ctx, user)
		if err == nil {
			logger.Info("user updated by admin",
				zap.String("user_id", user.ID.String()),
				zap.String("role", string(user.Role)),
				zap.String("status", string(user.Status)),
			)
			return user, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, fmt.Errorf("update user failed: %w", err)
		}
	}
	return nil, ErrProfileConflict
}

func (s *adminService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepository.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user failed: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"fmt"

	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/repository"
	"github.com/kyrios-fx/backend/pkg/auth"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type sessionIssuer struct {
	refreshSessionRepository repository.RefreshSession
	tokenManager             auth.TokenManager
	clock                    clockwork.Clock
}

func newSessionIssuer(refreshSessionRepository repository.RefreshSession, tokenManager auth.TokenManager, clock clockwork.Clock) *sessionIssuer {
	return &sessionIssuer{
		refreshSessionRepository: refreshSessionRepository,
		tokenManager:             tokenManager,
		clock:                    clock,
	}
}

func (s *sessionIssuer) create(ctx context.Context, userID uuid.UUID, client ClientInfo) (*Tokens, error) {
	var (
		res Tokens
		err error
	)

	res.AccessToken, res.AccessTTL, err = s.tokenManager.NewJWT(userID)
	if err != nil {
		return nil, fmt.Errorf("generate access token failed: %w", err)
	}

	res.RefreshToken, res.RefreshTTL, err = s.tokenManager.NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token failed: %w", err)
	}

	refreshSessionID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate refresh session id failed: %w", err)
	}
	refreshSession := &domain.RefreshSession{
		ID:           refreshSessionID,
		UserID:       userID,
		RefreshToken: res.RefreshToken,
		UserAgent:    client.UserAgent,
		IP:           client.IP,
		ExpiresIn:    s.clock.Now().Add(res.RefreshTTL),
	}

	if err := s.refreshSessionRepository.Create(ctx, refreshSession); err != nil {
		return nil, fmt.Errorf("create refresh session failed: %w", err)
	}

	return &res, nil
}

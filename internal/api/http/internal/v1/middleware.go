package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/kyrios-fx/backend/internal/service"
	"github.com/kyrios-fx/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	authorizationHeader = "Authorization"
	userCtx             = "userId"
)

func (h *Handler) userIdentityMiddleware(c *gin.Context) {
	id, err := h.parseAuthHeader(c)
	if err != nil {
		if !errors.Is(err, jwt.ErrTokenExpired) {
			logger.Debug("parse auth header failed", zap.Error(err))
		}
		errorResponse(c, http.StatusUnauthorized, UnauthorizedCode, UnauthorizedMessage)
		return
	}

	userID, err := uuid.Parse(id)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthorizedCode, UnauthorizedMessage)
		return
	}

	c.Set(userCtx, userID)
}

// adminMiddleware must run after userIdentityMiddleware.
func (h *Handler) adminMiddleware(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthorizedCode, UnauthorizedMessage)
		return
	}

	if err := h.services.Admin.EnsureAdmin(c.Request.Context(), userID); err != nil {
		serviceErrorResponse(c, err, "ensure admin failed")
		return
	}
}

func (h *Handler) parseAuthHeader(c *gin.Context) (string, error) {
	header := c.GetHeader(authorizationHeader)
	if header == "" {
		return "", errors.New("empty auth header")
	}

	headerParts := strings.Split(header, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" {
		return "", errors.New("invalid auth header")
	}

	if len(headerParts[1]) == 0 {
		return "", errors.New("token is empty")
	}

	return h.tokenManager.Parse(headerParts[1])
}

func (h *Handler) getUserUUID(c *gin.Context) (uuid.UUID, error) {
	id, ok := c.Get(userCtx)
	if !ok {
		return uuid.Nil, errors.New("user id not found")
	}

	userID, ok := id.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("user id has invalid type")
	}

	return userID, nil
}

func clientInfo(c *gin.Context) service.ClientInfo {
	return service.ClientInfo{UserAgent: c.Request.UserAgent(), IP: c.ClientIP()}
}

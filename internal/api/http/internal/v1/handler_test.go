package v1

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kyrios-fx/backend/internal/config"
	"github.com/kyrios-fx/backend/internal/service"
	mock_service "github.com/kyrios-fx/backend/internal/service/mock"
	"github.com/kyrios-fx/backend/pkg/auth"
	"github.com/kyrios-fx/backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type testHandler struct {
	router       *gin.Engine
	registration *mock_service.Registration
	users        *mock_service.Users
	admin        *mock_service.Admin
	profits      *mock_service.Profits
	payouts      *mock_service.Payouts
	tokens       *auth.Manager
}

func newTestHandler(t *testing.T) *testHandler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.RegisterGinValidator()

	tokens, err := auth.NewManager(config.JWTConfig{
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		SigningKey:      "test-signing-key",
	})
	require.NoError(t, err)

	th := &testHandler{
		registration: &mock_service.Registration{},
		users:        &mock_service.Users{},
		admin:        &mock_service.Admin{},
		profits:      &mock_service.Profits{},
		payouts:      &mock_service.Payouts{},
		tokens:       tokens,
	}
	t.Cleanup(func() {
		th.registration.AssertExpectations(t)
		th.users.AssertExpectations(t)
		th.admin.AssertExpectations(t)
		th.profits.AssertExpectations(t)
		th.payouts.AssertExpectations(t)
	})

	services := &service.Services{
		Registration: th.registration,
		Users:        th.users,
		Admin:        th.admin,
		Profits:      th.profits,
		Payouts:      th.payouts,
	}

	th.router = gin.New()
	NewHandler(services, tokens, &config.Config{Env: "local"}).Init(th.router.Group("/api"))

	return th
}

func (th *testHandler) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(authorizationHeader, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	th.router.ServeHTTP(rec, req)
	return rec
}

func (th *testHandler) accessToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, _, err := th.tokens.NewJWT(userID)
	require.NoError(t, err)
	return token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorStruct {
	t.Helper()
	var out ErrorStruct
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func decodeValidationError(t *testing.T, rec *httptest.ResponseRecorder) ValidationErrorStruct {
	t.Helper()
	var out ValidationErrorStruct
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

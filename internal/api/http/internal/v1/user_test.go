package v1

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserIdentity(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		th := newTestHandler(t)

		rec := th.do(t, http.MethodGet, "/api/v1/users/me", nil, "")

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, ErrorCode(UnauthorizedCode), decodeError(t, rec).ErrorCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		th := newTestHandler(t)

		rec := th.do(t, http.MethodGet, "/api/v1/users/me", nil, "not-a-jwt")

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetMe(t *testing.T) {
	th := newTestHandler(t)
	userID := uuid.New()
	referred := uuid.New()
	user := &domain.User{ID: userID, Name: "Ann", PasswordHash: "hash"}
	user.Referrals.Add(domain.ReferralEntry{Stage: domain.StageDirect, UserID: referred, Name: "Bob"})
	th.users.On("Me", mock.Anything, userID).Return(user, nil).Once()

	rec := th.do(t, http.MethodGet, "/api/v1/users/me", nil, th.accessToken(t, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hash")

	var out struct {
		ID       uuid.UUID `json:"id"`
		Referral struct {
			Direct []struct {
				User uuid.UUID `json:"user"`
			} `json:"directReferral"`
		} `json:"referral"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, userID, out.ID)
	require.Len(t, out.Referral.Direct, 1)
	assert.Equal(t, referred, out.Referral.Direct[0].User)
}

func TestUpdateMe(t *testing.T) {
	th := newTestHandler(t)
	userID := uuid.New()
	th.users.On("UpdateProfile", mock.Anything, userID, mock.MatchedBy(func(in service.UpdateProfileInput) bool {
		return in.Email != nil && *in.Email == "taken@example.com" && in.Name == nil
	})).Return(nil, service.ErrEmailInUse).Once()

	rec := th.do(t, http.MethodPut, "/api/v1/users/me", map[string]string{"email": "taken@example.com"}, th.accessToken(t, userID))

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestChangePassword(t *testing.T) {
	th := newTestHandler(t)
	userID := uuid.New()
	th.users.On("ChangePassword", mock.Anything, userID, "Old1234", "New1234").Return(service.ErrWrongPassword).Once()

	rec := th.do(t, http.MethodPut, "/api/v1/users/me/password",
		changePasswordRequest{CurrentPassword: "Old1234", NewPassword: "New1234"}, th.accessToken(t, userID))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetMyIncentives(t *testing.T) {
	th := newTestHandler(t)
	userID := uuid.New()
	th.profits.On("ListIncentives", mock.Anything, userID).Return([]domain.ReferralIncentive{
		{OwnerID: userID, Stage: domain.StageDirect, Incentive: decimal.RequireFromString("10.50")},
		{OwnerID: userID, Stage: domain.StageSecond, Incentive: decimal.RequireFromString("2.25")},
	}, nil).Once()

	rec := th.do(t, http.MethodGet, "/api/v1/users/me/incentives", nil, th.accessToken(t, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	var out incentivesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Incentives, 2)
	assert.True(t, decimal.RequireFromString("12.75").Equal(out.Total))
}

func TestGetMyProfitsEmpty(t *testing.T) {
	th := newTestHandler(t)
	userID := uuid.New()
	th.profits.On("ListProfits", mock.Anything, userID).Return(nil, nil).Once()

	rec := th.do(t, http.MethodGet, "/api/v1/users/me/profits", nil, th.accessToken(t, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"profits":[]}`, rec.Body.String())
}

func TestRequestPayout(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		th := newTestHandler(t)
		userID := uuid.New()
		amount := decimal.RequireFromString("150.25")
		th.payouts.On("RequestPayout", mock.Anything, userID, mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(amount)
		})).Return(&domain.PayoutRequest{ID: uuid.New(), UserID: userID, Amount: amount, Status: domain.PayoutPending}, nil).Once()

		rec := th.do(t, http.MethodPost, "/api/v1/users/me/payouts", `{"amount_requested":"150.25"}`, th.accessToken(t, userID))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"pending"`)
	})

	t.Run("non positive amount", func(t *testing.T) {
		th := newTestHandler(t)
		userID := uuid.New()
		th.payouts.On("RequestPayout", mock.Anything, userID, mock.Anything).Return(nil, service.ErrInvalidAmount).Once()

		rec := th.do(t, http.MethodPost, "/api/v1/users/me/payouts", `{"amount_requested":0}`, th.accessToken(t, userID))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		out := decodeValidationError(t, rec)
		require.Len(t, out.Errors, 1)
		assert.Equal(t, "amount", out.Errors[0].FieldKey)
	})
}

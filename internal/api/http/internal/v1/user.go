package v1

import (
	"net/http"

	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) initUsersRoutes(api *gin.RouterGroup) {
	users := api.Group("/users", h.userIdentityMiddleware)
	{
		users.GET("/me", h.getMe)
		users.PUT("/me", h.updateMe)
		users.PUT("/me/password", h.changePassword)
		users.GET("/me/profits", h.getMyProfits)
		users.GET("/me/incentives", h.getMyIncentives)
		users.POST("/me/payouts", h.requestPayout)
		users.GET("/me/payouts", h.getMyPayouts)
	}
}

// @Summary Current user
// @Tags Users
// @Description Returns the authenticated user with the direct, stage 2 and stage 3 referral sequences.
// @ModuleID getMe
// @Produce  json
// @Success 200 {object} domain.User
// @Failure 401 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security UserAuth
// @Router /users/me [get]
func (h *Handler) getMe(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthorizedCode, UnauthorizedMessage)
		return
	}

	user, err := h.services.Users.Me(c.Request.Context(), userID)
	if err != nil {
		serviceErrorResponse(c, err, "get me failed")
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Update profile
// @Tags Users
// @ModuleID updateMe
// @Accept  json
// @Produce  json
// @Param input body service.UpdateProfileInput true "fields to change"
// @Success 200 {object} domain.User
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401 {object} ErrorStruct
// @Failure 409 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security UserAuth
// @Router /users/me [put]
func (h *Handler) updateMe(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthorizedCode, UnauthorizedMessage)
		return
	}

	var input service.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	user, err := h.services.Users.UpdateProfile(c.Request.Context(), userID, input)
	if err != nil {
		serviceErrorResponse(c, err, "update profile failed")
		return
	}

	c.JSON(http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// @Summary Change password
// @Tags Users
// @ModuleID changePassword
// @Accept  json
// @Produce  json
// @Param input body changePasswordRequest true "passwords"
// @Success 200 {object} messageResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security UserAuth
// @Router /users/me/password [put]
func (h *Handler) changePassword(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthorizedCode, UnauthorizedMessage)
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Users.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		serviceErrorResponse(c, err, "change password failed")
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "password changed"})
}

type profitsResponse struct {
	Profits []domain.ProfitEntry `json:"profits"`
}

// @Summary My profits
// @Tags Users
// @ModuleID getMyProfits
// @Produce  json
// @Success 200 {object} profitsResponse
// @Failure 401 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security UserAuth
// @Router /users/me/profits [get]
func (h *Handler) getMyProfits(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthorizedCode, UnauthorizedMessage)
		return
	}

	profits, err := h.services.Profits.ListProfits(c.Request.Context(), userID)
	if err != nil {
		serviceErrorResponse(c, err, "list profits failed")
		return
	}
	if profits == nil {
		profits = []domain.ProfitEntry{}
	}

	c.JSON(http.StatusOK, profitsResponse{Profits: profits})
}

type incentivesResponse struct {
	Incentives []domain.ReferralIncentive `json:"incentives"`
	Total      decimal.Decimal            `json:"total"`
}

// @Summary My referral incentives
// @Tags Users
// @ModuleID getMyIncentives
// @Produce  json
// @Success 200 {object} incentivesResponse
// @Failure 401 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security UserAuth
// @Router /users/me/incentives [get]
func (h *Handler) getMyIncentives(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthorizedCode, UnauthorizedMessage)
		return
	}

	incentives, err := h.services.Profits.ListIncentives(c.Request.Context(), userID)
	if err != nil {
		serviceErrorResponse(c, err, "list incentives failed")
		return
	}

	total := decimal.Zero
	for _, incentive := range incentives {
		total = total.Add(incentive.Incentive)
	}
	if incentives == nil {
		incentives = []domain.ReferralIncentive{}
	}

	c.JSON(http.StatusOK, incentivesResponse{Incentives: incentives, Total: total})
}

type payoutRequest struct {
	Amount decimal.Decimal `json:"amount_requested"`
}

// @Summary Request payout
// @Tags Users
// @ModuleID requestPayout
// @Accept  json
// @Produce  json
// @Param input body payoutRequest true "amount"
// @Success 201 {object} domain.PayoutRequest
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security UserAuth
// @Router /users/me/payouts [post]
func (h *Handler) requestPayout(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthorizedCode, UnauthorizedMessage)
		return
	}

	var req payoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	payout, err := h.services.Payouts.RequestPayout(c.Request.Context(), userID, req.Amount)
	if err != nil {
		serviceErrorResponse(c, err, "request payout failed")
		return
	}

	c.JSON(http.StatusCreated, payout)
}

type payoutsResponse struct {
	Payouts []domain.PayoutRequest `json:"payouts"`
}

// @Summary My payouts
// @Tags Users
// @ModuleID getMyPayouts
// @Produce  json
// @Success 200 {object} payoutsResponse
// @Failure 401 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security UserAuth
// @Router /users/me/payouts [get]
func (h *Handler) getMyPayouts(c *gin.Context) {
	userID, err := h.getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, UnauthorizedCode, UnauthorizedMessage)
		return
	}

	payouts, err := h.services.Payouts.ListPayouts(c.Request.Context(), userID)
	if err != nil {
		serviceErrorResponse(c, err, "list payouts failed")
		return
	}
	if payouts == nil {
		payouts = []domain.PayoutRequest{}
	}

	c.JSON(http.StatusOK, payoutsResponse{Payouts: payouts})
}

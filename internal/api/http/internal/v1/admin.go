package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const profitDateLayout = "2006-01-02"

func (h *Handler) initAdminRoutes(api *gin.RouterGroup) {
	admin := api.Group("/admin", h.userIdentityMiddleware, h.adminMiddleware)
	{
		admin.GET("/users", h.listUsers)
		admin.GET("/users/:id", h.getUser)
		admin.PUT("/users/:id/role", h.updateUserRole)
		admin.PUT("/users/:id/status", h.updateUserStatus)
		admin.DELETE("/users/:id", h.deleteUser)
		admin.POST("/users/:id/profits", h.recordProfit)
		admin.PUT("/payouts/:id/paid", h.markPayoutPaid)
	}
}

type usersListResponse struct {
	Users      []*domain.User `json:"users"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// @Summary List users
// @Tags Admin
// @ModuleID listUsers
// @Produce  json
// @Param page query int false "page number, 1 by default"
// @Param limit query int false "page size, 10 by default, 100 at most"
// @Param role query string false "admin, trader or referral"
// @Param status query string false "active or hold"
// @Param email query string false "exact email"
// @Param referred_by_code query string false "referral code of the referrer"
// @Param sort_by query string false "createdAt, name or email"
// @Param order query string false "asc or desc"
// @Success 200 {object} usersListResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401 {object} ErrorStruct
// @Failure 403 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/users [get]
func (h *Handler) listUsers(c *gin.Context) {
	input := service.ListUsersInput{
		Role:           c.Query("role"),
		Status:         c.Query("status"),
		Email:          c.Query("email"),
		ReferredByCode: c.Query("referred_by_code"),
		SortBy:         c.Query("sort_by"),
		Order:          c.Query("order"),
	}
	if p, err := strconv.Atoi(c.Query("page")); err == nil {
		input.Page = p
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil {
		input.Limit = l
	}

	page, err := h.services.Admin.ListUsers(c.Request.Context(), input)
	if err != nil {
		serviceErrorResponse(c, err, "list users failed")
		return
	}

	users := page.Users
	if users == nil {
		users = []*domain.User{}
	}

	c.JSON(http.StatusOK, usersListResponse{
		Users:      users,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	})
}

// @Summary Get user
// @Tags Admin
// @ModuleID getUser
// @Produce  json
// @Param id path string true "user id"
// @Success 200 {object} domain.User
// @Failure 400 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/users/{id} [get]
func (h *Handler) getUser(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	user, err := h.services.Admin.GetUser(c.Request.Context(), id)
	if err != nil {
		serviceErrorResponse(c, err, "get user failed")
		return
	}

	c.JSON(http.StatusOK, user)
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// @Summary Update user role
// @Tags Admin
// @ModuleID updateUserRole
// @Accept  json
// @Produce  json
// @Param id path string true "user id"
// @Param input body updateRoleRequest true "role"
// @Success 200 {object} domain.User
// @Failure 400 {object} ValidationErrorStruct
// @Failure 404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/users/{id}/role [put]
func (h *Handler) updateUserRole(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	user, err := h.services.Admin.UpdateRole(c.Request.Context(), id, domain.Role(req.Role))
	if err != nil {
		serviceErrorResponse(c, err, "update role failed")
		return
	}

	c.JSON(http.StatusOK, user)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// @Summary Update user status
// @Tags Admin
// @ModuleID updateUserStatus
// @Accept  json
// @Produce  json
// @Param id path string true "user id"
// @Param input body updateStatusRequest true "status"
// @Success 200 {object} domain.User
// @Failure 400 {object} ValidationErrorStruct
// @Failure 404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/users/{id}/status [put]
func (h *Handler) updateUserStatus(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	user, err := h.services.Admin.UpdateStatus(c.Request.Context(), id, domain.Status(req.Status))
	if err != nil {
		serviceErrorResponse(c, err, "update status failed")
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Delete user
// @Tags Admin
// @ModuleID deleteUser
// @Param id path string true "user id"
// @Success 204
// @Failure 400 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/users/{id} [delete]
func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	if err := h.services.Admin.DeleteUser(c.Request.Context(), id); err != nil {
		serviceErrorResponse(c, err, "delete user failed")
		return
	}

	c.Status(http.StatusNoContent)
}

type recordProfitRequest struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"fortnightly_profit"`
}

type recordProfitResponse struct {
	Profit     *domain.ProfitEntry        `json:"profit"`
	Incentives []domain.ReferralIncentive `json:"incentives"`
}

// @Summary Record profit
// @Tags Admin
// @Description Stores a fortnightly profit for the user and credits incentives to up to three referrers.
// @ModuleID recordProfit
// @Accept  json
// @Produce  json
// @Param id path string true "user id"
// @Param input body recordProfitRequest true "date (YYYY-MM-DD, today by default) and amount"
// @Success 201 {object} recordProfitResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/users/{id}/profits [post]
func (h *Handler) recordProfit(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	var req recordProfitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	input := service.RecordProfitInput{UserID: id, Amount: req.Amount}
	if req.Date != "" {
		date, err := time.Parse(profitDateLayout, req.Date)
		if err != nil {
			serviceErrorResponse(c, domain.NewValidationError("date", "must be a date in YYYY-MM-DD format"), "parse profit date failed")
			return
		}
		input.Date = date
	}

	record, err := h.services.Profits.RecordProfit(c.Request.Context(), input)
	if err != nil {
		serviceErrorResponse(c, err, "record profit failed")
		return
	}

	incentives := record.Incentives
	if incentives == nil {
		incentives = []domain.ReferralIncentive{}
	}

	c.JSON(http.StatusCreated, recordProfitResponse{Profit: record.Entry, Incentives: incentives})
}

// @Summary Mark payout paid
// @Tags Admin
// @ModuleID markPayoutPaid
// @Produce  json
// @Param id path string true "payout request id"
// @Success 200 {object} domain.PayoutRequest
// @Failure 400 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Failure 409 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security AdminAuth
// @Router /admin/payouts/{id}/paid [put]
func (h *Handler) markPayoutPaid(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	payout, err := h.services.Payouts.MarkPaid(c.Request.Context(), id)
	if err != nil {
		serviceErrorResponse(c, err, "mark payout paid failed")
		return
	}

	c.JSON(http.StatusOK, payout)
}

func pathUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, InvalidRequestCode, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

package v1

import (
	"net/http"

	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const refreshTokenCookie = "refresh_token"

func (h *Handler) initAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/verify-otp", h.verifyOTP)
		auth.POST("/login", h.login)
		auth.POST("/refresh", h.refresh)
		auth.POST("/logout", h.logout)
		auth.POST("/password/forgot", h.forgotPassword)
		auth.PUT("/password/reset/:token", h.resetPassword)
	}
}

type registerResponse struct {
	Message   string `json:"message"`
	OTPSent   bool   `json:"otp_sent"`
	ExpiresIn int    `json:"expires_in"`
}

type userAuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken uuid.UUID    `json:"refresh_token"`
	User         *domain.User `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// @Summary Register
// @Tags Auth
// @Description Starts a registration: validates the candidate, keeps it pending and emails a one-time code.
// @ModuleID register
// @Accept  json
// @Produce  json
// @Param input body service.RegisterInput true "registration data"
// @Success 201 {object} registerResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 404 {object} ErrorStruct
// @Failure 409 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	result, err := h.services.Registration.Register(c.Request.Context(), input)
	if err != nil {
		serviceErrorResponse(c, err, "register failed")
		return
	}

	c.JSON(http.StatusCreated, registerResponse{
		Message:   "verification code sent, please confirm your email",
		OTPSent:   result.OTPSent,
		ExpiresIn: int(result.ExpiresIn.Seconds()),
	})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// @Summary Verify OTP
// @Tags Auth
// @Description Confirms a pending registration, creates the account and links it into the referral tree.
// @ModuleID verifyOTP
// @Accept  json
// @Produce  json
// @Param input body verifyOTPRequest true "email and code"
// @Success 201 {object} userAuthResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Failure 410 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/verify-otp [post]
func (h *Handler) verifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	result, err := h.services.Registration.ConfirmOTP(c.Request.Context(), service.ConfirmOTPInput{
		Email:  req.Email,
		OTP:    req.OTP,
		Client: clientInfo(c),
	})
	if err != nil {
		serviceErrorResponse(c, err, "confirm otp failed")
		return
	}

	h.authResponse(c, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// @Summary Login
// @Tags Auth
// @ModuleID login
// @Accept  json
// @Produce  json
// @Param input body loginRequest true "credentials"
// @Success 200 {object} userAuthResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	result, err := h.services.Users.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Client:   clientInfo(c),
	})
	if err != nil {
		serviceErrorResponse(c, err, "login failed")
		return
	}

	h.authResponse(c, http.StatusOK, result)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// @Summary Refresh tokens
// @Tags Auth
// @Description Rotates the refresh session. The token is read from the cookie, or from the body when the cookie is absent.
// @ModuleID refresh
// @Accept  json
// @Produce  json
// @Param input body refreshRequest false "refresh token"
// @Success 200 {object} userAuthResponse
// @Failure 400 {object} ErrorStruct
// @Failure 401 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/refresh [post]
func (h *Handler) refresh(c *gin.Context) {
	token, ok := h.refreshToken(c)
	if !ok {
		errorResponse(c, http.StatusBadRequest, RefreshTokenCookieNotFoundCode, RefreshTokenCookieNotFoundMessage)
		return
	}

	result, err := h.services.Users.Refresh(c.Request.Context(), token, clientInfo(c))
	if err != nil {
		serviceErrorResponse(c, err, "refresh failed")
		return
	}

	h.authResponse(c, http.StatusOK, result)
}

// @Summary Logout
// @Tags Auth
// @ModuleID logout
// @Accept  json
// @Produce  json
// @Param input body refreshRequest false "refresh token"
// @Success 200 {object} messageResponse
// @Failure 500 {object} ErrorStruct
// @Router /auth/logout [post]
func (h *Handler) logout(c *gin.Context) {
	if token, ok := h.refreshToken(c); ok {
		if err := h.services.Users.Logout(c.Request.Context(), token); err != nil {
			serviceErrorResponse(c, err, "logout failed")
			return
		}
	}

	h.setRefreshCookie(c, "", -1)
	c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// @Summary Forgot password
// @Tags Auth
// @Description Emails a password reset link. The response does not reveal whether the email is registered.
// @ModuleID forgotPassword
// @Accept  json
// @Produce  json
// @Param input body forgotPasswordRequest true "email"
// @Success 200 {object} messageResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/password/forgot [post]
func (h *Handler) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Users.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		serviceErrorResponse(c, err, "forgot password failed")
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "if the email is registered, a reset link has been sent"})
}

type resetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// @Summary Reset password
// @Tags Auth
// @ModuleID resetPassword
// @Accept  json
// @Produce  json
// @Param token path string true "reset token"
// @Param input body resetPasswordRequest true "new password"
// @Success 200 {object} userAuthResponse
// @Failure 400 {object} ValidationErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/password/reset/{token} [put]
func (h *Handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	result, err := h.services.Users.ResetPassword(c.Request.Context(), service.ResetPasswordInput{
		Token:           c.Param("token"),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Client:          clientInfo(c),
	})
	if err != nil {
		serviceErrorResponse(c, err, "reset password failed")
		return
	}

	h.authResponse(c, http.StatusOK, result)
}

func (h *Handler) authResponse(c *gin.Context, status int, result *service.AuthResult) {
	h.setRefreshCookie(c, result.Tokens.RefreshToken.String(), int(result.Tokens.RefreshTTL.Seconds()))

	c.JSON(status, userAuthResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		User:         result.User,
	})
}

func (h *Handler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	secure := h.config.Env != "local"
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshTokenCookie, value, maxAge, "/api/v1/auth", "", secure, true)
}

func (h *Handler) refreshToken(c *gin.Context) (string, bool) {
	if token, err := c.Cookie(refreshTokenCookie); err == nil && token != "" {
		return token, true
	}

	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		return "", false
	}
	return req.RefreshToken, true
}

package v1

import (
	"github.com/kyrios-fx/backend/internal/config"
	"github.com/kyrios-fx/backend/internal/service"
	"github.com/kyrios-fx/backend/pkg/auth"

	"github.com/gin-gonic/gin"
)

// @title Kyrios FX API
// @version 1.0
// @description Registration, referral tree and account API

// @BasePath /api/v1

// @securityDefinitions.apikey AdminAuth
// @in header
// @name Authorization

// @securityDefinitions.apikey UserAuth
// @in header
// @name Authorization

type Handler struct {
	services     *service.Services
	tokenManager auth.TokenManager
	config       *config.Config
}

func NewHandler(
	services *service.Services,
	tokenManager auth.TokenManager,
	config *config.Config,
) *Handler {
	return &Handler{
		services:     services,
		tokenManager: tokenManager,
		config:       config,
	}
}

func (h *Handler) Init(api *gin.RouterGroup) {
	v1 := api.Group("v1")

	h.initAuthRoutes(v1)
	h.initUsersRoutes(v1)
	h.initAdminRoutes(v1)
}

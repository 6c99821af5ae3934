package api

import (
	"github.com/gin-gonic/gin"

	"github.com/minitrello/minitrello/internal/auth/service"
	"github.com/minitrello/minitrello/internal/common/logger"
)

// SetupRoutes configures the auth API routes
func SetupRoutes(router *gin.RouterGroup, svc *service.Service, oauth *service.GitHubOAuth, frontendURL string, log *logger.Logger) {
	handler := NewHandler(svc, oauth, frontendURL, log)

	auth := router.Group("/auth")
	{
		auth.POST("/send-otp", handler.SendOTP)
		auth.POST("/verify-otp", handler.VerifyOTP)
		auth.GET("/github", handler.GitHubLogin)
		auth.GET("/github/callback", handler.GitHubCallback)
		auth.GET("/me", AuthRequired(svc), handler.Me)
	}
}

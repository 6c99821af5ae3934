package api

import (
	"github.com/gin-gonic/gin"

	"github.com/minitrello/minitrello/internal/common/logger"
	"github.com/minitrello/minitrello/internal/user/service"
)

// SetupRoutes configures the user API routes. The caller is expected
// to mount them behind the auth middleware.
func SetupRoutes(router *gin.RouterGroup, svc *service.Service, log *logger.Logger) {
	handler := NewHandler(svc, log)

	users := router.Group("/users")
	{
		users.GET("/search", handler.Search)
		users.POST("/list", handler.List)
		users.PUT("/:userId", handler.Update)
	}
}

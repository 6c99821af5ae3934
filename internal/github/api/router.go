package api

import (
	"github.com/gin-gonic/gin"

	"github.com/minitrello/minitrello/internal/common/logger"
	"github.com/minitrello/minitrello/internal/github"
)

// SetupRoutes configures the GitHub API routes. The caller is expected
// to mount them behind the auth middleware.
func SetupRoutes(router *gin.RouterGroup, svc *github.Service, log *logger.Logger) {
	handler := NewHandler(svc, log)

	gh := router.Group("/github")
	{
		gh.GET("/repo", handler.RepoSummary)
		gh.POST("/:boardId/:cardId/:taskId/attach", handler.Attach)
		gh.POST("/:boardId/:cardId/:taskId/remove", handler.Remove)
	}
}

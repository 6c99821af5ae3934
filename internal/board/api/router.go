package api

import (
	"github.com/gin-gonic/gin"

	"github.com/minitrello/minitrello/internal/board/service"
	"github.com/minitrello/minitrello/internal/common/logger"
)

// SetupRoutes configures the board API routes. The caller is expected
// to mount them behind the auth middleware.
func SetupRoutes(router *gin.RouterGroup, svc *service.Service, log *logger.Logger) {
	handler := NewHandler(svc, log)

	boards := router.Group("/boards")
	{
		boards.POST("", handler.CreateBoard)
		boards.GET("", handler.ListBoards)
		boards.GET("/invitations", handler.ListInvitations)
		boards.POST("/invitations/handle", handler.HandleInvitation)
		boards.GET("/:boardId", handler.GetBoard)
		boards.PUT("/:boardId", handler.UpdateBoard)
		boards.DELETE("/:boardId", handler.DeleteBoard)
		boards.POST("/:boardId/invite", handler.Invite)

		cards := boards.Group("/:boardId/cards")
		{
			cards.GET("", handler.ListCards)
			cards.POST("", handler.CreateCard)
			cards.GET("/:cardId", handler.GetCard)
			cards.PUT("/:cardId", handler.UpdateCard)
			cards.DELETE("/:cardId", handler.DeleteCard)

			tasks := cards.Group("/:cardId/tasks")
			{
				tasks.GET("", handler.ListTasks)
				tasks.POST("", handler.CreateTask)
				tasks.GET("/:taskId", handler.GetTask)
				tasks.PUT("/:taskId", handler.UpdateTask)
				tasks.DELETE("/:taskId", handler.DeleteTask)
				tasks.POST("/:taskId/assign", handler.AssignMember)
				tasks.GET("/:taskId/assign", handler.ListAssignedMembers)
				tasks.DELETE("/:taskId/assign/:memberId", handler.UnassignMember)
				tasks.POST("/:taskId/move", handler.MoveTask)
			}
		}
	}
}

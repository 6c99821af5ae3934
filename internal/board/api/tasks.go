package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minitrello/minitrello/internal/board/service"
	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/common/httpmw"
)

// ListTasks lists a card's tasks in creation order
// GET /api/boards/:boardId/cards/:cardId/tasks
func (h *Handler) ListTasks(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	tasks, err := h.service.ListTasks(c.Request.Context(), c.Param("boardId"), c.Param("cardId"), user.ID)
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// CreateTask adds a task to a card
// POST /api/boards/:boardId/cards/:cardId/tasks
func (h *Handler) CreateTask(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.BadRequest(err.Error())
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), c.Param("boardId"), c.Param("cardId"), user.ID, &service.CreateTaskRequest{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
	})
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GetTask retrieves a task
// GET /api/boards/:boardId/cards/:cardId/tasks/:taskId
func (h *Handler) GetTask(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	task, err := h.service.GetTask(c.Request.Context(),
		c.Param("boardId"), c.Param("cardId"), c.Param("taskId"), user.ID)
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask applies a partial update to a task
// PUT /api/boards/:boardId/cards/:cardId/tasks/:taskId
func (h *Handler) UpdateTask(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.BadRequest(err.Error())
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	task, err := h.service.UpdateTask(c.Request.Context(),
		c.Param("boardId"), c.Param("cardId"), c.Param("taskId"), user.ID,
		&service.UpdateTaskRequest{
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
			Priority:    req.Priority,
			Deadline:    req.Deadline,
		})
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task
// DELETE /api/boards/:boardId/cards/:cardId/tasks/:taskId
func (h *Handler) DeleteTask(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(),
		c.Param("boardId"), c.Param("cardId"), c.Param("taskId"), user.ID); err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

// AssignMember adds a member to the task's assignment set
// POST /api/boards/:boardId/cards/:cardId/tasks/:taskId/assign
func (h *Handler) AssignMember(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	var req AssignMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.BadRequest(err.Error())
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	task, err := h.service.AssignMember(c.Request.Context(),
		c.Param("boardId"), c.Param("cardId"), c.Param("taskId"), user.ID, req.MemberID)
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, service.Assignment{TaskID: task.ID, MemberID: req.MemberID})
}

// ListAssignedMembers expands the assignment set into pairs
// GET /api/boards/:boardId/cards/:cardId/tasks/:taskId/assign
func (h *Handler) ListAssignedMembers(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	assignments, err := h.service.ListAssignedMembers(c.Request.Context(),
		c.Param("boardId"), c.Param("cardId"), c.Param("taskId"), user.ID)
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// UnassignMember removes a member from the assignment set
// DELETE /api/boards/:boardId/cards/:cardId/tasks/:taskId/assign/:memberId
func (h *Handler) UnassignMember(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	_, err := h.service.UnassignMember(c.Request.Context(),
		c.Param("boardId"), c.Param("cardId"), c.Param("taskId"), user.ID, c.Param("memberId"))
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MoveTask re-parents a task to another card
// POST /api/boards/:boardId/cards/:cardId/tasks/:taskId/move
func (h *Handler) MoveTask(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.BadRequest(err.Error())
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	task, err := h.service.MoveTask(c.Request.Context(),
		c.Param("boardId"), c.Param("cardId"), c.Param("taskId"), user.ID, req.TargetCardID)
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

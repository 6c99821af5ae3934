package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authapi "github.com/minitrello/minitrello/internal/auth/api"
	"github.com/minitrello/minitrello/internal/board/service"
	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/common/httpmw"
	"github.com/minitrello/minitrello/internal/common/logger"
	usermodels "github.com/minitrello/minitrello/internal/user/models"
)

// Handler contains HTTP handlers for the board API
type Handler struct {
	service *service.Service
	logger  *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(svc *service.Service, log *logger.Logger) *Handler {
	return &Handler{
		service: svc,
		logger:  log,
	}
}

// caller returns the authenticated user or writes a 401.
func (h *Handler) caller(c *gin.Context) (*usermodels.User, bool) {
	user, ok := authapi.CurrentUser(c)
	if !ok {
		appErr := errors.Unauthorized("not authenticated")
		c.JSON(appErr.HTTPStatus, appErr)
		return nil, false
	}
	return user, true
}

// Board endpoints

// CreateBoard creates a new board owned by the caller
// POST /api/boards
func (h *Handler) CreateBoard(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.BadRequest(err.Error())
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	board, err := h.service.CreateBoard(c.Request.Context(), user.ID, &service.CreateBoardRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, board)
}

// ListBoards lists the caller's boards
// GET /api/boards
func (h *Handler) ListBoards(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	boards, err := h.service.ListBoards(c.Request.Context(), user.ID)
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, boards)
}

// GetBoard retrieves a board the caller is a member of
// GET /api/boards/:boardId
func (h *Handler) GetBoard(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	board, err := h.service.GetBoard(c.Request.Context(), c.Param("boardId"), user.ID)
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// UpdateBoard updates a board (owner only)
// PUT /api/boards/:boardId
func (h *Handler) UpdateBoard(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.BadRequest(err.Error())
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	board, err := h.service.UpdateBoard(c.Request.Context(), c.Param("boardId"), user.ID, &service.UpdateBoardRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// DeleteBoard deletes a board (owner only)
// DELETE /api/boards/:boardId
func (h *Handler) DeleteBoard(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.service.DeleteBoard(c.Request.Context(), c.Param("boardId"), user.ID); err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "board deleted"})
}

// Package api provides HTTP handlers for the GitHub integration.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authapi "github.com/minitrello/minitrello/internal/auth/api"
	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/common/httpmw"
	"github.com/minitrello/minitrello/internal/common/logger"
	"github.com/minitrello/minitrello/internal/github"
)

// AttachRequest stores a provider object on a task
type AttachRequest struct {
	Type string                 `json:"type" binding:"required"`
	Data map[string]interface{} `json:"data" binding:"required"`
}

// RemoveRequest deletes attachments by id or commit sha
type RemoveRequest struct {
	AttachmentID string `json:"attachmentId" binding:"required"`
}

// Handler contains HTTP handlers for the GitHub API
type Handler struct {
	service *github.Service
	logger  *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(svc *github.Service, log *logger.Logger) *Handler {
	return &Handler{
		service: svc,
		logger:  log,
	}
}

// RepoSummary fetches recent repository activity with the caller's
// linked token
// GET /api/github/repo?owner=&repo=
func (h *Handler) RepoSummary(c *gin.Context) {
	user, ok := authapi.CurrentUser(c)
	if !ok {
		appErr := errors.Unauthorized("not authenticated")
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	summary, err := h.service.RepoSummary(c.Request.Context(), user, c.Query("owner"), c.Query("repo"))
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Attach stores a provider object as a task attachment
// POST /api/github/:boardId/:cardId/:taskId/attach
func (h *Handler) Attach(c *gin.Context) {
	user, ok := authapi.CurrentUser(c)
	if !ok {
		appErr := errors.Unauthorized("not authenticated")
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	var req AttachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.BadRequest(err.Error())
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	attachment, err := h.service.Attach(c.Request.Context(),
		c.Param("boardId"), c.Param("cardId"), c.Param("taskId"), user.ID, req.Type, req.Data)
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, attachment)
}

// Remove deletes attachments matching an id or commit sha
// POST /api/github/:boardId/:cardId/:taskId/remove
func (h *Handler) Remove(c *gin.Context) {
	user, ok := authapi.CurrentUser(c)
	if !ok {
		appErr := errors.Unauthorized("not authenticated")
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	var req RemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.BadRequest(err.Error())
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	err := h.service.Remove(c.Request.Context(),
		c.Param("boardId"), c.Param("cardId"), c.Param("taskId"), user.ID, req.AttachmentID)
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authapi "github.com/minitrello/minitrello/internal/auth/api"
	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/common/httpmw"
	"github.com/minitrello/minitrello/internal/common/logger"
	"github.com/minitrello/minitrello/internal/user/service"
)

// Handler contains HTTP handlers for the user API
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

// Search finds users by substring match on email or fullname
// GET /api/users/search?q=
func (h *Handler) Search(c *gin.Context) {
	users, err := h.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, usersToResponse(users))
}

// List resolves a batch of user ids to profiles
// POST /api/users/list
func (h *Handler) List(c *gin.Context) {
	var req ListUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.BadRequest(err.Error())
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	users, err := h.service.GetByIDs(c.Request.Context(), req.IDs)
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, usersToResponse(users))
}

// Update changes the caller's own profile
// PUT /api/users/:userId
func (h *Handler) Update(c *gin.Context) {
	caller, ok := authapi.CurrentUser(c)
	if !ok {
		appErr := errors.Unauthorized("not authenticated")
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.BadRequest(err.Error())
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	user, err := h.service.Update(c.Request.Context(), caller.ID, c.Param("userId"), &service.UpdateUserRequest{
		Fullname:  req.Fullname,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/common/httpmw"
)

// Invite invites a user to a board (owner only)
// POST /api/boards/:boardId/invite
func (h *Handler) Invite(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.BadRequest(err.Error())
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	invitation, err := h.service.Invite(c.Request.Context(), c.Param("boardId"), user.ID, req.MemberID, req.EmailMember)
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, invitation)
}

// ListInvitations lists the caller's pending invitations
// GET /api/boards/invitations
func (h *Handler) ListInvitations(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	invitations, err := h.service.ListPendingInvitations(c.Request.Context(), user.ID)
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, invitations)
}

// HandleInvitation accepts or declines an invitation (invitee only)
// POST /api/boards/invitations/handle
func (h *Handler) HandleInvitation(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	var req HandleInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.BadRequest(err.Error())
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	invitation, err := h.service.ResolveInvitation(c.Request.Context(), req.InviteID, user.ID, req.Status)
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, invitation)
}

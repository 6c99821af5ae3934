package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minitrello/minitrello/internal/board/service"
	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/common/httpmw"
)

// ListCards lists a board's cards in creation order
// GET /api/boards/:boardId/cards
func (h *Handler) ListCards(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	cards, err := h.service.ListCards(c.Request.Context(), c.Param("boardId"), user.ID)
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

// CreateCard adds a card to a board
// POST /api/boards/:boardId/cards
func (h *Handler) CreateCard(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.BadRequest(err.Error())
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	card, err := h.service.CreateCard(c.Request.Context(), c.Param("boardId"), user.ID, &service.CreateCardRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

// GetCard retrieves a card
// GET /api/boards/:boardId/cards/:cardId
func (h *Handler) GetCard(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	card, err := h.service.GetCard(c.Request.Context(), c.Param("boardId"), c.Param("cardId"), user.ID)
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// UpdateCard applies a partial update to a card
// PUT /api/boards/:boardId/cards/:cardId
func (h *Handler) UpdateCard(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	var req UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.BadRequest(err.Error())
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	card, err := h.service.UpdateCard(c.Request.Context(), c.Param("boardId"), c.Param("cardId"), user.ID, &service.UpdateCardRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// DeleteCard removes a card and its tasks
// DELETE /api/boards/:boardId/cards/:cardId
func (h *Handler) DeleteCard(c *gin.Context) {
	user, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCard(c.Request.Context(), c.Param("boardId"), c.Param("cardId"), user.ID); err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "card deleted"})
}

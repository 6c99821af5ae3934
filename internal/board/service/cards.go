package service

import (
	"context"

	"github.com/minitrello/minitrello/internal/board/models"
	"github.com/minitrello/minitrello/internal/board/repository"
	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/events"
)

// CreateCardRequest carries the fields for card creation.
type CreateCardRequest struct {
	Name        string
	Description string
}

// UpdateCardRequest carries the mutable card fields. Nil fields are
// left unchanged.
type UpdateCardRequest struct {
	Name        *string
	Description *string
}

// ListCards returns a board's cards in creation order. The caller must
// be a board member.
func (s *Service) ListCards(ctx context.Context, boardID, callerID string) ([]*models.Card, error) {
	if _, err := s.requireMember(ctx, boardID, callerID); err != nil {
		return nil, err
	}
	cards, err := s.repo.ListCards(ctx, boardID)
	if err != nil {
		return nil, errors.InternalError("failed to list cards", err)
	}
	return cards, nil
}

// CreateCard adds a card to the board.
func (s *Service) CreateCard(ctx context.Context, boardID, callerID string, req *CreateCardRequest) (*models.Card, error) {
	if req.Name == "" {
		return nil, errors.ValidationError("name", "name is required")
	}
	if _, err := s.requireMember(ctx, boardID, callerID); err != nil {
		return nil, err
	}

	card := &models.Card{
		BoardID:     boardID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.CreateCard(ctx, card); err != nil {
		return nil, errors.InternalError("failed to create card", err)
	}
	s.publishBoardEvent(ctx, events.CardCreated, boardID, map[string]interface{}{"cardId": card.ID})
	return card, nil
}

// GetCard returns a card under the given board.
func (s *Service) GetCard(ctx context.Context, boardID, cardID, callerID string) (*models.Card, error) {
	if _, err := s.requireMember(ctx, boardID, callerID); err != nil {
		return nil, err
	}
	card, err := s.repo.GetCard(ctx, boardID, cardID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFound("card", cardID)
		}
		return nil, errors.InternalError("failed to load card", err)
	}
	return card, nil
}

// UpdateCard applies a partial update to a card.
func (s *Service) UpdateCard(ctx context.Context, boardID, cardID, callerID string, req *UpdateCardRequest) (*models.Card, error) {
	card, err := s.GetCard(ctx, boardID, cardID, callerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		card.Name = *req.Name
	}
	if req.Description != nil {
		card.Description = *req.Description
	}

	if err := s.repo.UpdateCard(ctx, card); err != nil {
		return nil, errors.InternalError("failed to update card", err)
	}
	s.publishBoardEvent(ctx, events.CardUpdated, boardID, map[string]interface{}{"cardId": card.ID})
	return card, nil
}

// DeleteCard removes a card and its tasks.
func (s *Service) DeleteCard(ctx context.Context, boardID, cardID, callerID string) error {
	if _, err := s.requireMember(ctx, boardID, callerID); err != nil {
		return err
	}

	if err := s.repo.DeleteCard(ctx, boardID, cardID); err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFound("card", cardID)
		}
		return errors.InternalError("failed to delete card", err)
	}
	s.publishBoardEvent(ctx, events.CardDeleted, boardID, map[string]interface{}{"cardId": cardID})
	return nil
}

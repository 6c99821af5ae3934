package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/minitrello/minitrello/internal/board/models"
	"github.com/minitrello/minitrello/internal/board/repository"
	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/events"
)

// CreateBoardRequest carries the fields for board creation.
type CreateBoardRequest struct {
	Name        string
	Description string
}

// UpdateBoardRequest carries the mutable board fields. Nil fields are
// left unchanged.
type UpdateBoardRequest struct {
	Name        *string
	Description *string
}

// CreateBoard creates a board owned by the caller. The owner is always
// the first member.
func (s *Service) CreateBoard(ctx context.Context, ownerID string, req *CreateBoardRequest) (*models.Board, error) {
	if req.Name == "" {
		return nil, errors.ValidationError("name", "name is required")
	}

	board := &models.Board{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     ownerID,
		Members:     models.StringList{ownerID},
	}
	if err := s.repo.CreateBoard(ctx, board); err != nil {
		return nil, errors.InternalError("failed to create board", err)
	}

	s.logger.Info("board created", zap.String("board_id", board.ID), zap.String("owner_id", ownerID))
	s.publishBoardEvent(ctx, events.BoardCreated, board.ID, nil)
	return board, nil
}

// ListBoards returns every board the caller is a member of.
func (s *Service) ListBoards(ctx context.Context, callerID string) ([]*models.Board, error) {
	boards, err := s.repo.ListBoardsByMember(ctx, callerID)
	if err != nil {
		return nil, errors.InternalError("failed to list boards", err)
	}
	return boards, nil
}

// GetBoard returns a board the caller is a member of.
func (s *Service) GetBoard(ctx context.Context, boardID, callerID string) (*models.Board, error) {
	board, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFound("board", boardID)
		}
		return nil, errors.InternalError("failed to load board", err)
	}
	if !board.HasMember(callerID) {
		return nil, errors.Forbidden("not a member of this board")
	}
	return board, nil
}

// UpdateBoard applies a partial update. Only the owner may update a
// board.
func (s *Service) UpdateBoard(ctx context.Context, boardID, callerID string, req *UpdateBoardRequest) (*models.Board, error) {
	board, err := s.requireOwner(ctx, boardID, callerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		board.Name = *req.Name
	}
	if req.Description != nil {
		board.Description = *req.Description
	}

	if err := s.repo.UpdateBoard(ctx, board); err != nil {
		return nil, errors.InternalError("failed to update board", err)
	}
	s.publishBoardEvent(ctx, events.BoardUpdated, board.ID, nil)
	return board, nil
}

// DeleteBoard removes a board and its cards, tasks and invitations.
// Only the owner may delete a board.
func (s *Service) DeleteBoard(ctx context.Context, boardID, callerID string) error {
	if _, err := s.requireOwner(ctx, boardID, callerID); err != nil {
		return err
	}

	if err := s.repo.DeleteBoard(ctx, boardID); err != nil {
		return errors.InternalError("failed to delete board", err)
	}
	s.logger.Info("board deleted", zap.String("board_id", boardID))
	s.publishBoardEvent(ctx, events.BoardDeleted, boardID, nil)
	return nil
}

// requireMember loads the board and checks the caller is a member.
func (s *Service) requireMember(ctx context.Context, boardID, callerID string) (*models.Board, error) {
	return s.GetBoard(ctx, boardID, callerID)
}

// requireOwner loads the board and checks the caller owns it.
func (s *Service) requireOwner(ctx context.Context, boardID, callerID string) (*models.Board, error) {
	board, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFound("board", boardID)
		}
		return nil, errors.InternalError("failed to load board", err)
	}
	if board.OwnerID != callerID {
		return nil, errors.Forbidden("only the board owner may do this")
	}
	return board, nil
}

// Package service implements the board domain: boards with an
// owner/member authorization model, the invitation workflow, and the
// card and task stores nested beneath each board.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/minitrello/minitrello/internal/board/repository"
	"github.com/minitrello/minitrello/internal/common/logger"
	"github.com/minitrello/minitrello/internal/events"
	"github.com/minitrello/minitrello/internal/events/bus"
)

// Service provides board, invitation, card and task operations.
type Service struct {
	repo     repository.Repository
	eventBus bus.EventBus
	logger   *logger.Logger
}

// NewService creates a new board service
func NewService(repo repository.Repository, eventBus bus.EventBus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   log.WithFields(zap.String("component", "board-service")),
	}
}

// publishBoardEvent emits a change notification on the board's feed.
// Delivery is best effort and must never fail the originating request.
func (s *Service) publishBoardEvent(ctx context.Context, eventType, boardID string, data map[string]interface{}) {
	if s.eventBus == nil {
		return
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	data["boardId"] = boardID

	event := bus.NewEvent(eventType, "board-service", data)
	if err := s.eventBus.Publish(ctx, events.SubjectBoard(boardID), event); err != nil {
		s.logger.Warn("failed to publish board event",
			zap.String("event", eventType),
			zap.String("board_id", boardID),
			zap.Error(err))
	}
}

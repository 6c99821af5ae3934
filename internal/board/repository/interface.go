package repository

import (
	"context"
	"errors"

	"github.com/minitrello/minitrello/internal/board/models"
)

// ErrNotFound is returned when an id does not resolve under the given
// parent scope.
var ErrNotFound = errors.New("record not found")

// Repository defines the interface for board, invitation, card and
// task storage operations
type Repository interface {
	// Board operations
	CreateBoard(ctx context.Context, board *models.Board) error
	GetBoard(ctx context.Context, id string) (*models.Board, error)
	UpdateBoard(ctx context.Context, board *models.Board) error
	// DeleteBoard removes the board and cascades to its cards, tasks
	// and invitations.
	DeleteBoard(ctx context.Context, id string) error
	ListBoardsByMember(ctx context.Context, userID string) ([]*models.Board, error)

	// Invitation operations
	CreateInvitation(ctx context.Context, invitation *models.Invitation) error
	GetInvitation(ctx context.Context, id string) (*models.Invitation, error)
	UpdateInvitation(ctx context.Context, invitation *models.Invitation) error
	ListPendingInvitations(ctx context.Context, memberID string) ([]*models.Invitation, error)

	// Card operations, scoped under a board
	CreateCard(ctx context.Context, card *models.Card) error
	GetCard(ctx context.Context, boardID, id string) (*models.Card, error)
	UpdateCard(ctx context.Context, card *models.Card) error
	DeleteCard(ctx context.Context, boardID, id string) error
	ListCards(ctx context.Context, boardID string) ([]*models.Card, error)

	// Task operations, scoped under a card
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, cardID, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, cardID, id string) error
	ListTasks(ctx context.Context, cardID string) ([]*models.Task, error)
	// MoveTask re-parents a task under another card in one atomic
	// write, preserving the task id.
	MoveTask(ctx context.Context, taskID, targetCardID string) error

	// Close closes the repository (for database connections)
	Close() error
}

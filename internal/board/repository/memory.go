package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/minitrello/minitrello/internal/board/models"
)

// MemoryRepository provides in-memory board storage operations
type MemoryRepository struct {
	boards      map[string]*models.Board
	invitations map[string]*models.Invitation
	cards       map[string]*models.Card
	tasks       map[string]*models.Task
	mu          sync.RWMutex
}

// Ensure MemoryRepository implements Repository interface
var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a new in-memory board repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		boards:      make(map[string]*models.Board),
		invitations: make(map[string]*models.Invitation),
		cards:       make(map[string]*models.Card),
		tasks:       make(map[string]*models.Task),
	}
}

// Close is a no-op for in-memory repository
func (r *MemoryRepository) Close() error {
	return nil
}

// Board operations

// CreateBoard inserts a new board
func (r *MemoryRepository) CreateBoard(ctx context.Context, board *models.Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if board.ID == "" {
		board.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	board.CreatedAt = now
	board.UpdatedAt = now

	r.boards[board.ID] = copyBoard(board)
	return nil
}

// GetBoard retrieves a board by ID
func (r *MemoryRepository) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	board, ok := r.boards[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyBoard(board), nil
}

// UpdateBoard updates an existing board
func (r *MemoryRepository) UpdateBoard(ctx context.Context, board *models.Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.boards[board.ID]; !ok {
		return ErrNotFound
	}
	board.UpdatedAt = time.Now().UTC()
	r.boards[board.ID] = copyBoard(board)
	return nil
}

// DeleteBoard removes a board and cascades to its cards, tasks and
// invitations.
func (r *MemoryRepository) DeleteBoard(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.boards[id]; !ok {
		return ErrNotFound
	}
	delete(r.boards, id)

	for cardID, card := range r.cards {
		if card.BoardID == id {
			delete(r.cards, cardID)
		}
	}
	for taskID, task := range r.tasks {
		if task.BoardID == id {
			delete(r.tasks, taskID)
		}
	}
	for inviteID, invitation := range r.invitations {
		if invitation.BoardID == id {
			delete(r.invitations, inviteID)
		}
	}
	return nil
}

// ListBoardsByMember returns all boards the user belongs to, newest first.
func (r *MemoryRepository) ListBoardsByMember(ctx context.Context, userID string) ([]*models.Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*models.Board{}
	for _, board := range r.boards {
		if board.HasMember(userID) {
			result = append(result, copyBoard(board))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Invitation operations

// CreateInvitation inserts a new invitation
func (r *MemoryRepository) CreateInvitation(ctx context.Context, invitation *models.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if invitation.ID == "" {
		invitation.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	invitation.CreatedAt = now
	invitation.UpdatedAt = now
	if invitation.Status == "" {
		invitation.Status = models.InvitationPending
	}

	cp := *invitation
	r.invitations[invitation.ID] = &cp
	return nil
}

// GetInvitation retrieves an invitation by ID
func (r *MemoryRepository) GetInvitation(ctx context.Context, id string) (*models.Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	invitation, ok := r.invitations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *invitation
	return &cp, nil
}

// UpdateInvitation updates an existing invitation
func (r *MemoryRepository) UpdateInvitation(ctx context.Context, invitation *models.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.invitations[invitation.ID]; !ok {
		return ErrNotFound
	}
	invitation.UpdatedAt = time.Now().UTC()
	cp := *invitation
	r.invitations[invitation.ID] = &cp
	return nil
}

// ListPendingInvitations returns the user's pending invitations, newest first.
func (r *MemoryRepository) ListPendingInvitations(ctx context.Context, memberID string) ([]*models.Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*models.Invitation{}
	for _, invitation := range r.invitations {
		if invitation.MemberID == memberID && invitation.Status == models.InvitationPending {
			cp := *invitation
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Card operations

// CreateCard inserts a new card
func (r *MemoryRepository) CreateCard(ctx context.Context, card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	card.CreatedAt = now
	card.UpdatedAt = now

	cp := *card
	r.cards[card.ID] = &cp
	return nil
}

// GetCard retrieves a card by ID under the given board
func (r *MemoryRepository) GetCard(ctx context.Context, boardID, id string) (*models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, ok := r.cards[id]
	if !ok || card.BoardID != boardID {
		return nil, ErrNotFound
	}
	cp := *card
	return &cp, nil
}

// UpdateCard updates an existing card
func (r *MemoryRepository) UpdateCard(ctx context.Context, card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.cards[card.ID]
	if !ok || existing.BoardID != card.BoardID {
		return ErrNotFound
	}
	card.UpdatedAt = time.Now().UTC()
	cp := *card
	r.cards[card.ID] = &cp
	return nil
}

// DeleteCard deletes a card and its tasks
func (r *MemoryRepository) DeleteCard(ctx context.Context, boardID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	card, ok := r.cards[id]
	if !ok || card.BoardID != boardID {
		return ErrNotFound
	}
	delete(r.cards, id)

	for taskID, task := range r.tasks {
		if task.CardID == id {
			delete(r.tasks, taskID)
		}
	}
	return nil
}

// ListCards returns a board's cards ordered by creation time ascending
func (r *MemoryRepository) ListCards(ctx context.Context, boardID string) ([]*models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*models.Card{}
	for _, card := range r.cards {
		if card.BoardID == boardID {
			cp := *card
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Task operations

// CreateTask inserts a new task
func (r *MemoryRepository) CreateTask(ctx context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = models.DefaultTaskStatus
	}
	if task.Priority == "" {
		task.Priority = models.DefaultTaskPriority
	}

	r.tasks[task.ID] = copyTask(task)
	return nil
}

// GetTask retrieves a task by ID under the given card
func (r *MemoryRepository) GetTask(ctx context.Context, cardID, id string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok || task.CardID != cardID {
		return nil, ErrNotFound
	}
	return copyTask(task), nil
}

// UpdateTask updates an existing task
func (r *MemoryRepository) UpdateTask(ctx context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[task.ID]; !ok {
		return ErrNotFound
	}
	task.UpdatedAt = time.Now().UTC()
	r.tasks[task.ID] = copyTask(task)
	return nil
}

// DeleteTask deletes a task by ID under the given card
func (r *MemoryRepository) DeleteTask(ctx context.Context, cardID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok || task.CardID != cardID {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

// ListTasks returns a card's tasks ordered by creation time ascending
func (r *MemoryRepository) ListTasks(ctx context.Context, cardID string) ([]*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*models.Task{}
	for _, task := range r.tasks {
		if task.CardID == cardID {
			result = append(result, copyTask(task))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// MoveTask re-parents a task under another card, keeping its id.
func (r *MemoryRepository) MoveTask(ctx context.Context, taskID, targetCardID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok {
		return ErrNotFound
	}
	task.CardID = targetCardID
	task.UpdatedAt = time.Now().UTC()
	return nil
}

func copyBoard(b *models.Board) *models.Board {
	cp := *b
	cp.Members = append(models.StringList{}, b.Members...)
	return &cp
}

func copyTask(t *models.Task) *models.Task {
	cp := *t
	cp.AssignedMembers = append(models.StringList{}, t.AssignedMembers...)
	cp.GitHubAttachments = append(models.AttachmentList{}, t.GitHubAttachments...)
	if t.Deadline != nil {
		d := *t.Deadline
		cp.Deadline = &d
	}
	return &cp
}

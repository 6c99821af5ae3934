package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/minitrello/minitrello/internal/board/models"
)

// SQLRepository provides database-backed board storage via sqlx.
// Queries use ? placeholders and are rebound for the active driver.
type SQLRepository struct {
	db *sqlx.DB
}

// Ensure SQLRepository implements Repository interface
var _ Repository = (*SQLRepository)(nil)

// NewSQLRepository creates a board repository on top of an open database.
func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Close is a no-op; the shared database handle is closed by its owner.
func (r *SQLRepository) Close() error {
	return nil
}

// Board operations

// CreateBoard inserts a new board
func (r *SQLRepository) CreateBoard(ctx context.Context, board *models.Board) error {
	if board.ID == "" {
		board.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	board.CreatedAt = now
	board.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO boards (id, name, description, owner_id, members, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		board.ID, board.Name, board.Description, board.OwnerID, board.Members, board.CreatedAt, board.UpdatedAt)
	return err
}

// GetBoard retrieves a board by ID
func (r *SQLRepository) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	board := &models.Board{}
	query := r.db.Rebind(`
		SELECT id, name, description, owner_id, members, created_at, updated_at
		FROM boards WHERE id = ?
	`)
	err := r.db.GetContext(ctx, board, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return board, nil
}

// UpdateBoard updates an existing board
func (r *SQLRepository) UpdateBoard(ctx context.Context, board *models.Board) error {
	board.UpdatedAt = time.Now().UTC()

	query := r.db.Rebind(`
		UPDATE boards SET name = ?, description = ?, members = ?, updated_at = ?
		WHERE id = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		board.Name, board.Description, board.Members, board.UpdatedAt, board.ID)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBoard removes a board together with its cards, tasks and
// invitations in one transaction.
func (r *SQLRepository) DeleteBoard(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM boards WHERE id = ?`), id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}

	for _, stmt := range []string{
		`DELETE FROM tasks WHERE board_id = ?`,
		`DELETE FROM cards WHERE board_id = ?`,
		`DELETE FROM invitations WHERE board_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, r.db.Rebind(stmt), id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListBoardsByMember returns all boards the user belongs to, newest
// first. Membership is a JSON array column, so the candidate rows are
// filtered in Go.
func (r *SQLRepository) ListBoardsByMember(ctx context.Context, userID string) ([]*models.Board, error) {
	var boards []*models.Board
	query := `
		SELECT id, name, description, owner_id, members, created_at, updated_at
		FROM boards ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &boards, query); err != nil {
		return nil, err
	}

	result := []*models.Board{}
	for _, b := range boards {
		if b.HasMember(userID) {
			result = append(result, b)
		}
	}
	return result, nil
}

// Invitation operations

// CreateInvitation inserts a new invitation
func (r *SQLRepository) CreateInvitation(ctx context.Context, invitation *models.Invitation) error {
	if invitation.ID == "" {
		invitation.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	invitation.CreatedAt = now
	invitation.UpdatedAt = now
	if invitation.Status == "" {
		invitation.Status = models.InvitationPending
	}

	query := r.db.Rebind(`
		INSERT INTO invitations (id, board_id, board_name, board_owner_id, member_id, email_member, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		invitation.ID, invitation.BoardID, invitation.BoardName, invitation.BoardOwnerID,
		invitation.MemberID, invitation.EmailMember, invitation.Status,
		invitation.CreatedAt, invitation.UpdatedAt)
	return err
}

// GetInvitation retrieves an invitation by ID
func (r *SQLRepository) GetInvitation(ctx context.Context, id string) (*models.Invitation, error) {
	invitation := &models.Invitation{}
	query := r.db.Rebind(`
		SELECT id, board_id, board_name, board_owner_id, member_id, email_member, status, created_at, updated_at
		FROM invitations WHERE id = ?
	`)
	err := r.db.GetContext(ctx, invitation, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return invitation, nil
}

// UpdateInvitation updates an existing invitation
func (r *SQLRepository) UpdateInvitation(ctx context.Context, invitation *models.Invitation) error {
	invitation.UpdatedAt = time.Now().UTC()

	query := r.db.Rebind(`
		UPDATE invitations SET status = ?, updated_at = ? WHERE id = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		invitation.Status, invitation.UpdatedAt, invitation.ID)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPendingInvitations returns the user's pending invitations, newest
// first.
func (r *SQLRepository) ListPendingInvitations(ctx context.Context, memberID string) ([]*models.Invitation, error) {
	invitations := []*models.Invitation{}
	query := r.db.Rebind(`
		SELECT id, board_id, board_name, board_owner_id, member_id, email_member, status, created_at, updated_at
		FROM invitations
		WHERE member_id = ? AND status = ?
		ORDER BY created_at DESC
	`)
	if err := r.db.SelectContext(ctx, &invitations, query, memberID, models.InvitationPending); err != nil {
		return nil, err
	}
	return invitations, nil
}

// Card operations

// CreateCard inserts a new card
func (r *SQLRepository) CreateCard(ctx context.Context, card *models.Card) error {
	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	card.CreatedAt = now
	card.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO cards (id, board_id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		card.ID, card.BoardID, card.Name, card.Description, card.CreatedAt, card.UpdatedAt)
	return err
}

// GetCard retrieves a card by ID under the given board
func (r *SQLRepository) GetCard(ctx context.Context, boardID, id string) (*models.Card, error) {
	card := &models.Card{}
	query := r.db.Rebind(`
		SELECT id, board_id, name, description, created_at, updated_at
		FROM cards WHERE id = ? AND board_id = ?
	`)
	err := r.db.GetContext(ctx, card, query, id, boardID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return card, nil
}

// UpdateCard updates an existing card
func (r *SQLRepository) UpdateCard(ctx context.Context, card *models.Card) error {
	card.UpdatedAt = time.Now().UTC()

	query := r.db.Rebind(`
		UPDATE cards SET name = ?, description = ?, updated_at = ?
		WHERE id = ? AND board_id = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		card.Name, card.Description, card.UpdatedAt, card.ID, card.BoardID)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCard deletes a card and its tasks
func (r *SQLRepository) DeleteCard(ctx context.Context, boardID, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM cards WHERE id = ? AND board_id = ?`), id, boardID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM tasks WHERE card_id = ?`), id); err != nil {
		return err
	}
	return tx.Commit()
}

// ListCards returns a board's cards ordered by creation time ascending
func (r *SQLRepository) ListCards(ctx context.Context, boardID string) ([]*models.Card, error) {
	cards := []*models.Card{}
	query := r.db.Rebind(`
		SELECT id, board_id, name, description, created_at, updated_at
		FROM cards WHERE board_id = ? ORDER BY created_at ASC
	`)
	if err := r.db.SelectContext(ctx, &cards, query, boardID); err != nil {
		return nil, err
	}
	return cards, nil
}

// Task operations

// CreateTask inserts a new task
func (r *SQLRepository) CreateTask(ctx context.Context, task *models.Task) error {
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

	query := r.db.Rebind(`
		INSERT INTO tasks (id, board_id, card_id, title, description, status, priority, deadline, owner_id, assigned_members, github_attachments, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.BoardID, task.CardID, task.Title, task.Description,
		task.Status, task.Priority, task.Deadline, task.OwnerID,
		task.AssignedMembers, task.GitHubAttachments, task.CreatedAt, task.UpdatedAt)
	return err
}

// GetTask retrieves a task by ID under the given card
func (r *SQLRepository) GetTask(ctx context.Context, cardID, id string) (*models.Task, error) {
	task := &models.Task{}
	query := r.db.Rebind(`
		SELECT id, board_id, card_id, title, description, status, priority, deadline, owner_id, assigned_members, github_attachments, created_at, updated_at
		FROM tasks WHERE id = ? AND card_id = ?
	`)
	err := r.db.GetContext(ctx, task, query, id, cardID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask updates an existing task
func (r *SQLRepository) UpdateTask(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()

	query := r.db.Rebind(`
		UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, deadline = ?, assigned_members = ?, github_attachments = ?, updated_at = ?
		WHERE id = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.Status, task.Priority, task.Deadline,
		task.AssignedMembers, task.GitHubAttachments, task.UpdatedAt, task.ID)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTask deletes a task by ID under the given card
func (r *SQLRepository) DeleteTask(ctx context.Context, cardID, id string) error {
	result, err := r.db.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM tasks WHERE id = ? AND card_id = ?`), id, cardID)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTasks returns a card's tasks ordered by creation time ascending
func (r *SQLRepository) ListTasks(ctx context.Context, cardID string) ([]*models.Task, error) {
	tasks := []*models.Task{}
	query := r.db.Rebind(`
		SELECT id, board_id, card_id, title, description, status, priority, deadline, owner_id, assigned_members, github_attachments, created_at, updated_at
		FROM tasks WHERE card_id = ? ORDER BY created_at ASC
	`)
	if err := r.db.SelectContext(ctx, &tasks, query, cardID); err != nil {
		return nil, err
	}
	return tasks, nil
}

// MoveTask re-parents a task under another card. The single UPDATE
// keeps the task id stable and cannot lose the record mid-move.
func (r *SQLRepository) MoveTask(ctx context.Context, taskID, targetCardID string) error {
	query := r.db.Rebind(`UPDATE tasks SET card_id = ?, updated_at = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, targetCardID, time.Now().UTC(), taskID)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

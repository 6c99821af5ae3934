package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/minitrello/minitrello/internal/user/models"
)

// SQLRepository provides database-backed user storage via sqlx. Queries
// are written with ? placeholders and rebound for the active driver.
type SQLRepository struct {
	db *sqlx.DB
}

// Ensure SQLRepository implements Repository interface
var _ Repository = (*SQLRepository)(nil)

// NewSQLRepository creates a user repository on top of an open database.
func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Close is a no-op; the shared database handle is closed by its owner.
func (r *SQLRepository) Close() error {
	return nil
}

// Create inserts a new user
func (r *SQLRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO users (id, email, fullname, avatar_url, github_id, github_access_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Fullname, user.AvatarURL, user.GitHubID, user.GitHubAccessToken, user.CreatedAt, user.UpdatedAt)
	return err
}

// Get retrieves a user by ID
func (r *SQLRepository) Get(ctx context.Context, id string) (*models.User, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// GetByEmail retrieves a user by email
func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getWhere(ctx, "email = ?", email)
}

// GetByGitHubID retrieves a user by linked GitHub account id
func (r *SQLRepository) GetByGitHubID(ctx context.Context, githubID string) (*models.User, error) {
	return r.getWhere(ctx, "github_id = ?", githubID)
}

func (r *SQLRepository) getWhere(ctx context.Context, cond string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	query := r.db.Rebind(`
		SELECT id, email, fullname, avatar_url, github_id, github_access_token, created_at, updated_at
		FROM users WHERE ` + cond)
	err := r.db.GetContext(ctx, user, query, arg)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update updates an existing user
func (r *SQLRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()

	query := r.db.Rebind(`
		UPDATE users SET email = ?, fullname = ?, avatar_url = ?, github_id = ?, github_access_token = ?, updated_at = ?
		WHERE id = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		user.Email, user.Fullname, user.AvatarURL, user.GitHubID, user.GitHubAccessToken, user.UpdatedAt, user.ID)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByIDs resolves a batch of user ids, skipping ids that don't exist.
// The result preserves the order of the input slice.
func (r *SQLRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, email, fullname, avatar_url, github_id, github_access_token, created_at, updated_at
		FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var users []*models.User
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	ordered := make([]*models.User, 0, len(users))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered, nil
}

// Search performs a case-insensitive substring match on email and fullname.
func (r *SQLRepository) Search(ctx context.Context, query string, limit int) ([]*models.User, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	q := r.db.Rebind(`
		SELECT id, email, fullname, avatar_url, github_id, github_access_token, created_at, updated_at
		FROM users
		WHERE LOWER(email) LIKE ? OR LOWER(fullname) LIKE ?
		ORDER BY email
		LIMIT ?
	`)

	users := []*models.User{}
	if err := r.db.SelectContext(ctx, &users, q, pattern, pattern, limit); err != nil {
		return nil, err
	}
	return users, nil
}

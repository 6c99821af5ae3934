package repository

import (
	"context"
	"errors"

	"github.com/minitrello/minitrello/internal/user/models"
)

// ErrNotFound is returned when a user id or email does not resolve.
var ErrNotFound = errors.New("user not found")

// Repository defines the interface for user storage operations
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByGitHubID(ctx context.Context, githubID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error

	// GetByIDs resolves a batch of ids; ids that do not resolve are
	// silently skipped.
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	// Search performs a case-insensitive substring match on email and
	// fullname, returning at most limit results.
	Search(ctx context.Context, query string, limit int) ([]*models.User, error)

	// Close closes the repository (for database connections)
	Close() error
}

package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/minitrello/minitrello/internal/user/models"
)

// MemoryRepository provides in-memory user storage operations
type MemoryRepository struct {
	users map[string]*models.User
	mu    sync.RWMutex
}

// Ensure MemoryRepository implements Repository interface
var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a new in-memory user repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*models.User)}
}

// Close is a no-op for in-memory repository
func (r *MemoryRepository) Close() error {
	return nil
}

// Create inserts a new user
func (r *MemoryRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	cp := *user
	r.users[user.ID] = &cp
	return nil
}

// Get retrieves a user by ID
func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *user
	return &cp, nil
}

// GetByEmail retrieves a user by email
func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// GetByGitHubID retrieves a user by linked GitHub account id
func (r *MemoryRepository) GetByGitHubID(ctx context.Context, githubID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if githubID == "" {
		return nil, ErrNotFound
	}
	for _, user := range r.users {
		if user.GitHubID == githubID {
			cp := *user
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// Update updates an existing user
func (r *MemoryRepository) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

// GetByIDs resolves a batch of user ids, skipping ids that don't exist.
func (r *MemoryRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			cp := *user
			result = append(result, &cp)
		}
	}
	return result, nil
}

// Search performs a case-insensitive substring match on email and fullname.
func (r *MemoryRepository) Search(ctx context.Context, query string, limit int) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query)
	var result []*models.User
	for _, user := range r.users {
		if strings.Contains(strings.ToLower(user.Email), needle) ||
			strings.Contains(strings.ToLower(user.Fullname), needle) {
			cp := *user
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

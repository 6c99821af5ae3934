package repository

import (
	"context"
	"sync"

	"github.com/minitrello/minitrello/internal/auth/models"
)

// MemoryRepository provides in-memory challenge storage
type MemoryRepository struct {
	challenges map[string]*models.Challenge
	mu         sync.RWMutex
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a new in-memory challenge repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{challenges: make(map[string]*models.Challenge)}
}

// Close is a no-op for in-memory repository
func (r *MemoryRepository) Close() error {
	return nil
}

// Save stores a challenge, replacing any prior one for the same email.
func (r *MemoryRepository) Save(ctx context.Context, challenge *models.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *challenge
	r.challenges[challenge.Email] = &cp
	return nil
}

// Get returns the live challenge for an email.
func (r *MemoryRepository) Get(ctx context.Context, email string) (*models.Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	challenge, ok := r.challenges[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *challenge
	return &cp, nil
}

// Delete removes the challenge for an email.
func (r *MemoryRepository) Delete(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.challenges, email)
	return nil
}

package repository

import (
	"context"
	"errors"

	"github.com/minitrello/minitrello/internal/auth/models"
)

// ErrNotFound is returned when no challenge exists for an email.
var ErrNotFound = errors.New("challenge not found")

// Repository defines the interface for OTP challenge storage
type Repository interface {
	// Save stores a challenge, replacing any prior challenge for the
	// same email.
	Save(ctx context.Context, challenge *models.Challenge) error

	// Get returns the live challenge for an email, if any.
	Get(ctx context.Context, email string) (*models.Challenge, error)

	// Delete removes the challenge for an email. Deleting a missing
	// challenge is not an error.
	Delete(ctx context.Context, email string) error

	// Close closes the repository (for database connections)
	Close() error
}

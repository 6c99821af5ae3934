// Package service implements the user directory operations: profile
// lookup, substring search and batch resolution.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/common/logger"
	"github.com/minitrello/minitrello/internal/user/models"
	"github.com/minitrello/minitrello/internal/user/repository"
)

const (
	// searchLimit caps substring search results.
	searchLimit = 10
	// batchLimit caps how many ids a single batch lookup resolves.
	batchLimit = 30
)

// Service provides user directory operations.
type Service struct {
	repo   repository.Repository
	logger *logger.Logger
}

// UpdateUserRequest carries the mutable profile fields.
type UpdateUserRequest struct {
	Fullname  *string
	AvatarURL *string
}

// NewService creates a new user service
func NewService(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log.WithFields(zap.String("component", "user-service")),
	}
}

// Get returns the user for the given id.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFound("user", id)
		}
		return nil, errors.InternalError("failed to load user", err)
	}
	return user, nil
}

// Search performs a case-insensitive substring match on email and
// fullname, returning at most 10 users.
func (s *Service) Search(ctx context.Context, query string) ([]*models.User, error) {
	if query == "" {
		return nil, errors.ValidationError("q", "Search query is required")
	}
	users, err := s.repo.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, errors.InternalError("user search failed", err)
	}
	return users, nil
}

// GetByIDs resolves a batch of user ids to profiles. Batches larger
// than 30 ids are truncated; unknown ids are skipped.
func (s *Service) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) > batchLimit {
		ids = ids[:batchLimit]
	}
	users, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.InternalError("batch user lookup failed", err)
	}
	return users, nil
}

// Update applies a partial profile update. Only the account owner may
// update their own profile.
func (s *Service) Update(ctx context.Context, callerID, targetID string, req *UpdateUserRequest) (*models.User, error) {
	if callerID != targetID {
		return nil, errors.Forbidden("cannot update another user's profile")
	}

	user, err := s.repo.Get(ctx, targetID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFound("user", targetID)
		}
		return nil, errors.InternalError("failed to load user", err)
	}

	if req.Fullname != nil {
		user.Fullname = *req.Fullname
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, errors.InternalError("failed to update user", err)
	}
	s.logger.Debug("user profile updated", zap.String("user_id", user.ID))
	return user, nil
}

package github

import (
	"context"

	"go.uber.org/zap"

	boardmodels "github.com/minitrello/minitrello/internal/board/models"
	boardservice "github.com/minitrello/minitrello/internal/board/service"
	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/common/logger"
	usermodels "github.com/minitrello/minitrello/internal/user/models"
)

// Service exposes the GitHub integration: repository summaries and
// task attachment management.
type Service struct {
	client *Client
	boards *boardservice.Service
	logger *logger.Logger
}

// NewService creates a new GitHub integration service
func NewService(client *Client, boards *boardservice.Service, log *logger.Logger) *Service {
	return &Service{
		client: client,
		boards: boards,
		logger: log.WithFields(zap.String("component", "github-service")),
	}
}

// RepoSummary fetches recent repository activity using the caller's
// linked access token.
func (s *Service) RepoSummary(ctx context.Context, caller *usermodels.User, owner, repo string) (*RepoSummary, error) {
	if owner == "" || repo == "" {
		return nil, errors.ValidationError("repo", "owner and repo are required")
	}
	if caller.GitHubAccessToken == "" {
		return nil, errors.Unauthorized("no GitHub account linked")
	}

	summary, err := s.client.FetchRepoSummary(ctx, caller.GitHubAccessToken, owner, repo)
	if err != nil {
		s.logger.Error("github fetch failed",
			zap.String("owner", owner),
			zap.String("repo", repo),
			zap.Error(err))
		return nil, errors.BadGateway("failed to fetch repository activity", err)
	}
	return summary, nil
}

// Attach stores a provider object as an attachment on the task and
// returns the stored attachment with its stamps.
func (s *Service) Attach(ctx context.Context, boardID, cardID, taskID, callerID, refType string, data map[string]interface{}) (*boardmodels.GitHubAttachment, error) {
	if refType == "" {
		return nil, errors.ValidationError("type", "type is required")
	}
	attachment := boardmodels.GitHubAttachment{
		Type:   refType,
		Fields: data,
	}
	task, err := s.boards.AttachReference(ctx, boardID, cardID, taskID, callerID, attachment)
	if err != nil {
		return nil, err
	}
	stored := task.GitHubAttachments[len(task.GitHubAttachments)-1]
	return &stored, nil
}

// Remove deletes attachments matching the given id or commit sha.
func (s *Service) Remove(ctx context.Context, boardID, cardID, taskID, callerID, attachmentID string) error {
	if attachmentID == "" {
		return errors.ValidationError("attachmentId", "attachmentId is required")
	}
	_, err := s.boards.DetachReference(ctx, boardID, cardID, taskID, callerID, attachmentID)
	return err
}

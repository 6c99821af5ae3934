package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/minitrello/minitrello/internal/board/models"
	"github.com/minitrello/minitrello/internal/board/repository"
	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/events"
)

// CreateTaskRequest carries the fields for task creation. Status and
// priority fall back to their defaults when empty.
type CreateTaskRequest struct {
	Title       string
	Description string
	Status      string
	Priority    string
	Deadline    *time.Time
}

// UpdateTaskRequest carries the mutable task fields. Only fields on
// this allow-list can be patched; unknown payload keys are rejected at
// the binding layer.
type UpdateTaskRequest struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Deadline    *time.Time
}

// Assignment is a single {taskId, memberId} pair.
type Assignment struct {
	TaskID   string `json:"taskId"`
	MemberID string `json:"memberId"`
}

// ListTasks returns a card's tasks in creation order.
func (s *Service) ListTasks(ctx context.Context, boardID, cardID, callerID string) ([]*models.Task, error) {
	if _, err := s.requireCard(ctx, boardID, cardID, callerID); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListTasks(ctx, cardID)
	if err != nil {
		return nil, errors.InternalError("failed to list tasks", err)
	}
	return tasks, nil
}

// CreateTask adds a task to the card. Status defaults to "backlog" and
// priority to "medium".
func (s *Service) CreateTask(ctx context.Context, boardID, cardID, callerID string, req *CreateTaskRequest) (*models.Task, error) {
	if req.Title == "" {
		return nil, errors.ValidationError("title", "title is required")
	}
	if _, err := s.requireCard(ctx, boardID, cardID, callerID); err != nil {
		return nil, err
	}

	task := &models.Task{
		BoardID:           boardID,
		CardID:            cardID,
		Title:             req.Title,
		Description:       req.Description,
		Status:            req.Status,
		Priority:          req.Priority,
		Deadline:          req.Deadline,
		OwnerID:           callerID,
		AssignedMembers:   models.StringList{},
		GitHubAttachments: models.AttachmentList{},
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, errors.InternalError("failed to create task", err)
	}
	s.publishBoardEvent(ctx, events.TaskCreated, boardID, map[string]interface{}{"taskId": task.ID})
	return task, nil
}

// GetTask returns a task under the given card.
func (s *Service) GetTask(ctx context.Context, boardID, cardID, taskID, callerID string) (*models.Task, error) {
	if _, err := s.requireCard(ctx, boardID, cardID, callerID); err != nil {
		return nil, err
	}
	return s.loadTask(ctx, cardID, taskID)
}

// UpdateTask applies a partial update to a task.
func (s *Service) UpdateTask(ctx context.Context, boardID, cardID, taskID, callerID string, req *UpdateTaskRequest) (*models.Task, error) {
	task, err := s.GetTask(ctx, boardID, cardID, taskID, callerID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Deadline != nil {
		task.Deadline = req.Deadline
	}

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, errors.InternalError("failed to update task", err)
	}
	s.publishBoardEvent(ctx, events.TaskUpdated, boardID, map[string]interface{}{"taskId": task.ID})
	return task, nil
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, boardID, cardID, taskID, callerID string) error {
	if _, err := s.requireCard(ctx, boardID, cardID, callerID); err != nil {
		return err
	}

	if err := s.repo.DeleteTask(ctx, cardID, taskID); err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFound("task", taskID)
		}
		return errors.InternalError("failed to delete task", err)
	}
	s.publishBoardEvent(ctx, events.TaskDeleted, boardID, map[string]interface{}{"taskId": taskID})
	return nil
}

// AssignMember idempotently adds a member to the task's assignment set.
func (s *Service) AssignMember(ctx context.Context, boardID, cardID, taskID, callerID, memberID string) (*models.Task, error) {
	if memberID == "" {
		return nil, errors.ValidationError("memberId", "memberId is required")
	}
	task, err := s.GetTask(ctx, boardID, cardID, taskID, callerID)
	if err != nil {
		return nil, err
	}

	if task.IsAssigned(memberID) {
		return task, nil
	}
	task.AssignedMembers = append(task.AssignedMembers, memberID)

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, errors.InternalError("failed to assign member", err)
	}
	s.publishBoardEvent(ctx, events.TaskUpdated, boardID, map[string]interface{}{"taskId": task.ID})
	return task, nil
}

// UnassignMember idempotently removes a member from the assignment set.
func (s *Service) UnassignMember(ctx context.Context, boardID, cardID, taskID, callerID, memberID string) (*models.Task, error) {
	task, err := s.GetTask(ctx, boardID, cardID, taskID, callerID)
	if err != nil {
		return nil, err
	}

	filtered := make(models.StringList, 0, len(task.AssignedMembers))
	for _, m := range task.AssignedMembers {
		if m != memberID {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) == len(task.AssignedMembers) {
		return task, nil
	}
	task.AssignedMembers = filtered

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, errors.InternalError("failed to unassign member", err)
	}
	s.publishBoardEvent(ctx, events.TaskUpdated, boardID, map[string]interface{}{"taskId": task.ID})
	return task, nil
}

// ListAssignedMembers expands the assignment set into {taskId,
// memberId} pairs.
func (s *Service) ListAssignedMembers(ctx context.Context, boardID, cardID, taskID, callerID string) ([]Assignment, error) {
	task, err := s.GetTask(ctx, boardID, cardID, taskID, callerID)
	if err != nil {
		return nil, err
	}

	assignments := make([]Assignment, 0, len(task.AssignedMembers))
	for _, m := range task.AssignedMembers {
		assignments = append(assignments, Assignment{TaskID: task.ID, MemberID: m})
	}
	return assignments, nil
}

// MoveTask re-parents a task to another card on the same board. When
// the target card is absent or unchanged only updatedAt is stamped;
// the task id is preserved either way.
func (s *Service) MoveTask(ctx context.Context, boardID, cardID, taskID, callerID, targetCardID string) (*models.Task, error) {
	task, err := s.GetTask(ctx, boardID, cardID, taskID, callerID)
	if err != nil {
		return nil, err
	}

	if targetCardID == "" || targetCardID == cardID {
		if err := s.repo.UpdateTask(ctx, task); err != nil {
			return nil, errors.InternalError("failed to stamp task", err)
		}
		return task, nil
	}

	if _, err := s.repo.GetCard(ctx, boardID, targetCardID); err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFound("card", targetCardID)
		}
		return nil, errors.InternalError("failed to load target card", err)
	}

	if err := s.repo.MoveTask(ctx, taskID, targetCardID); err != nil {
		return nil, errors.InternalError("failed to move task", err)
	}

	moved, err := s.loadTask(ctx, targetCardID, taskID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("task moved",
		zap.String("task_id", taskID),
		zap.String("from_card", cardID),
		zap.String("to_card", targetCardID))
	s.publishBoardEvent(ctx, events.TaskMoved, boardID, map[string]interface{}{
		"taskId":       taskID,
		"fromCardId":   cardID,
		"targetCardId": targetCardID,
	})
	return moved, nil
}

// AttachReference appends an external reference to the task. The
// provider data is kept verbatim.
func (s *Service) AttachReference(ctx context.Context, boardID, cardID, taskID, callerID string, attachment models.GitHubAttachment) (*models.Task, error) {
	task, err := s.GetTask(ctx, boardID, cardID, taskID, callerID)
	if err != nil {
		return nil, err
	}

	attachment.AttachedAt = time.Now().UTC()
	attachment.AttachedBy = callerID
	task.GitHubAttachments = append(task.GitHubAttachments, attachment)

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, errors.InternalError("failed to attach reference", err)
	}
	s.publishBoardEvent(ctx, events.TaskUpdated, boardID, map[string]interface{}{"taskId": task.ID})
	return task, nil
}

// DetachReference removes every attachment whose id or commit sha
// equals the given reference.
func (s *Service) DetachReference(ctx context.Context, boardID, cardID, taskID, callerID, ref string) (*models.Task, error) {
	task, err := s.GetTask(ctx, boardID, cardID, taskID, callerID)
	if err != nil {
		return nil, err
	}

	kept := make(models.AttachmentList, 0, len(task.GitHubAttachments))
	for _, a := range task.GitHubAttachments {
		if !a.Matches(ref) {
			kept = append(kept, a)
		}
	}
	task.GitHubAttachments = kept

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, errors.InternalError("failed to detach reference", err)
	}
	s.publishBoardEvent(ctx, events.TaskUpdated, boardID, map[string]interface{}{"taskId": task.ID})
	return task, nil
}

// requireCard checks board membership and that the card belongs to the
// board.
func (s *Service) requireCard(ctx context.Context, boardID, cardID, callerID string) (*models.Card, error) {
	return s.GetCard(ctx, boardID, cardID, callerID)
}

func (s *Service) loadTask(ctx context.Context, cardID, taskID string) (*models.Task, error) {
	task, err := s.repo.GetTask(ctx, cardID, taskID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFound("task", taskID)
		}
		return nil, errors.InternalError("failed to load task", err)
	}
	return task, nil
}

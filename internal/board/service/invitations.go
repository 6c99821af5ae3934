package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/minitrello/minitrello/internal/board/models"
	"github.com/minitrello/minitrello/internal/board/repository"
	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/events"
)

// Invite creates a pending invitation for a user to join the board.
// Only the owner may invite; inviting an existing member fails.
func (s *Service) Invite(ctx context.Context, boardID, callerID, memberID, emailMember string) (*models.Invitation, error) {
	if memberID == "" {
		return nil, errors.ValidationError("memberId", "memberId is required")
	}

	board, err := s.requireOwner(ctx, boardID, callerID)
	if err != nil {
		return nil, err
	}
	if board.HasMember(memberID) {
		return nil, errors.BadRequest("User is already a member of this board")
	}

	invitation := &models.Invitation{
		BoardID:      board.ID,
		BoardName:    board.Name,
		BoardOwnerID: board.OwnerID,
		MemberID:     memberID,
		EmailMember:  emailMember,
		Status:       models.InvitationPending,
	}
	if err := s.repo.CreateInvitation(ctx, invitation); err != nil {
		return nil, errors.InternalError("failed to create invitation", err)
	}

	s.logger.Info("invitation sent",
		zap.String("board_id", board.ID),
		zap.String("member_id", memberID))
	s.publishBoardEvent(ctx, events.InvitationSent, board.ID, map[string]interface{}{
		"inviteId": invitation.ID,
		"memberId": invitation.MemberID,
	})
	return invitation, nil
}

// ResolveInvitation accepts or declines an invitation. Only the named
// invitee may resolve it. Acceptance idempotently adds the invitee to
// the board's member set; the invitation status is always stamped.
func (s *Service) ResolveInvitation(ctx context.Context, inviteID, callerID, status string) (*models.Invitation, error) {
	if status != models.InvitationAccepted && status != models.InvitationDeclined {
		return nil, errors.ValidationError("status", "status must be accepted or declined")
	}

	invitation, err := s.repo.GetInvitation(ctx, inviteID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFound("invitation", inviteID)
		}
		return nil, errors.InternalError("failed to load invitation", err)
	}
	if invitation.MemberID != callerID {
		return nil, errors.Forbidden("invitation belongs to another user")
	}

	if status == models.InvitationAccepted {
		board, err := s.repo.GetBoard(ctx, invitation.BoardID)
		if err == nil {
			board.AddMember(callerID)
			if err := s.repo.UpdateBoard(ctx, board); err != nil {
				return nil, errors.InternalError("failed to add member to board", err)
			}
		} else if err != repository.ErrNotFound {
			// a deleted board still lets the invitation resolve
			return nil, errors.InternalError("failed to load board", err)
		}
	}

	invitation.Status = status
	if err := s.repo.UpdateInvitation(ctx, invitation); err != nil {
		return nil, errors.InternalError("failed to update invitation", err)
	}

	s.logger.Info("invitation resolved",
		zap.String("invite_id", invitation.ID),
		zap.String("status", status))
	s.publishBoardEvent(ctx, events.InvitationResolved, invitation.BoardID, map[string]interface{}{
		"inviteId": invitation.ID,
		"memberId": invitation.MemberID,
		"status":   status,
	})
	return invitation, nil
}

// ListPendingInvitations returns the caller's pending invitations.
func (s *Service) ListPendingInvitations(ctx context.Context, callerID string) ([]*models.Invitation, error) {
	invitations, err := s.repo.ListPendingInvitations(ctx, callerID)
	if err != nil {
		return nil, errors.InternalError("failed to list invitations", err)
	}
	return invitations, nil
}

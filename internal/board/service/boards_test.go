package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minitrello/minitrello/internal/board/models"
	"github.com/minitrello/minitrello/internal/board/repository"
	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/common/logger"
	"github.com/minitrello/minitrello/internal/events/bus"
)

func newTestBoardService(t *testing.T) (*Service, *bus.MemoryEventBus) {
	t.Helper()
	log, err := logger.NewLogger(logger.LoggingConfig{Level: "error", Format: "json", OutputPath: "stdout"})
	require.NoError(t, err)

	eventBus := bus.NewMemoryEventBus(log)
	return NewService(repository.NewMemoryRepository(), eventBus, log), eventBus
}

func TestCreateBoard_OwnerIsFirstMember(t *testing.T) {
	svc, _ := newTestBoardService(t)
	ctx := context.Background()

	board, err := svc.CreateBoard(ctx, "user-a", &CreateBoardRequest{Name: "Sprint 1"})
	require.NoError(t, err)
	require.Len(t, board.Members, 1)
	assert.Equal(t, "user-a", board.Members[0])
	assert.Equal(t, "user-a", board.OwnerID)
}

func TestCreateBoard_RequiresName(t *testing.T) {
	svc, _ := newTestBoardService(t)

	_, err := svc.CreateBoard(context.Background(), "user-a", &CreateBoardRequest{})
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidationError, appErr.Code)
}

func TestGetBoard_NonMemberForbidden(t *testing.T) {
	svc, _ := newTestBoardService(t)
	ctx := context.Background()

	board, err := svc.CreateBoard(ctx, "user-a", &CreateBoardRequest{Name: "Private"})
	require.NoError(t, err)

	_, err = svc.GetBoard(ctx, board.ID, "user-b")
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeForbidden, appErr.Code)
}

func TestUpdateBoard_OwnerOnly(t *testing.T) {
	svc, _ := newTestBoardService(t)
	ctx := context.Background()

	board, err := svc.CreateBoard(ctx, "user-a", &CreateBoardRequest{Name: "Sprint 1"})
	require.NoError(t, err)

	// member joins via invitation
	invitation, err := svc.Invite(ctx, board.ID, "user-a", "user-b", "b@example.com")
	require.NoError(t, err)
	_, err = svc.ResolveInvitation(ctx, invitation.ID, "user-b", models.InvitationAccepted)
	require.NoError(t, err)

	name := "Renamed"
	_, err = svc.UpdateBoard(ctx, board.ID, "user-b", &UpdateBoardRequest{Name: &name})
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeForbidden, appErr.Code)

	updated, err := svc.UpdateBoard(ctx, board.ID, "user-a", &UpdateBoardRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestDeleteBoard_OwnerOnlyAndCascades(t *testing.T) {
	svc, _ := newTestBoardService(t)
	ctx := context.Background()

	board, err := svc.CreateBoard(ctx, "user-a", &CreateBoardRequest{Name: "Sprint 1"})
	require.NoError(t, err)
	card, err := svc.CreateCard(ctx, board.ID, "user-a", &CreateCardRequest{Name: "Todo"})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, board.ID, card.ID, "user-a", &CreateTaskRequest{Title: "Fix bug"})
	require.NoError(t, err)

	err = svc.DeleteBoard(ctx, board.ID, "user-b")
	require.Error(t, err)

	require.NoError(t, svc.DeleteBoard(ctx, board.ID, "user-a"))

	_, err = svc.GetBoard(ctx, board.ID, "user-a")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestInvite_OwnerOnly(t *testing.T) {
	svc, _ := newTestBoardService(t)
	ctx := context.Background()

	board, err := svc.CreateBoard(ctx, "user-a", &CreateBoardRequest{Name: "Sprint 1"})
	require.NoError(t, err)

	_, err = svc.Invite(ctx, board.ID, "user-b", "user-c", "")
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeForbidden, appErr.Code)
}

func TestInvite_AlreadyMember(t *testing.T) {
	svc, _ := newTestBoardService(t)
	ctx := context.Background()

	board, err := svc.CreateBoard(ctx, "user-a", &CreateBoardRequest{Name: "Sprint 1"})
	require.NoError(t, err)

	_, err = svc.Invite(ctx, board.ID, "user-a", "user-a", "")
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeBadRequest, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	assert.Equal(t, "User is already a member of this board", appErr.Message)
}

func TestInvitationFlow(t *testing.T) {
	svc, _ := newTestBoardService(t)
	ctx := context.Background()

	board, err := svc.CreateBoard(ctx, "user-a", &CreateBoardRequest{Name: "Sprint 1"})
	require.NoError(t, err)
	require.Equal(t, "user-a", board.Members[0])

	invitation, err := svc.Invite(ctx, board.ID, "user-a", "user-b", "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.InvitationPending, invitation.Status)
	assert.Equal(t, "Sprint 1", invitation.BoardName)
	assert.Equal(t, "user-a", invitation.BoardOwnerID)

	pending, err := svc.ListPendingInvitations(ctx, "user-b")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	resolved, err := svc.ResolveInvitation(ctx, invitation.ID, "user-b", models.InvitationAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationAccepted, resolved.Status)

	updated, err := svc.GetBoard(ctx, board.ID, "user-b")
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"user-a", "user-b"}, updated.Members)
}

func TestResolveInvitation_InviteeOnly(t *testing.T) {
	svc, _ := newTestBoardService(t)
	ctx := context.Background()

	board, err := svc.CreateBoard(ctx, "user-a", &CreateBoardRequest{Name: "Sprint 1"})
	require.NoError(t, err)
	invitation, err := svc.Invite(ctx, board.ID, "user-a", "user-b", "")
	require.NoError(t, err)

	_, err = svc.ResolveInvitation(ctx, invitation.ID, "user-c", models.InvitationAccepted)
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeForbidden, appErr.Code)
}

func TestResolveInvitation_AcceptIsIdempotent(t *testing.T) {
	svc, _ := newTestBoardService(t)
	ctx := context.Background()

	board, err := svc.CreateBoard(ctx, "user-a", &CreateBoardRequest{Name: "Sprint 1"})
	require.NoError(t, err)
	invitation, err := svc.Invite(ctx, board.ID, "user-a", "user-b", "")
	require.NoError(t, err)

	_, err = svc.ResolveInvitation(ctx, invitation.ID, "user-b", models.InvitationAccepted)
	require.NoError(t, err)
	_, err = svc.ResolveInvitation(ctx, invitation.ID, "user-b", models.InvitationAccepted)
	require.NoError(t, err)

	updated, err := svc.GetBoard(ctx, board.ID, "user-b")
	require.NoError(t, err)

	count := 0
	for _, m := range updated.Members {
		if m == "user-b" {
			count++
		}
	}
	assert.Equal(t, 1, count, "accepting twice must not duplicate the member")
}

func TestResolveInvitation_DeclineDoesNotJoin(t *testing.T) {
	svc, _ := newTestBoardService(t)
	ctx := context.Background()

	board, err := svc.CreateBoard(ctx, "user-a", &CreateBoardRequest{Name: "Sprint 1"})
	require.NoError(t, err)
	invitation, err := svc.Invite(ctx, board.ID, "user-a", "user-b", "")
	require.NoError(t, err)

	resolved, err := svc.ResolveInvitation(ctx, invitation.ID, "user-b", models.InvitationDeclined)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationDeclined, resolved.Status)

	_, err = svc.GetBoard(ctx, board.ID, "user-b")
	require.Error(t, err)
}

package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/common/logger"
	"github.com/minitrello/minitrello/internal/user/models"
	"github.com/minitrello/minitrello/internal/user/repository"
)

func newTestUserService(t *testing.T) (*Service, *repository.MemoryRepository) {
	t.Helper()
	log, err := logger.NewLogger(logger.LoggingConfig{Level: "error", Format: "json", OutputPath: "stdout"})
	require.NoError(t, err)

	repo := repository.NewMemoryRepository()
	return NewService(repo, log), repo
}

func seedUser(t *testing.T, repo *repository.MemoryRepository, email, fullname string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Fullname: fullname}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestSearch_CaseInsensitive(t *testing.T) {
	svc, repo := newTestUserService(t)
	seedUser(t, repo, "alice@example.com", "Alice Cooper")
	seedUser(t, repo, "bob@example.com", "Bob")

	users, err := svc.Search(context.Background(), "ALICE")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice@example.com", users[0].Email)
}

func TestSearch_MatchesFullname(t *testing.T) {
	svc, repo := newTestUserService(t)
	seedUser(t, repo, "alice@example.com", "Alice Cooper")

	users, err := svc.Search(context.Background(), "cooper")
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestSearch_CapsAtTen(t *testing.T) {
	svc, repo := newTestUserService(t)
	for i := 0; i < 15; i++ {
		seedUser(t, repo, fmt.Sprintf("dev%02d@example.com", i), "")
	}

	users, err := svc.Search(context.Background(), "dev")
	require.NoError(t, err)
	assert.Len(t, users, 10)
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc, repo := newTestUserService(t)
	seedUser(t, repo, "alice@example.com", "")

	_, err := svc.Search(context.Background(), "")
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidationError, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}

func TestGetByIDs_TruncatesAndSkipsUnknown(t *testing.T) {
	svc, repo := newTestUserService(t)

	ids := make([]string, 0, 35)
	for i := 0; i < 35; i++ {
		u := seedUser(t, repo, fmt.Sprintf("dev%02d@example.com", i), "")
		ids = append(ids, u.ID)
	}

	users, err := svc.GetByIDs(context.Background(), ids)
	require.NoError(t, err)
	assert.Len(t, users, 30)

	users, err = svc.GetByIDs(context.Background(), []string{ids[0], "no-such-id"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, ids[0], users[0].ID)
}

func TestUpdate_SelfOnly(t *testing.T) {
	svc, repo := newTestUserService(t)
	alice := seedUser(t, repo, "alice@example.com", "Alice")
	bob := seedUser(t, repo, "bob@example.com", "Bob")

	name := "Mallory"
	_, err := svc.Update(context.Background(), bob.ID, alice.ID, &UpdateUserRequest{Fullname: &name})
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeForbidden, appErr.Code)

	updated, err := svc.Update(context.Background(), alice.ID, alice.ID, &UpdateUserRequest{Fullname: &name})
	require.NoError(t, err)
	assert.Equal(t, "Mallory", updated.Fullname)
	assert.Equal(t, "alice@example.com", updated.Email, "email is immutable")
}

func TestDisplayName_FallsBackToEmailLocalPart(t *testing.T) {
	withName := &models.User{Email: "alice@example.com", Fullname: "Alice Cooper"}
	assert.Equal(t, "Alice Cooper", withName.DisplayName())

	nameless := &models.User{Email: "alice@example.com"}
	assert.Equal(t, "alice", nameless.DisplayName())
}

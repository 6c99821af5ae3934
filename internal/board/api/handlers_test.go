package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authapi "github.com/minitrello/minitrello/internal/auth/api"
	"github.com/minitrello/minitrello/internal/board/models"
	"github.com/minitrello/minitrello/internal/board/repository"
	"github.com/minitrello/minitrello/internal/board/service"
	"github.com/minitrello/minitrello/internal/common/logger"
	"github.com/minitrello/minitrello/internal/events/bus"
	usermodels "github.com/minitrello/minitrello/internal/user/models"
)

// newTestRouter mounts the board routes behind a middleware that
// injects the user named in the X-Test-User header, standing in for
// the token middleware.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.NewLogger(logger.LoggingConfig{Level: "error", Format: "json", OutputPath: "stdout"})
	require.NoError(t, err)

	svc := service.NewService(repository.NewMemoryRepository(), bus.NewMemoryEventBus(log), log)

	router := gin.New()
	group := router.Group("/api")
	group.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			authapi.SetCurrentUser(c, &usermodels.User{
				ID:    id,
				Email: id + "@example.com",
			})
		}
		c.Next()
	})
	SetupRoutes(group, svc, log)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBoard(t *testing.T, rec *httptest.ResponseRecorder) *models.Board {
	t.Helper()
	var board models.Board
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	return &board
}

func TestCreateBoard_HTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/boards", "user-a", gin.H{"name": "Sprint 1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	board := decodeBoard(t, rec)
	assert.Equal(t, "Sprint 1", board.Name)
	assert.Equal(t, "user-a", board.OwnerID)
	assert.Equal(t, models.StringList{"user-a"}, board.Members)
}

func TestCreateBoard_Unauthenticated(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/boards", "", gin.H{"name": "Sprint 1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateBoard_MissingName(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/boards", "user-a", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBoard_NonMember(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/boards", "user-a", gin.H{"name": "Private"})
	require.Equal(t, http.StatusCreated, rec.Code)
	board := decodeBoard(t, rec)

	rec = doJSON(t, router, http.MethodGet, "/api/boards/"+board.ID, "user-b", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestInvitationFlow_HTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/boards", "user-a", gin.H{"name": "Sprint 1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	board := decodeBoard(t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/boards/"+board.ID+"/invite", "user-a", gin.H{
		"memberId":    "user-b",
		"emailMember": "user-b@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var invitation models.Invitation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invitation))
	assert.Equal(t, models.InvitationPending, invitation.Status)
	assert.Equal(t, "Sprint 1", invitation.BoardName)

	// invitee sees it pending
	rec = doJSON(t, router, http.MethodGet, "/api/boards/invitations", "user-b", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []models.Invitation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	require.Len(t, pending, 1)

	// invitee accepts and gains access
	rec = doJSON(t, router, http.MethodPost, "/api/boards/invitations/handle", "user-b", gin.H{
		"inviteId": invitation.ID,
		"status":   models.InvitationAccepted,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/boards/"+board.ID, "user-b", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBoard(t, rec)
	assert.Equal(t, models.StringList{"user-a", "user-b"}, got.Members)
}

func TestTaskLifecycle_HTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/boards", "user-a", gin.H{"name": "Sprint 1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	board := decodeBoard(t, rec)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/boards/%s/cards", board.ID), "user-a", gin.H{"name": "Todo"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var card models.Card
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/boards/%s/cards", board.ID), "user-a", gin.H{"name": "Doing"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var target models.Card
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &target))

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/boards/%s/cards/%s/tasks", board.ID, card.ID), "user-a", gin.H{"title": "Fix bug"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var task models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, models.DefaultTaskStatus, task.Status)
	assert.Equal(t, models.DefaultTaskPriority, task.Priority)

	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/boards/%s/cards/%s/tasks/%s/move", board.ID, card.ID, task.ID), "user-a",
		gin.H{"targetCardId": target.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var moved models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &moved))
	assert.Equal(t, task.ID, moved.ID)
	assert.Equal(t, target.ID, moved.CardID)

	rec = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/boards/%s/cards/%s/tasks/%s", board.ID, target.ID, task.ID), "user-a", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAssignmentEndpoints_HTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/boards", "user-a", gin.H{"name": "Sprint 1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	board := decodeBoard(t, rec)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/boards/%s/cards", board.ID), "user-a", gin.H{"name": "Todo"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var card models.Card
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/boards/%s/cards/%s/tasks", board.ID, card.ID), "user-a", gin.H{"title": "Fix bug"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var task models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))

	assignPath := fmt.Sprintf("/api/boards/%s/cards/%s/tasks/%s/assign", board.ID, card.ID, task.ID)
	rec = doJSON(t, router, http.MethodPost, assignPath, "user-a", gin.H{"memberId": "user-a"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var pair struct {
		TaskID   string `json:"taskId"`
		MemberID string `json:"memberId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	assert.Equal(t, task.ID, pair.TaskID)
	assert.Equal(t, "user-a", pair.MemberID)

	rec = doJSON(t, router, http.MethodDelete, assignPath+"/user-a", "user-a", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, assignPath, "user-a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

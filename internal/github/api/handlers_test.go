package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authapi "github.com/minitrello/minitrello/internal/auth/api"
	boardrepo "github.com/minitrello/minitrello/internal/board/repository"
	boardservice "github.com/minitrello/minitrello/internal/board/service"
	"github.com/minitrello/minitrello/internal/common/logger"
	"github.com/minitrello/minitrello/internal/events/bus"
	"github.com/minitrello/minitrello/internal/github"
	usermodels "github.com/minitrello/minitrello/internal/user/models"
)

type githubFixture struct {
	router   *gin.Engine
	taskPath string
}

func newGitHubFixture(t *testing.T) *githubFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.NewLogger(logger.LoggingConfig{Level: "error", Format: "json", OutputPath: "stdout"})
	require.NoError(t, err)

	boardSvc := boardservice.NewService(boardrepo.NewMemoryRepository(), bus.NewMemoryEventBus(log), log)
	svc := github.NewService(github.NewClient(), boardSvc, log)

	ctx := context.Background()
	board, err := boardSvc.CreateBoard(ctx, "user-a", &boardservice.CreateBoardRequest{Name: "Sprint 1"})
	require.NoError(t, err)
	card, err := boardSvc.CreateCard(ctx, board.ID, "user-a", &boardservice.CreateCardRequest{Name: "Todo"})
	require.NoError(t, err)
	task, err := boardSvc.CreateTask(ctx, board.ID, card.ID, "user-a", &boardservice.CreateTaskRequest{Title: "Fix bug"})
	require.NoError(t, err)

	router := gin.New()
	group := router.Group("/api")
	group.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			authapi.SetCurrentUser(c, &usermodels.User{ID: id, Email: id + "@example.com"})
		}
		c.Next()
	})
	SetupRoutes(group, svc, log)

	return &githubFixture{
		router:   router,
		taskPath: fmt.Sprintf("/api/github/%s/%s/%s", board.ID, card.ID, task.ID),
	}
}

func (f *githubFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", "user-a")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestAttach_ReturnsStoredAttachment(t *testing.T) {
	f := newGitHubFixture(t)

	rec := f.do(t, http.MethodPost, f.taskPath+"/attach", gin.H{
		"type": "pull_request",
		"data": gin.H{"id": 42, "title": "Fix login crash"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "pull_request", out["type"])
	assert.Equal(t, float64(42), out["id"])
	assert.Equal(t, "Fix login crash", out["title"])
	assert.Equal(t, "user-a", out["attachedBy"])
	assert.NotEmpty(t, out["attachedAt"])
	assert.NotContains(t, out, "taskId", "the response is the attachment, not the task")
}

func TestRemove_ReturnsSuccess(t *testing.T) {
	f := newGitHubFixture(t)

	rec := f.do(t, http.MethodPost, f.taskPath+"/attach", gin.H{
		"type": "commit",
		"data": gin.H{"sha": "abc123def", "message": "fix crash"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, f.taskPath+"/remove", gin.H{"attachmentId": "abc123def"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success": true}`, rec.Body.String())
}

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "token test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var items []map[string]interface{}
		switch {
		case strings.Contains(r.URL.Path, "/pulls"):
			items = []map[string]interface{}{
				{"id": float64(1), "number": float64(10), "title": "Fix crash"},
			}
		case strings.Contains(r.URL.Path, "/commits"):
			items = []map[string]interface{}{
				{"sha": "abc123", "commit": map[string]interface{}{"message": "fix"}},
			}
		case strings.Contains(r.URL.Path, "/issues"):
			// the issues endpoint mixes in pull requests
			items = []map[string]interface{}{
				{"id": float64(2), "title": "PR disguised as issue", "pull_request": map[string]interface{}{}},
			}
			for i := 0; i < 15; i++ {
				items = append(items, map[string]interface{}{
					"id":    float64(100 + i),
					"title": fmt.Sprintf("Issue %d", i),
				})
			}
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(items)
	}))
}

func TestFetchRepoSummary(t *testing.T) {
	srv := newStubServer(t)
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL)
	summary, err := client.FetchRepoSummary(context.Background(), "test-token", "octo", "demo")
	require.NoError(t, err)

	require.Len(t, summary.PullRequests, 1)
	assert.Equal(t, "Fix crash", summary.PullRequests[0]["title"])

	require.Len(t, summary.Commits, 1)
	assert.Equal(t, "abc123", summary.Commits[0]["sha"])

	assert.Len(t, summary.Issues, 10, "issues are capped after dropping pull requests")
	for _, issue := range summary.Issues {
		assert.NotContains(t, issue, "pull_request")
	}
}

func TestFetchRepoSummary_BadToken(t *testing.T) {
	srv := newStubServer(t)
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL)
	_, err := client.FetchRepoSummary(context.Background(), "wrong", "octo", "demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

// Package github fetches repository activity (pull requests, commits,
// issues) from the GitHub REST API on behalf of a linked user.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
)

// fetchLimit caps how many items of each kind a summary returns.
const fetchLimit = 10

// Client talks to the GitHub REST API with a user's access token.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a GitHub API client.
func NewClient() *Client {
	return &Client{
		baseURL:    "https://api.github.com",
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithBaseURL creates a client against a custom API endpoint.
// Used in tests against a stub server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// RepoSummary bundles the recent activity of one repository. Items are
// kept as raw provider objects so attachments store them verbatim.
type RepoSummary struct {
	PullRequests []map[string]interface{} `json:"pullRequests"`
	Commits      []map[string]interface{} `json:"commits"`
	Issues       []map[string]interface{} `json:"issues"`
}

// FetchRepoSummary loads up to 10 open pull requests, recent commits
// and open non-PR issues in parallel.
func (c *Client) FetchRepoSummary(ctx context.Context, token, owner, repo string) (*RepoSummary, error) {
	summary := &RepoSummary{
		PullRequests: []map[string]interface{}{},
		Commits:      []map[string]interface{}{},
		Issues:       []map[string]interface{}{},
	}

	base := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := c.list(gctx, token, base+fmt.Sprintf("/pulls?state=open&per_page=%d", fetchLimit))
		if err != nil {
			return err
		}
		summary.PullRequests = items
		return nil
	})
	g.Go(func() error {
		items, err := c.list(gctx, token, base+fmt.Sprintf("/commits?per_page=%d", fetchLimit))
		if err != nil {
			return err
		}
		summary.Commits = items
		return nil
	})
	g.Go(func() error {
		items, err := c.list(gctx, token, base+fmt.Sprintf("/issues?state=open&per_page=%d", fetchLimit*2))
		if err != nil {
			return err
		}
		// the issues endpoint also returns pull requests; drop them
		issues := make([]map[string]interface{}, 0, fetchLimit)
		for _, item := range items {
			if _, isPR := item["pull_request"]; isPR {
				continue
			}
			issues = append(issues, item)
			if len(issues) == fetchLimit {
				break
			}
		}
		summary.Issues = issues
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

func (c *Client) list(ctx context.Context, token, path string) ([]map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github api returned %d for %s", resp.StatusCode, path)
	}

	var items []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode github response: %w", err)
	}
	return items, nil
}

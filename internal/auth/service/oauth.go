package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/minitrello/minitrello/internal/common/config"
)

// GitHubOAuth drives the GitHub authorization-code flow and hands the
// resulting profile to the auth service.
type GitHubOAuth struct {
	oauth *oauth2.Config
	// apiBaseURL is overridable in tests
	apiBaseURL string
}

// NewGitHubOAuth builds the OAuth configuration from the GitHub app
// credentials. The user:email scope is needed to read private primary
// emails.
func NewGitHubOAuth(cfg config.GitHubConfig) *GitHubOAuth {
	return &GitHubOAuth{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"read:user", "user:email", "repo"},
			Endpoint:     github.Endpoint,
		},
		apiBaseURL: "https://api.github.com",
	}
}

// AuthURL returns the GitHub authorization page URL for the given
// anti-forgery state.
func (g *GitHubOAuth) AuthURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// Exchange trades the authorization code for an access token and
// fetches the authenticated user's profile.
func (g *GitHubOAuth) Exchange(ctx context.Context, code string) (ExternalProfile, string, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return ExternalProfile{}, "", fmt.Errorf("code exchange failed: %w", err)
	}

	client := g.oauth.Client(ctx, token)
	profile, err := g.fetchProfile(ctx, client)
	if err != nil {
		return ExternalProfile{}, "", err
	}
	return profile, token.AccessToken, nil
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// fetchProfile reads /user and, when the profile email is private,
// /user/emails to find the primary address.
func (g *GitHubOAuth) fetchProfile(ctx context.Context, client *http.Client) (ExternalProfile, error) {
	var ghUser githubUser
	if err := g.getJSON(ctx, client, "/user", &ghUser); err != nil {
		return ExternalProfile{}, fmt.Errorf("failed to fetch github profile: %w", err)
	}

	email := ghUser.Email
	if email == "" {
		var emails []githubEmail
		if err := g.getJSON(ctx, client, "/user/emails", &emails); err != nil {
			return ExternalProfile{}, fmt.Errorf("failed to fetch github emails: %w", err)
		}
		for _, e := range emails {
			if e.Primary {
				email = e.Email
				break
			}
		}
		if email == "" && len(emails) > 0 {
			email = emails[0].Email
		}
	}

	fullname := ghUser.Name
	if fullname == "" {
		fullname = ghUser.Login
	}

	return ExternalProfile{
		ProviderID: fmt.Sprintf("%d", ghUser.ID),
		Email:      email,
		Fullname:   fullname,
		AvatarURL:  ghUser.AvatarURL,
	}, nil
}

func (g *GitHubOAuth) getJSON(ctx context.Context, client *http.Client, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiBaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api returned %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Package models defines the user directory data model.
package models

import (
	"strings"
	"time"
)

// User represents an account in the directory. Accounts are created on
// first successful OTP verification or first GitHub login and refreshed
// on repeat logins.
type User struct {
	ID                string    `json:"id" db:"id"`
	Email             string    `json:"email" db:"email"`
	Fullname          string    `json:"fullname" db:"fullname"`
	AvatarURL         string    `json:"avatarUrl" db:"avatar_url"`
	GitHubID          string    `json:"githubId,omitempty" db:"github_id"`
	GitHubAccessToken string    `json:"-" db:"github_access_token"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}

// DisplayName returns the fullname, falling back to the local part of
// the email address when no fullname is set.
func (u *User) DisplayName() string {
	if u.Fullname != "" {
		return u.Fullname
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

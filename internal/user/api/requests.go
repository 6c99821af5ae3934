// Package api provides HTTP handlers for the user directory API.
package api

import (
	"time"

	"github.com/minitrello/minitrello/internal/user/models"
)

// ListUsersRequest is the batch lookup payload.
type ListUsersRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// UpdateUserRequest carries the mutable profile fields.
type UpdateUserRequest struct {
	Fullname  *string `json:"fullname,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// UserResponse is the public profile shape. Fullname falls back to the
// email local part so every profile has a display name.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Fullname  string    `json:"fullname"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func userToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Fullname:  u.DisplayName(),
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func usersToResponse(users []*models.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, userToResponse(u))
	}
	return result
}

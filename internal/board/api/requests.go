// Package api provides HTTP handlers for boards, invitations, cards
// and tasks.
package api

import "time"

// CreateBoardRequest for creating a board
type CreateBoardRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateBoardRequest for updating a board
type UpdateBoardRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// InviteRequest for inviting a user to a board
type InviteRequest struct {
	MemberID    string `json:"memberId" binding:"required"`
	EmailMember string `json:"emailMember"`
}

// HandleInvitationRequest resolves a pending invitation
type HandleInvitationRequest struct {
	InviteID string `json:"inviteId" binding:"required"`
	Status   string `json:"status" binding:"required"`
}

// CreateCardRequest for creating a card
type CreateCardRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateCardRequest for updating a card
type UpdateCardRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateTaskRequest for creating a task
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// UpdateTaskRequest for updating a task. Only these fields are
// mutable; unknown payload keys are ignored.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// AssignMemberRequest adds a member to a task's assignment set
type AssignMemberRequest struct {
	MemberID string `json:"memberId" binding:"required"`
}

// MoveTaskRequest re-parents a task to another card. TargetIndex is
// accepted for wire compatibility but has no stored effect.
type MoveTaskRequest struct {
	TargetCardID string `json:"targetCardId"`
	TargetIndex  *int   `json:"targetIndex,omitempty"`
}

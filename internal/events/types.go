// Package events provides event types and utilities for the Mini Trello event system.
package events

// Event types for boards
const (
	BoardCreated = "board.created"
	BoardUpdated = "board.updated"
	BoardDeleted = "board.deleted"
)

// Event types for invitations
const (
	InvitationSent     = "invitation.sent"
	InvitationResolved = "invitation.resolved"
)

// Event types for cards
const (
	CardCreated = "card.created"
	CardUpdated = "card.updated"
	CardDeleted = "card.deleted"
)

// Event types for tasks
const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskMoved   = "task.moved"
	TaskDeleted = "task.deleted"
)

// SubjectBoard returns the bus subject carrying a board's change feed.
// The websocket relay subscribes to "boards.>" and routes on the board
// id carried in the event payload.
func SubjectBoard(boardID string) string {
	return "boards." + boardID
}

// SubjectBoards is the wildcard pattern matching every board feed.
const SubjectBoards = "boards.>"

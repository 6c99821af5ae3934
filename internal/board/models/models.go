// Package models defines the board, card, task and invitation data
// model. List-valued fields implement sql.Scanner/driver.Valuer so
// they round-trip through JSON text columns.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Invitation status values. An invitation is terminal once accepted or
// declined.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

// Task defaults applied when the caller omits the field.
const (
	DefaultTaskStatus   = "backlog"
	DefaultTaskPriority = "medium"
)

// Board is the top-level collaborative workspace. The owner is set at
// creation and immutable; members always contains the owner.
type Board struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	OwnerID     string     `json:"ownerId" db:"owner_id"`
	Members     StringList `json:"members" db:"members"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// HasMember reports whether the user belongs to the board.
func (b *Board) HasMember(userID string) bool {
	for _, m := range b.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// AddMember appends the user to the member set if not already present.
func (b *Board) AddMember(userID string) {
	if !b.HasMember(userID) {
		b.Members = append(b.Members, userID)
	}
}

// Invitation asks a user to join a board. Board name and owner are
// snapshotted at creation time.
type Invitation struct {
	ID           string    `json:"id" db:"id"`
	BoardID      string    `json:"boardId" db:"board_id"`
	BoardName    string    `json:"boardName" db:"board_name"`
	BoardOwnerID string    `json:"boardOwnerId" db:"board_owner_id"`
	MemberID     string    `json:"memberId" db:"member_id"`
	EmailMember  string    `json:"emailMember" db:"email_member"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Card is a named list within a board. Cards have no ordering field;
// creation time defines display order.
type Card struct {
	ID          string    `json:"id" db:"id"`
	BoardID     string    `json:"boardId" db:"board_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Task is a work item within a card.
type Task struct {
	ID                string         `json:"id" db:"id"`
	BoardID           string         `json:"boardId" db:"board_id"`
	CardID            string         `json:"cardId" db:"card_id"`
	Title             string         `json:"title" db:"title"`
	Description       string         `json:"description" db:"description"`
	Status            string         `json:"status" db:"status"`
	Priority          string         `json:"priority" db:"priority"`
	Deadline          *time.Time     `json:"deadline,omitempty" db:"deadline"`
	OwnerID           string         `json:"ownerId" db:"owner_id"`
	AssignedMembers   StringList     `json:"assignedMembers" db:"assigned_members"`
	GitHubAttachments AttachmentList `json:"githubAttachments" db:"github_attachments"`
	CreatedAt         time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time      `json:"updatedAt" db:"updated_at"`
}

// IsAssigned reports whether the user is in the assignment set.
func (t *Task) IsAssigned(userID string) bool {
	for _, m := range t.AssignedMembers {
		if m == userID {
			return true
		}
	}
	return false
}

// GitHubAttachment is an external reference embedded in a task. The
// provider-supplied fields are kept verbatim and merged flat into the
// JSON representation next to the attachment metadata.
type GitHubAttachment struct {
	Type       string
	AttachedAt time.Time
	AttachedBy string
	Fields     map[string]interface{}
}

// MarshalJSON flattens the provider fields and the attachment metadata
// into a single object.
func (a GitHubAttachment) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(a.Fields)+3)
	for k, v := range a.Fields {
		out[k] = v
	}
	out["type"] = a.Type
	out["attachedAt"] = a.AttachedAt.Format(time.RFC3339Nano)
	out["attachedBy"] = a.AttachedBy
	return json.Marshal(out)
}

// UnmarshalJSON splits the metadata keys back out and keeps everything
// else as provider fields.
func (a *GitHubAttachment) UnmarshalJSON(data []byte) error {
	raw := map[string]interface{}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["type"].(string); ok {
		a.Type = v
	}
	delete(raw, "type")
	if v, ok := raw["attachedAt"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			a.AttachedAt = ts
		}
	}
	delete(raw, "attachedAt")
	if v, ok := raw["attachedBy"].(string); ok {
		a.AttachedBy = v
	}
	delete(raw, "attachedBy")
	a.Fields = raw
	return nil
}

// Matches reports whether the reference equals the attachment's id or
// its commit sha. Both predicates are checked independently because a
// PR id and a commit sha are different identifier spaces.
func (a *GitHubAttachment) Matches(ref string) bool {
	return fieldEquals(a.Fields["id"], ref) || fieldEquals(a.Fields["sha"], ref)
}

func fieldEquals(field interface{}, ref string) bool {
	switch v := field.(type) {
	case string:
		return v == ref
	case float64:
		// JSON numbers decode as float64; GitHub ids are integers
		return fmt.Sprintf("%.0f", v) == ref
	case json.Number:
		return v.String() == ref
	default:
		return false
	}
}

// StringList is a set of ids stored as a JSON array column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// AttachmentList is an ordered list of attachments stored as a JSON
// array column.
type AttachmentList []GitHubAttachment

// Value implements driver.Valuer.
func (l AttachmentList) Value() (driver.Value, error) {
	if l == nil {
		l = AttachmentList{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

// Scan implements sql.Scanner.
func (l *AttachmentList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}

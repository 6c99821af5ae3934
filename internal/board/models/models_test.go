package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitHubAttachment_MarshalFlattens(t *testing.T) {
	attachedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	a := GitHubAttachment{
		Type:       "pull_request",
		AttachedAt: attachedAt,
		AttachedBy: "user-a",
		Fields: map[string]interface{}{
			"id":    float64(42),
			"title": "Fix login crash",
		},
	}

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, "pull_request", out["type"])
	assert.Equal(t, "user-a", out["attachedBy"])
	assert.Equal(t, float64(42), out["id"])
	assert.Equal(t, "Fix login crash", out["title"])
	assert.Equal(t, attachedAt.Format(time.RFC3339Nano), out["attachedAt"])
}

func TestGitHubAttachment_RoundTrip(t *testing.T) {
	attachedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	in := GitHubAttachment{
		Type:       "commit",
		AttachedAt: attachedAt,
		AttachedBy: "user-a",
		Fields: map[string]interface{}{
			"sha":     "abc123",
			"message": "fix crash",
		},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out GitHubAttachment
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, "commit", out.Type)
	assert.Equal(t, "user-a", out.AttachedBy)
	assert.True(t, out.AttachedAt.Equal(attachedAt))
	assert.Equal(t, "abc123", out.Fields["sha"])
	assert.Equal(t, "fix crash", out.Fields["message"])
	assert.NotContains(t, out.Fields, "type")
	assert.NotContains(t, out.Fields, "attachedAt")
}

func TestGitHubAttachment_Matches(t *testing.T) {
	pr := GitHubAttachment{Fields: map[string]interface{}{"id": float64(123456789)}}
	assert.True(t, pr.Matches("123456789"))
	assert.False(t, pr.Matches("123"))

	issue := GitHubAttachment{Fields: map[string]interface{}{"id": "node-id-1"}}
	assert.True(t, issue.Matches("node-id-1"))

	commit := GitHubAttachment{Fields: map[string]interface{}{"sha": "abc123def"}}
	assert.True(t, commit.Matches("abc123def"))
	assert.False(t, commit.Matches("abc"))

	empty := GitHubAttachment{Fields: map[string]interface{}{}}
	assert.False(t, empty.Matches("anything"))
}

func TestBoard_AddMemberIdempotent(t *testing.T) {
	b := &Board{OwnerID: "user-a", Members: StringList{"user-a"}}

	b.AddMember("user-b")
	b.AddMember("user-b")

	assert.Equal(t, StringList{"user-a", "user-b"}, b.Members)
	assert.True(t, b.HasMember("user-a"))
	assert.False(t, b.HasMember("user-c"))
}

func TestStringList_ScanValue(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringList{"a", "b"}, l)

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, v.(string))

	var empty StringList
	require.NoError(t, empty.Scan(nil))
	assert.Empty(t, empty)
}

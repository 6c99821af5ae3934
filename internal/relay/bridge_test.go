package relay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minitrello/minitrello/internal/common/logger"
	"github.com/minitrello/minitrello/internal/events"
	"github.com/minitrello/minitrello/internal/events/bus"
	ws "github.com/minitrello/minitrello/pkg/websocket"
)

func TestBridge_BoardEventBecomesRefresh(t *testing.T) {
	log, err := logger.NewLogger(logger.LoggingConfig{Level: "error", Format: "json", OutputPath: "stdout"})
	require.NoError(t, err)

	hub := NewHub(ws.NewDispatcher(), log)
	eventBus := bus.NewMemoryEventBus(log)

	bridge := NewBridge(hub, log)
	require.NoError(t, bridge.Start(eventBus))
	defer bridge.Stop()

	c := newTestClient("c1", 8)
	hub.Join(c, "board-1")

	event := bus.NewEvent(events.CardCreated, "board-service", map[string]interface{}{
		"boardId": "board-1",
		"cardId":  "card-1",
	})
	require.NoError(t, eventBus.Publish(context.Background(), events.SubjectBoard("board-1"), event))

	msg := receive(t, c)
	assert.Equal(t, ws.ActionBoardRefresh, msg.Action)

	var payload struct {
		BoardID string `json:"boardId"`
	}
	require.NoError(t, msg.ParsePayload(&payload))
	assert.Equal(t, "board-1", payload.BoardID)
}

func TestBridge_InvitationCarriesPayload(t *testing.T) {
	log, err := logger.NewLogger(logger.LoggingConfig{Level: "error", Format: "json", OutputPath: "stdout"})
	require.NoError(t, err)

	hub := NewHub(ws.NewDispatcher(), log)
	eventBus := bus.NewMemoryEventBus(log)

	bridge := NewBridge(hub, log)
	require.NoError(t, bridge.Start(eventBus))
	defer bridge.Stop()

	c := newTestClient("c1", 8)
	hub.Join(c, "board-1")

	event := bus.NewEvent(events.InvitationSent, "board-service", map[string]interface{}{
		"boardId":  "board-1",
		"inviteId": "invite-1",
		"memberId": "user-b",
	})
	require.NoError(t, eventBus.Publish(context.Background(), events.SubjectBoard("board-1"), event))

	msg := receive(t, c)
	assert.Equal(t, ws.ActionInvitationSent, msg.Action)

	var payload struct {
		InviteID string `json:"inviteId"`
		MemberID string `json:"memberId"`
	}
	require.NoError(t, msg.ParsePayload(&payload))
	assert.Equal(t, "invite-1", payload.InviteID)
	assert.Equal(t, "user-b", payload.MemberID)
}

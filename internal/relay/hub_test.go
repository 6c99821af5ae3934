package relay

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minitrello/minitrello/internal/common/logger"
	ws "github.com/minitrello/minitrello/pkg/websocket"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	log, err := logger.NewLogger(logger.LoggingConfig{Level: "error", Format: "json", OutputPath: "stdout"})
	require.NoError(t, err)
	return NewHub(ws.NewDispatcher(), log)
}

func newTestClient(id string, buffer int) *Client {
	return &Client{
		ID:    id,
		send:  make(chan []byte, buffer),
		rooms: make(map[string]bool),
	}
}

func receive(t *testing.T, c *Client) *ws.Message {
	t.Helper()
	select {
	case data := <-c.send:
		var msg ws.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHub_JoinLeaveRoomSize(t *testing.T) {
	hub := newTestHub(t)
	c1 := newTestClient("c1", 8)
	c2 := newTestClient("c2", 8)

	hub.Join(c1, "board-1")
	hub.Join(c2, "board-1")
	assert.Equal(t, 2, hub.RoomSize("board-1"))

	// joining twice does not double-count
	hub.Join(c1, "board-1")
	assert.Equal(t, 2, hub.RoomSize("board-1"))

	hub.Leave(c1, "board-1")
	assert.Equal(t, 1, hub.RoomSize("board-1"))
	assert.False(t, c1.rooms["board-1"])

	hub.Leave(c2, "board-1")
	assert.Equal(t, 0, hub.RoomSize("board-1"))
}

func TestHub_BroadcastExcludesSender(t *testing.T) {
	hub := newTestHub(t)
	sender := newTestClient("sender", 8)
	peer := newTestClient("peer", 8)
	outsider := newTestClient("outsider", 8)

	hub.Join(sender, "board-1")
	hub.Join(peer, "board-1")
	hub.Join(outsider, "board-2")

	msg, err := ws.NewNotification(ws.ActionBoardRefresh, map[string]interface{}{"boardId": "board-1"})
	require.NoError(t, err)
	hub.BroadcastToBoard("board-1", msg, sender)

	got := receive(t, peer)
	assert.Equal(t, ws.ActionBoardRefresh, got.Action)

	assert.Empty(t, sender.send, "originating connection must not receive its own broadcast")
	assert.Empty(t, outsider.send, "other rooms must not receive the broadcast")
}

func TestHub_BroadcastSkipsSlowClient(t *testing.T) {
	hub := newTestHub(t)
	slow := newTestClient("slow", 1)
	hub.Join(slow, "board-1")

	msg, err := ws.NewNotification(ws.ActionBoardRefresh, map[string]interface{}{"boardId": "board-1"})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		// second broadcast overflows the buffer and must not block
		hub.BroadcastToBoard("board-1", msg, nil)
		hub.BroadcastToBoard("board-1", msg, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
}

func TestHub_UnregisterCleansRooms(t *testing.T) {
	hub := newTestHub(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c := newTestClient("c1", 8)
	hub.Register(c)
	hub.Join(c, "board-1")
	require.Equal(t, 1, hub.RoomSize("board-1"))

	hub.Unregister(c)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0 && hub.RoomSize("board-1") == 0
	}, time.Second, 10*time.Millisecond)

	_, open := <-c.send
	assert.False(t, open, "send channel is closed on unregister")
}

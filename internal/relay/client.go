package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/minitrello/minitrello/internal/common/logger"
	ws "github.com/minitrello/minitrello/pkg/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024 // 64KB
)

// Client represents a single websocket connection.
type Client struct {
	ID     string
	UserID string
	conn   *websocket.Conn
	hub    *Hub
	send   chan []byte
	rooms  map[string]bool // board ids this client has joined
	logger *logger.Logger
}

// NewClient creates a new websocket client
func NewClient(id, userID string, conn *websocket.Conn, hub *Hub, log *logger.Logger) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		conn:   conn,
		hub:    hub,
		send:   make(chan []byte, 256),
		rooms:  make(map[string]bool),
		logger: log.WithFields(zap.String("client_id", id)),
	}
}

// ReadPump pumps messages from the websocket connection to the hub
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error", zap.Error(err))
			}
			break
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Error("failed to parse message", zap.Error(err))
			c.sendError("", "", ws.ErrorCodeBadRequest, "Invalid message format", nil)
			continue
		}

		c.handleMessage(ctx, &msg)
	}
}

// boardPayload is the payload of every board-scoped client action.
type boardPayload struct {
	BoardID string `json:"boardId"`
}

// handleMessage processes an incoming message. Room actions are
// handled here because they need the connection; everything else goes
// through the dispatcher.
func (c *Client) handleMessage(ctx context.Context, msg *ws.Message) {
	c.logger.Debug("received message",
		zap.String("action", msg.Action),
		zap.String("id", msg.ID))

	switch msg.Action {
	case ws.ActionBoardJoin:
		c.handleJoin(msg)
		return
	case ws.ActionBoardLeave:
		c.handleLeave(msg)
		return
	case ws.ActionBoardUpdated:
		c.handleBoardUpdated(msg)
		return
	}

	response, err := c.hub.dispatcher.Dispatch(ctx, msg)
	if err != nil {
		c.logger.Error("handler error",
			zap.String("action", msg.Action),
			zap.Error(err))
		c.sendError(msg.ID, msg.Action, ws.ErrorCodeInternalError, err.Error(), nil)
		return
	}
	if response != nil {
		c.sendMessage(response)
	}
}

// handleJoin subscribes the connection to a board room
func (c *Client) handleJoin(msg *ws.Message) {
	boardID, ok := c.parseBoardID(msg)
	if !ok {
		return
	}

	c.hub.Join(c, boardID)

	resp, _ := ws.NewResponse(msg.ID, msg.Action, map[string]interface{}{
		"success": true,
		"boardId": boardID,
	})
	c.sendMessage(resp)
}

// handleLeave unsubscribes the connection from a board room
func (c *Client) handleLeave(msg *ws.Message) {
	boardID, ok := c.parseBoardID(msg)
	if !ok {
		return
	}

	c.hub.Leave(c, boardID)

	resp, _ := ws.NewResponse(msg.ID, msg.Action, map[string]interface{}{
		"success": true,
		"boardId": boardID,
	})
	c.sendMessage(resp)
}

// handleBoardUpdated relays a client's change signal to the rest of
// the room as a refresh cue. The sender is excluded.
func (c *Client) handleBoardUpdated(msg *ws.Message) {
	boardID, ok := c.parseBoardID(msg)
	if !ok {
		return
	}

	notification, err := ws.NewNotification(ws.ActionBoardRefresh, map[string]interface{}{
		"boardId": boardID,
	})
	if err != nil {
		c.logger.Error("failed to create refresh notification", zap.Error(err))
		return
	}
	c.hub.BroadcastToBoard(boardID, notification, c)
}

func (c *Client) parseBoardID(msg *ws.Message) (string, bool) {
	var req boardPayload
	if err := msg.ParsePayload(&req); err != nil {
		c.sendError(msg.ID, msg.Action, ws.ErrorCodeBadRequest, "Invalid payload: "+err.Error(), nil)
		return "", false
	}
	if req.BoardID == "" {
		c.sendError(msg.ID, msg.Action, ws.ErrorCodeValidation, "boardId is required", nil)
		return "", false
	}
	return req.BoardID, true
}

// sendMessage sends a message to the client
func (c *Client) sendMessage(msg *ws.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal message", zap.Error(err))
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn("client send buffer full")
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(id, action, code, message string, details map[string]interface{}) {
	msg, err := ws.NewError(id, action, code, message, details)
	if err != nil {
		c.logger.Error("failed to create error message", zap.Error(err))
		return
	}
	c.sendMessage(msg)
}

// WritePump pumps messages from the hub to the websocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Batch additional queued messages
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

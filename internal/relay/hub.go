// Package relay broadcasts board change notifications to websocket
// clients. Each board id names a room; delivery is best effort with no
// persistence or replay for late joiners.
package relay

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/minitrello/minitrello/internal/common/logger"
	ws "github.com/minitrello/minitrello/pkg/websocket"
)

// Hub manages all websocket connections and their board rooms.
type Hub struct {
	clients map[*Client]bool

	// rooms maps a board id to the clients subscribed to it
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	dispatcher *ws.Dispatcher

	mu     sync.RWMutex
	logger *logger.Logger
}

// NewHub creates a new relay hub
func NewHub(dispatcher *ws.Dispatcher, log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		dispatcher: dispatcher,
		logger:     log.WithFields(zap.String("component", "relay_hub")),
	}
}

// Run starts the hub's main processing loop
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("relay hub started")
	defer h.logger.Info("relay hub stopped")

	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", zap.String("client_id", client.ID))

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// closeAllClients closes all client connections
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.rooms = make(map[string]map[*Client]bool)
}

// removeClient removes a client from the hub and every room
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)

		for boardID := range client.rooms {
			if clients, ok := h.rooms[boardID]; ok {
				delete(clients, client)
				if len(clients) == 0 {
					delete(h.rooms, boardID)
				}
			}
		}
	}
	h.logger.Debug("client unregistered", zap.String("client_id", client.ID))
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Join subscribes a client to a board's room
func (h *Hub) Join(client *Client, boardID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[boardID]; !ok {
		h.rooms[boardID] = make(map[*Client]bool)
	}
	h.rooms[boardID][client] = true
	client.rooms[boardID] = true

	h.logger.Debug("client joined board room",
		zap.String("client_id", client.ID),
		zap.String("board_id", boardID))
}

// Leave unsubscribes a client from a board's room
func (h *Hub) Leave(client *Client, boardID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(client.rooms, boardID)
	if clients, ok := h.rooms[boardID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, boardID)
		}
	}
}

// BroadcastToBoard fans a message out to a board's room. A non-nil
// exclude skips the originating connection. Slow clients are dropped
// rather than blocked on.
func (h *Hub) BroadcastToBoard(boardID string, msg *ws.Message, exclude *Client) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[boardID] {
		if client == exclude {
			continue
		}
		select {
		case client.send <- data:
		default:
			// buffer full, the write pump will clean up
		}
	}
}

// RoomSize returns the number of clients in a board's room
func (h *Hub) RoomSize(boardID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[boardID])
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dispatcher returns the message dispatcher
func (h *Hub) Dispatcher() *ws.Dispatcher {
	return h.dispatcher
}

package relay

import (
	"context"

	"go.uber.org/zap"

	"github.com/minitrello/minitrello/internal/common/logger"
	"github.com/minitrello/minitrello/internal/events"
	"github.com/minitrello/minitrello/internal/events/bus"
	ws "github.com/minitrello/minitrello/pkg/websocket"
)

// Bridge forwards board events from the event bus into websocket
// rooms, so REST handlers notify connected clients without touching
// the hub directly.
type Bridge struct {
	hub    *Hub
	logger *logger.Logger
	sub    bus.Subscription
}

// NewBridge creates a bridge between the event bus and the hub.
func NewBridge(hub *Hub, log *logger.Logger) *Bridge {
	return &Bridge{
		hub:    hub,
		logger: log.WithFields(zap.String("component", "relay_bridge")),
	}
}

// Start subscribes to every board feed.
func (b *Bridge) Start(eventBus bus.EventBus) error {
	sub, err := eventBus.Subscribe(events.SubjectBoards, b.handleEvent)
	if err != nil {
		return err
	}
	b.sub = sub
	return nil
}

// Stop tears the subscription down.
func (b *Bridge) Stop() {
	if b.sub != nil {
		_ = b.sub.Unsubscribe()
	}
}

// handleEvent turns a bus event into a room notification. New
// invitations carry their own payload; every other board event becomes
// a refresh cue.
func (b *Bridge) handleEvent(ctx context.Context, event *bus.Event) error {
	boardID, _ := event.Data["boardId"].(string)
	if boardID == "" {
		return nil
	}

	var notification *ws.Message
	var err error
	switch event.Type {
	case events.InvitationSent:
		notification, err = ws.NewNotification(ws.ActionInvitationSent, map[string]interface{}{
			"inviteId": event.Data["inviteId"],
			"memberId": event.Data["memberId"],
		})
	default:
		notification, err = ws.NewNotification(ws.ActionBoardRefresh, map[string]interface{}{
			"boardId": boardID,
		})
	}
	if err != nil {
		b.logger.Error("failed to build notification", zap.Error(err))
		return nil
	}

	b.hub.BroadcastToBoard(boardID, notification, nil)
	return nil
}

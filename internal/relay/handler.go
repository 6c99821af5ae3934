package relay

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/minitrello/minitrello/internal/common/logger"
	usermodels "github.com/minitrello/minitrello/internal/user/models"
	ws "github.com/minitrello/minitrello/pkg/websocket"
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TokenResolver turns a session token into a live user record. The
// auth service implements it.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*usermodels.User, error)
}

// Handler upgrades HTTP connections to websocket and wires them into
// the hub.
type Handler struct {
	hub      *Hub
	resolver TokenResolver
	logger   *logger.Logger
}

// NewHandler creates a new websocket handler
func NewHandler(hub *Hub, resolver TokenResolver, log *logger.Logger) *Handler {
	return &Handler{
		hub:      hub,
		resolver: resolver,
		logger:   log.WithFields(zap.String("component", "relay_handler")),
	}
}

// HandleConnection upgrades the request and runs the read/write pumps.
// The refresh channel carries no board data, so connections without a
// valid token are still admitted as anonymous listeners.
func (h *Handler) HandleConnection(c *gin.Context) {
	userID := ""
	if token := c.Query("token"); token != "" && h.resolver != nil {
		if user, err := h.resolver.Resolve(c.Request.Context(), token); err == nil {
			userID = user.ID
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	clientID := uuid.New().String()
	h.logger.Debug("websocket connection established",
		zap.String("client_id", clientID),
		zap.String("user_id", userID),
		zap.String("remote_addr", c.Request.RemoteAddr),
	)

	client := NewClient(clientID, userID, conn, h.hub, h.logger)
	h.hub.Register(client)

	go client.WritePump()
	client.ReadPump(c.Request.Context())
}

// RegisterHealthHandler registers the health check handler
func RegisterHealthHandler(d *ws.Dispatcher) {
	d.RegisterFunc(ws.ActionHealthCheck, func(ctx context.Context, msg *ws.Message) (*ws.Message, error) {
		return ws.NewResponse(msg.ID, msg.Action, map[string]interface{}{
			"status":  "ok",
			"service": "minitrello",
		})
	})
}

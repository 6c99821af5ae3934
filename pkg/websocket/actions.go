package websocket

// Action constants for WebSocket messages
const (
	// Health
	ActionHealthCheck = "health.check"

	// Client -> server actions
	ActionBoardJoin    = "board.join"
	ActionBoardLeave   = "board.leave"
	ActionBoardUpdated = "board.updated"

	// Server -> client notifications
	ActionBoardRefresh   = "board.refresh"
	ActionInvitationSent = "invitation.sent"
)

// Error codes
const (
	ErrorCodeBadRequest    = "BAD_REQUEST"
	ErrorCodeNotFound      = "NOT_FOUND"
	ErrorCodeInternalError = "INTERNAL_ERROR"
	ErrorCodeUnauthorized  = "UNAUTHORIZED"
	ErrorCodeForbidden     = "FORBIDDEN"
	ErrorCodeValidation    = "VALIDATION_ERROR"
	ErrorCodeUnknownAction = "UNKNOWN_ACTION"
)

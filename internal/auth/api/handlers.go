package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minitrello/minitrello/internal/auth/service"
	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/common/httpmw"
	"github.com/minitrello/minitrello/internal/common/logger"
)

// stateCookie holds the OAuth anti-forgery state between the redirect
// and the callback.
const stateCookie = "oauth_state"

// Handler contains HTTP handlers for the auth API
type Handler struct {
	service     *service.Service
	oauth       *service.GitHubOAuth
	frontendURL string
	logger      *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(svc *service.Service, oauth *service.GitHubOAuth, frontendURL string, log *logger.Logger) *Handler {
	return &Handler{
		service:     svc,
		oauth:       oauth,
		frontendURL: frontendURL,
		logger:      log,
	}
}

// SendOTP issues a verification code
// POST /api/auth/send-otp
func (h *Handler) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.BadRequest(err.Error())
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	if err := h.service.IssueChallenge(c.Request.Context(), req.Email); err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "verification code sent"})
}

// VerifyOTP redeems a verification code for a session token
// POST /api/auth/verify-otp
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.BadRequest(err.Error())
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	session, err := h.service.VerifyChallenge(c.Request.Context(), req.Email, req.VerificationCode, req.Fullname)
	if err != nil {
		httpmw.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken": session.AccessToken,
		"user":        session.User,
	})
}

// GitHubLogin starts the OAuth flow
// GET /api/auth/github
func (h *Handler) GitHubLogin(c *gin.Context) {
	state := uuid.New().String()
	c.SetCookie(stateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthURL(state))
}

// GitHubCallback completes the OAuth flow. Success redirects to the
// frontend with the token; every failure redirects to the login page.
// GET /api/auth/github/callback
func (h *Handler) GitHubCallback(c *gin.Context) {
	failureURL := h.frontendURL + "/login?error=auth_failed"

	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		h.logger.Warn("oauth state mismatch")
		c.Redirect(http.StatusTemporaryRedirect, failureURL)
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusTemporaryRedirect, failureURL)
		return
	}

	profile, accessToken, err := h.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("oauth exchange failed", zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, failureURL)
		return
	}

	session, err := h.service.CompleteExternalLogin(c.Request.Context(), profile, accessToken)
	if err != nil {
		h.logger.Error("oauth login failed", zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, failureURL)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/?token="+session.AccessToken)
}

// Me returns the authenticated user's profile
// GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		appErr := errors.NotFound("user", "me")
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}
	c.JSON(http.StatusOK, user)
}

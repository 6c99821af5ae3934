package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/minitrello/minitrello/internal/auth/service"
	"github.com/minitrello/minitrello/internal/common/errors"
	usermodels "github.com/minitrello/minitrello/internal/user/models"
)

// contextUserKey is where the middleware stores the resolved user.
const contextUserKey = "currentUser"

// AuthRequired resolves the bearer token to a live user record and
// aborts with 401 when that fails.
func AuthRequired(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			appErr := errors.Unauthorized("missing bearer token")
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
			return
		}

		user, err := svc.Resolve(c.Request.Context(), token)
		if err != nil {
			appErr := errors.Unauthorized("invalid or expired token")
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
			return
		}

		SetCurrentUser(c, user)
		c.Next()
	}
}

// SetCurrentUser stores the resolved user on the request context.
func SetCurrentUser(c *gin.Context, user *usermodels.User) {
	c.Set(contextUserKey, user)
}

// CurrentUser returns the user resolved by AuthRequired.
func CurrentUser(c *gin.Context) (*usermodels.User, bool) {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*usermodels.User)
	return user, ok
}

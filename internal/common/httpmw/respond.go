package httpmw

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/common/logger"
)

// WriteError maps an error to its HTTP response. Application errors
// carry their own status; anything else becomes a 500 with the detail
// kept server-side.
func WriteError(c *gin.Context, log *logger.Logger, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.InternalError("internal server error", err)
	}

	if appErr.HTTPStatus >= 500 {
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(appErr.HTTPStatus, appErr)
}

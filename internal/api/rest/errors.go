package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bonesdao/onboarding/internal/api/shared/errors"
	"github.com/bonesdao/onboarding/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, errors.NewBadRequestError(message, details...))
}

// respondError maps err onto the API envelope. Server-side failures are logged, never echoed.
func respondError(c *gin.Context, err error) {
	status, apiErr := errors.FromError(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorCtx(c.Request.Context(), err,
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()))
	}
	c.JSON(status, apiErr)
}

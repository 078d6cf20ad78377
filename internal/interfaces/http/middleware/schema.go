package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "vininfo.backend/internal/domain/errors"
	"vininfo.backend/internal/interfaces/http/response"
	"vininfo.backend/pkg/logger"
)

// SchemaMiddleware makes sure the tables exist before a handler touches them.
// ensure is expected to be cheap once it has succeeded.
func SchemaMiddleware(ensure func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ensure(c.Request.Context()); err != nil {
			logger.Error(c.Request.Context(), "Schema not ready", zap.Error(err))
			response.Error(c, domainerrors.InternalError(err))
			c.Abort()
			return
		}
		c.Next()
	}
}

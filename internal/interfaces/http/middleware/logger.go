package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"vininfo.backend/pkg/logger"
)

// LoggerMiddleware writes one access-log line per request.
// The query string is left out: unsubscribe links carry tokens.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		var extra []zap.Field
		if userID, ok := GetUserID(c); ok {
			extra = append(extra, zap.String("user_id", userID.String()))
		}
		if route := c.FullPath(); route != "" && route != path {
			extra = append(extra, zap.String("route", route))
		}
		logger.LogRequest(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), time.Since(start), c.ClientIP(), extra...)
	}
}

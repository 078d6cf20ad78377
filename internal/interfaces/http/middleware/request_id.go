package middleware

import (
	"context"
	"regexp"

	"github.com/gin-gonic/gin"
	"vininfo.backend/pkg/logger"
	"vininfo.backend/pkg/utils"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// Upstream ids end up in log lines, so only short opaque tokens are trusted.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestIDMiddleware tags the request with an id, reusing a well formed X-Request-ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !requestIDPattern.MatchString(id) {
			id = utils.GenerateUUIDv7().String()
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

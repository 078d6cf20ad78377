package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"vininfo.backend/internal/interfaces/http/response"
	"vininfo.backend/pkg/jwt"
	"vininfo.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// SessionCookie carries the session token
	SessionCookie = "token"
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
)

// SessionVerifier validates session tokens
type SessionVerifier interface {
	VerifySessionToken(token string) (uuid.UUID, error)
}

// SessionAuthMiddleware requires a valid session cookie
func SessionAuthMiddleware(tokens SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			response.Unauthorized(c, "Unauthorized")
			return
		}

		userID, err := tokens.VerifySessionToken(token)
		if err != nil {
			logger.Debug(c.Request.Context(), "Session rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			response.Unauthorized(c, "Invalid token")
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// CronAuthMiddleware checks the cron bearer secret. An empty secret leaves the route open.
func CronAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		if !bearerMatches(c, secret) {
			response.Unauthorized(c, "Unauthorized")
			return
		}
		c.Next()
	}
}

// AdminAuthMiddleware checks the admin bearer secret. Unlike cron, an empty secret closes the route.
func AdminAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			logger.Error(c.Request.Context(), "Admin secret is not configured")
			response.ErrorWithError(c, http.StatusInternalServerError, "CONFIG_ERROR", "ADMIN_SECRET or CRON_SECRET not configured")
			c.Abort()
			return
		}
		if !bearerMatches(c, secret) {
			response.Unauthorized(c, "Unauthorized")
			return
		}
		c.Next()
	}
}

func bearerMatches(c *gin.Context, secret string) bool {
	header := c.GetHeader(AuthorizationHeader)
	if !strings.HasPrefix(header, BearerPrefix) {
		return false
	}
	provided := strings.TrimPrefix(header, BearerPrefix)
	return subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) == 1
}

var _ SessionVerifier = (*jwt.TokenService)(nil)

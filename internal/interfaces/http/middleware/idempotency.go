package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"vininfo.backend/pkg/logger"
	"vininfo.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	processingMarker = "processing"
)

var (
	redisReady = func() bool { return redis.GetClient() != nil }
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

type storedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// IdempotencyMiddleware replays the stored response of a repeated POST carrying the same
// Idempotency-Key, so a double submit cannot create a second vehicle or start a second broadcast.
// Without Redis the request is processed normally.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || !redisReady() {
			c.Next()
			return
		}

		scope := "anonymous"
		if userID, ok := GetUserID(c); ok {
			scope = userID.String()
		}
		storageKey := fmt.Sprintf("idempotency:%s:%s:%s", scope, c.FullPath(), key)
		ctx := c.Request.Context()

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil && val == processingMarker:
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "IDEMPOTENCY_CONFLICT",
				"message": "Request already in progress",
				"error":   "Request already in progress",
			})
			return
		case err == nil:
			var stored storedResponse
			if jsonErr := json.Unmarshal([]byte(val), &stored); jsonErr != nil || stored.Status == 0 {
				logger.Warn(ctx, "Discarding unreadable idempotency record", zap.String("key", storageKey))
				_ = redisDel(ctx, storageKey)
				c.Next()
				return
			}
			c.Header("X-Idempotency-Hit", "true")
			c.Data(stored.Status, "application/json; charset=utf-8", []byte(stored.Body))
			c.Abort()
			return
		case !redis.IsNil(err):
			logger.Warn(ctx, "Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, processingMarker, LockDuration)
		if err != nil {
			logger.Warn(ctx, "Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "IDEMPOTENCY_CONFLICT",
				"message": "Request already in progress",
				"error":   "Request already in progress",
			})
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			// failures may be retried with the same key
			_ = redisDel(ctx, storageKey)
			return
		}
		record, _ := json.Marshal(storedResponse{Status: status, Body: w.body.String()})
		if err := redisSet(ctx, storageKey, string(record), RetentionDuration); err != nil {
			logger.Warn(ctx, "Failed to store idempotent response", zap.Error(err))
		}
	}
}

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"vininfo.backend/internal/interfaces/http/response"
)

// Pinger reports whether a backing store is reachable
type Pinger func(ctx context.Context) error

// HealthHandler answers liveness checks
type HealthHandler struct {
	database Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(database Pinger) *HealthHandler {
	return &HealthHandler{database: database}
}

// Health GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	if h.database != nil {
		if err := h.database(c.Request.Context()); err != nil {
			response.Success(c, http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
			return
		}
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "vininfo.backend/internal/domain/errors"
	"vininfo.backend/internal/infrastructure/registry"
	"vininfo.backend/internal/interfaces/http/response"
	"vininfo.backend/pkg/logger"
)

type registryService interface {
	Configured() bool
	Lookup(ctx context.Context, q registry.Query) (json.RawMessage, error)
}

// RegistryHandler proxies vehicle lookups to the upstream registry
type RegistryHandler struct {
	registry registryService
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(client registryService) *RegistryHandler {
	return &RegistryHandler{registry: client}
}

// LookupVehicle GET /api/vehicle?vin|tp|orv
func (h *RegistryHandler) LookupVehicle(c *gin.Context) {
	ctx := c.Request.Context()
	if !h.registry.Configured() {
		logger.Error(ctx, "Registry API key is not configured")
		response.ErrorWithError(c, http.StatusInternalServerError, domainerrors.CodeConfigError, "Server configuration error")
		return
	}

	query, err := registry.NewQuery(c.Query("vin"), c.Query("tp"), c.Query("orv"))
	if err != nil {
		response.ErrorWithError(c, http.StatusBadRequest, domainerrors.CodeInvalidInput, "Missing required parameter: vin, tp, or orv")
		return
	}

	data, err := h.registry.Lookup(ctx, query)
	if err != nil {
		var upstream *registry.UpstreamError
		if errors.As(err, &upstream) {
			response.ErrorWithError(c, upstream.Status, "UPSTREAM_ERROR", upstream.Error())
			return
		}
		logger.Error(ctx, "Registry lookup failed", zap.String("param", query.Param), zap.Error(err))
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"vininfo.backend/internal/domain/entities"
	domainerrors "vininfo.backend/internal/domain/errors"
	"vininfo.backend/internal/interfaces/http/middleware"
	"vininfo.backend/internal/interfaces/http/response"
)

type preferenceService interface {
	Get(ctx context.Context, userID uuid.UUID) (*entities.Preferences, error)
	Update(ctx context.Context, userID uuid.UUID, patch entities.PreferencesPatch) (*entities.Preferences, error)
}

// PreferenceHandler reads and changes email preferences
type PreferenceHandler struct {
	preferenceUsecase preferenceService
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(preferenceUsecase preferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferenceUsecase: preferenceUsecase}
}

// GetPreferences GET /api/client/preferences
func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	prefs, err := h.preferenceUsecase.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"preferences": prefs})
}

// UpdatePreferences PATCH /api/client/preferences
func (h *PreferenceHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var patch entities.PreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid request body"))
		return
	}

	prefs, err := h.preferenceUsecase.Update(c.Request.Context(), userID, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"preferences": prefs})
}

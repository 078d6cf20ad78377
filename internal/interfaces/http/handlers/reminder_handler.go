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

type reminderService interface {
	List(ctx context.Context, userID uuid.UUID, rawVehicleID string) ([]*entities.Reminder, error)
	Create(ctx context.Context, userID uuid.UUID, input *entities.CreateReminderInput) (*entities.Reminder, error)
	Update(ctx context.Context, userID uuid.UUID, input *entities.UpdateReminderInput) (*entities.Reminder, error)
	Delete(ctx context.Context, userID uuid.UUID, rawID string) error
}

// ReminderHandler serves deadline reminders
type ReminderHandler struct {
	reminderUsecase reminderService
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(reminderUsecase reminderService) *ReminderHandler {
	return &ReminderHandler{reminderUsecase: reminderUsecase}
}

// ListReminders GET /api/client/reminders?vehicleId=
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	reminders, err := h.reminderUsecase.List(c.Request.Context(), userID, c.Query("vehicleId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reminders": reminders})
}

// CreateReminder POST /api/client/reminders
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var input entities.CreateReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid request body"))
		return
	}

	reminder, err := h.reminderUsecase.Create(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"reminder": reminder})
}

// UpdateReminder PATCH /api/client/reminders
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var input entities.UpdateReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid request body"))
		return
	}

	reminder, err := h.reminderUsecase.Update(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reminder": reminder})
}

// DeleteReminder DELETE /api/client/reminders?id=
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	if err := h.reminderUsecase.Delete(c.Request.Context(), userID, c.Query("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true})
}

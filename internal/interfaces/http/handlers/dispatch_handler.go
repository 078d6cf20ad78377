package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"vininfo.backend/internal/domain/entities"
	domainerrors "vininfo.backend/internal/domain/errors"
	"vininfo.backend/internal/interfaces/http/response"
	"vininfo.backend/internal/usecases"
)

type dispatchService interface {
	Dispatch(ctx context.Context, trigger string) (*entities.DispatchResult, error)
}

type broadcastService interface {
	Broadcast(ctx context.Context, input *entities.MarketingInput) (*entities.BroadcastResult, error)
}

// DispatchHandler exposes the operator triggered email runs
type DispatchHandler struct {
	dispatcher dispatchService
	marketing  broadcastService
}

// NewDispatchHandler creates a new dispatch handler
func NewDispatchHandler(dispatcher dispatchService, marketing broadcastService) *DispatchHandler {
	return &DispatchHandler{dispatcher: dispatcher, marketing: marketing}
}

// SendReminders runs one reminder dispatch pass
// GET /api/cron/send-reminders
func (h *DispatchHandler) SendReminders(c *gin.Context) {
	result, err := h.dispatcher.Dispatch(c.Request.Context(), usecases.TriggerCron)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// SendMarketing broadcasts a campaign
// POST /api/admin/send-marketing
func (h *DispatchHandler) SendMarketing(c *gin.Context) {
	var input entities.MarketingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Missing required fields: subject, heading, content").
			WithDetail("example", usecases.MarketingExample))
		return
	}

	result, err := h.marketing.Broadcast(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

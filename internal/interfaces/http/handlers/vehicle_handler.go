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

type vehicleService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*entities.Vehicle, error)
	Save(ctx context.Context, userID uuid.UUID, input *entities.SaveVehicleInput) (*entities.Vehicle, error)
	Rename(ctx context.Context, userID uuid.UUID, input *entities.RenameVehicleInput) (*entities.Vehicle, error)
	Delete(ctx context.Context, userID uuid.UUID, rawID string) error
}

// VehicleHandler serves the saved vehicles of the client zone
type VehicleHandler struct {
	vehicleUsecase vehicleService
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicleUsecase vehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleUsecase: vehicleUsecase}
}

// ListVehicles GET /api/client/vehicles
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	vehicles, err := h.vehicleUsecase.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"vehicles": vehicles})
}

// SaveVehicle POST /api/client/vehicles
func (h *VehicleHandler) SaveVehicle(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var input entities.SaveVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid request body"))
		return
	}

	vehicle, err := h.vehicleUsecase.Save(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"vehicle": vehicle})
}

// RenameVehicle PATCH /api/client/vehicles
func (h *VehicleHandler) RenameVehicle(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var input entities.RenameVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid request body"))
		return
	}

	vehicle, err := h.vehicleUsecase.Rename(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"vehicle": vehicle})
}

// DeleteVehicle DELETE /api/client/vehicles?id=
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	if err := h.vehicleUsecase.Delete(c.Request.Context(), userID, c.Query("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true})
}

package usecases

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"vininfo.backend/internal/domain/entities"
	domainerrors "vininfo.backend/internal/domain/errors"
	"vininfo.backend/internal/domain/repositories"
	"vininfo.backend/pkg/logger"
	"vininfo.backend/pkg/utils"
)

// VehicleUsecase manages the vehicles a user saved from registry lookups
type VehicleUsecase struct {
	vehicleRepo repositories.VehicleRepository
	uow         repositories.UnitOfWork
	now         func() time.Time
}

// NewVehicleUsecase creates a new vehicle usecase
func NewVehicleUsecase(vehicleRepo repositories.VehicleRepository, uow repositories.UnitOfWork) *VehicleUsecase {
	return &VehicleUsecase{
		vehicleRepo: vehicleRepo,
		uow:         uow,
		now:         time.Now,
	}
}

// List returns the user's vehicles, newest first
func (u *VehicleUsecase) List(ctx context.Context, userID uuid.UUID) ([]*entities.Vehicle, error) {
	vehicles, err := u.vehicleRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return vehicles, nil
}

// Save stores a looked up vehicle. The same VIN can be saved once per user.
func (u *VehicleUsecase) Save(ctx context.Context, userID uuid.UUID, input *entities.SaveVehicleInput) (*entities.Vehicle, error) {
	if !input.HasIdentifier() {
		return nil, domainerrors.BadRequest("VIN, TP, or ORV is required")
	}

	vehicle := &entities.Vehicle{
		ID:        utils.GenerateUUIDv7(),
		UserID:    userID,
		VIN:       entities.NormalizeIdentifier(input.VIN),
		TP:        entities.NormalizeIdentifier(input.TP),
		ORV:       entities.NormalizeIdentifier(input.ORV),
		Title:     entities.NormalizeVehicleTitle(input.Title),
		Brand:     blankToNull(input.Brand),
		Model:     blankToNull(input.Model),
		Snapshot:  input.Snapshot,
		CreatedAt: u.now().UTC(),
	}

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if vehicle.VIN.Valid {
			exists, err := u.vehicleRepo.ExistsByVIN(txCtx, userID, vehicle.VIN.String)
			if err != nil {
				return err
			}
			if exists {
				return domainerrors.ErrAlreadyExists
			}
		}
		return u.vehicleRepo.Create(txCtx, vehicle)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("Vehicle already exists")
		}
		logger.Error(ctx, "Failed to save vehicle", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}
	return vehicle, nil
}

// Rename sets or clears the title of an owned vehicle
func (u *VehicleUsecase) Rename(ctx context.Context, userID uuid.UUID, input *entities.RenameVehicleInput) (*entities.Vehicle, error) {
	if input.ID == "" {
		return nil, domainerrors.BadRequest("Vehicle id is required")
	}
	if input.Title.Valid && utf8.RuneCountInString(input.Title.String) > entities.VehicleTitleMaxLength {
		return nil, domainerrors.BadRequest("Title is too long")
	}
	id, ok := utils.ParseUUID(input.ID)
	if !ok {
		return nil, domainerrors.NotFound("Vehicle not found")
	}

	vehicle, err := u.vehicleRepo.UpdateTitle(ctx, id, userID, entities.NormalizeVehicleTitle(input.Title))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Vehicle not found")
		}
		return nil, domainerrors.InternalError(err)
	}
	return vehicle, nil
}

// Delete removes an owned vehicle. Unknown ids succeed.
func (u *VehicleUsecase) Delete(ctx context.Context, userID uuid.UUID, rawID string) error {
	if rawID == "" {
		return domainerrors.BadRequest("Vehicle id is required")
	}
	id, ok := utils.ParseUUID(rawID)
	if !ok {
		return nil
	}
	if err := u.vehicleRepo.Delete(ctx, id, userID); err != nil {
		return domainerrors.InternalError(err)
	}
	return nil
}

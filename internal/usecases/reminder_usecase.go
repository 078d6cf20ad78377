package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"vininfo.backend/internal/domain/entities"
	domainerrors "vininfo.backend/internal/domain/errors"
	"vininfo.backend/internal/domain/repositories"
	"vininfo.backend/pkg/logger"
	"vininfo.backend/pkg/utils"
)

// ReminderUsecase manages dated reminders and their email schedule
type ReminderUsecase struct {
	reminderRepo repositories.ReminderRepository
	vehicleRepo  repositories.VehicleRepository
	uow          repositories.UnitOfWork
	now          func() time.Time
}

// NewReminderUsecase creates a new reminder usecase
func NewReminderUsecase(
	reminderRepo repositories.ReminderRepository,
	vehicleRepo repositories.VehicleRepository,
	uow repositories.UnitOfWork,
) *ReminderUsecase {
	return &ReminderUsecase{
		reminderRepo: reminderRepo,
		vehicleRepo:  vehicleRepo,
		uow:          uow,
		now:          time.Now,
	}
}

// List returns the user's reminders by due date, optionally for one vehicle
func (u *ReminderUsecase) List(ctx context.Context, userID uuid.UUID, rawVehicleID string) ([]*entities.Reminder, error) {
	var vehicleID *uuid.UUID
	if rawVehicleID != "" {
		id, ok := utils.ParseUUID(rawVehicleID)
		if !ok {
			return []*entities.Reminder{}, nil
		}
		vehicleID = &id
	}
	reminders, err := u.reminderRepo.ListByUser(ctx, userID, vehicleID)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return reminders, nil
}

// Create adds a reminder to an owned vehicle and schedules its email
func (u *ReminderUsecase) Create(ctx context.Context, userID uuid.UUID, input *entities.CreateReminderInput) (*entities.Reminder, error) {
	if input.VehicleID == "" || input.Type == "" || input.DueDate == "" {
		return nil, domainerrors.BadRequest("Vehicle, type, and due date are required")
	}
	reminderType, ok := entities.ParseReminderType(input.Type)
	if !ok {
		return nil, domainerrors.BadRequest("Invalid reminder type")
	}
	if entities.NoteTooLong(input.Note) {
		return nil, domainerrors.BadRequest("Note is too long")
	}
	dueDate, err := parseRequiredDate(input.DueDate)
	if err != nil {
		return nil, err
	}
	explicitSendAt, err := parseOptionalDate(input.EmailSendAt)
	if err != nil {
		return nil, err
	}
	vehicleID, ok := utils.ParseUUID(input.VehicleID)
	if !ok {
		return nil, domainerrors.NotFound("Vehicle not found")
	}

	emailEnabled := !input.EmailEnabled.Valid || input.EmailEnabled.Bool
	reminder := &entities.Reminder{
		ID:           utils.GenerateUUIDv7(),
		UserID:       userID,
		VehicleID:    vehicleID,
		Type:         reminderType,
		DueDate:      dueDate,
		Note:         blankToNull(input.Note),
		CreatedAt:    u.now().UTC(),
		EmailEnabled: emailEnabled,
		EmailSendAt:  entities.DefaultEmailSendAt(dueDate, emailEnabled, explicitSendAt),
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := u.vehicleRepo.GetByID(txCtx, vehicleID, userID); err != nil {
			return err
		}
		return u.reminderRepo.Create(txCtx, reminder)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Vehicle not found")
		}
		logger.Error(ctx, "Failed to create reminder", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}
	return reminder, nil
}

// Update applies a partial change. Completing a reminder switches its email off,
// and switching email on without a send date schedules it for the day before due.
func (u *ReminderUsecase) Update(ctx context.Context, userID uuid.UUID, input *entities.UpdateReminderInput) (*entities.Reminder, error) {
	if input.ID == "" {
		return nil, domainerrors.BadRequest("Reminder id is required")
	}
	if entities.NoteTooLong(input.Note) {
		return nil, domainerrors.BadRequest("Note is too long")
	}
	if input.IsEmpty() {
		return nil, domainerrors.BadRequest("No fields to update")
	}

	update := entities.ReminderUpdate{
		IsDone:       input.IsDone,
		EmailEnabled: input.EmailEnabled,
	}
	if input.DueDate.Valid && input.DueDate.String != "" {
		due, err := parseRequiredDate(input.DueDate.String)
		if err != nil {
			return nil, err
		}
		update.DueDate = &due
	}
	if input.Note.Valid {
		update.SetNote = true
		update.Note = blankToNull(input.Note)
	}
	if input.EmailSendAt.Valid {
		sendAt, err := parseOptionalDate(input.EmailSendAt)
		if err != nil {
			return nil, err
		}
		update.SetSendAt = true
		update.EmailSendAt = sendAt
	}
	if update.IsDone.Valid && update.IsDone.Bool {
		update.EmailEnabled = null.BoolFrom(false)
	}

	id, ok := utils.ParseUUID(input.ID)
	if !ok {
		return nil, domainerrors.NotFound("Reminder not found")
	}

	var updated *entities.Reminder
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if update.EmailEnabled.Valid && update.EmailEnabled.Bool && !update.SetSendAt {
			current, err := u.reminderRepo.GetByID(txCtx, id, userID)
			if err != nil {
				return err
			}
			if current.EmailSendAt == nil {
				due := current.DueDate
				if update.DueDate != nil {
					due = *update.DueDate
				}
				update.SetSendAt = true
				update.EmailSendAt = entities.DefaultEmailSendAt(due, true, nil)
			}
		}
		var err error
		updated, err = u.reminderRepo.Update(txCtx, id, userID, update)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrNotFound):
			return nil, domainerrors.NotFound("Reminder not found")
		case errors.Is(err, domainerrors.ErrNoFields):
			return nil, domainerrors.BadRequest("No fields to update")
		}
		logger.Error(ctx, "Failed to update reminder", zap.String("reminder_id", id.String()), zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}
	return updated, nil
}

// Delete removes an owned reminder. Unknown ids succeed.
func (u *ReminderUsecase) Delete(ctx context.Context, userID uuid.UUID, rawID string) error {
	if rawID == "" {
		return domainerrors.BadRequest("Reminder id is required")
	}
	id, ok := utils.ParseUUID(rawID)
	if !ok {
		return nil
	}
	if err := u.reminderRepo.Delete(ctx, id, userID); err != nil {
		return domainerrors.InternalError(err)
	}
	return nil
}

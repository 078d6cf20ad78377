package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"vininfo.backend/internal/domain/entities"
	domainerrors "vininfo.backend/internal/domain/errors"
	"vininfo.backend/internal/infrastructure/models"
)

// ReminderRepository implements reminder operations and the dispatcher queries
type ReminderRepository struct {
	db *gorm.DB
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Create inserts a reminder
func (r *ReminderRepository) Create(ctx context.Context, reminder *entities.Reminder) error {
	m := &models.Reminder{
		ID:           reminder.ID,
		UserID:       reminder.UserID,
		VehicleID:    reminder.VehicleID,
		Type:         string(reminder.Type),
		DueDate:      reminder.DueDate,
		Note:         reminder.Note.Ptr(),
		IsDone:       reminder.IsDone,
		CreatedAt:    reminder.CreatedAt,
		EmailEnabled: reminder.EmailEnabled,
		EmailSendAt:  reminder.EmailSendAt,
		EmailSentAt:  reminder.EmailSentAt.Ptr(),
	}
	return GetDB(ctx, r.db).Select("*").Create(m).Error
}

// GetByID gets an owned reminder
func (r *ReminderRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*entities.Reminder, error) {
	var m models.Reminder
	if err := GetDB(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toReminderEntity(&m), nil
}

// ListByUser lists the owner's reminders by due date, optionally for one vehicle
func (r *ReminderRepository) ListByUser(ctx context.Context, userID uuid.UUID, vehicleID *uuid.UUID) ([]*entities.Reminder, error) {
	query := GetDB(ctx, r.db).Where("user_id = ?", userID)
	if vehicleID != nil {
		query = query.Where("vehicle_id = ?", *vehicleID)
	}

	var rows []models.Reminder
	if err := query.Order("due_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	reminders := make([]*entities.Reminder, 0, len(rows))
	for i := range rows {
		reminders = append(reminders, toReminderEntity(&rows[i]))
	}
	return reminders, nil
}

// Update applies a validated partial update to an owned reminder
func (r *ReminderRepository) Update(ctx context.Context, id, userID uuid.UUID, update entities.ReminderUpdate) (*entities.Reminder, error) {
	updates := map[string]interface{}{}
	if update.DueDate != nil {
		updates["due_date"] = *update.DueDate
	}
	if update.SetNote {
		updates["note"] = update.Note.Ptr()
	}
	if update.IsDone.Valid {
		updates["is_done"] = update.IsDone.Bool
	}
	if update.EmailEnabled.Valid {
		updates["email_enabled"] = update.EmailEnabled.Bool
	}
	if update.SetSendAt {
		if update.EmailSendAt == nil {
			updates["email_send_at"] = gorm.Expr("NULL")
		} else {
			updates["email_send_at"] = *update.EmailSendAt
		}
	}
	if len(updates) == 0 {
		return nil, domainerrors.ErrNoFields
	}

	result := GetDB(ctx, r.db).Model(&models.Reminder{}).Where("id = ? AND user_id = ?", id, userID).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domainerrors.ErrNotFound
	}
	return r.GetByID(ctx, id, userID)
}

// Delete removes an owned reminder; a missing row is not an error.
func (r *ReminderRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Reminder{}).Error
}

// ListDueForEmail selects reminders whose send date has come for verified,
// opted-in owners. Inner joins drop reminders whose vehicle or user is gone.
func (r *ReminderRepository) ListDueForEmail(ctx context.Context, today entities.Date) ([]*entities.ReminderDelivery, error) {
	var rows []models.ReminderDelivery
	err := GetDB(ctx, r.db).
		Table("reminders AS r").
		Select(`r.id AS reminder_id, r.user_id AS user_id, r.type AS type, r.due_date AS due_date, r.note AS note,
			u.email AS email, v.title AS vehicle_title, v.brand AS vehicle_brand, v.model AS vehicle_model`).
		Joins("JOIN users u ON u.id = r.user_id").
		Joins("JOIN vehicles v ON v.id = r.vehicle_id").
		Where("r.email_enabled = ?", true).
		Where("r.email_send_at IS NOT NULL AND r.email_send_at <= ?", today).
		Where("r.email_sent_at IS NULL").
		Where("u.email_verified_at IS NOT NULL").
		Where("u.notifications_enabled = ?", true).
		Order("r.due_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*entities.ReminderDelivery, 0, len(rows))
	for _, row := range rows {
		out = append(out, &entities.ReminderDelivery{
			ReminderID:   row.ReminderID,
			UserID:       row.UserID,
			Type:         entities.ReminderType(row.Type),
			DueDate:      row.DueDate,
			Note:         null.StringFromPtr(row.Note),
			Email:        row.Email,
			VehicleTitle: null.StringFromPtr(row.VehicleTitle),
			VehicleBrand: null.StringFromPtr(row.VehicleBrand),
			VehicleModel: null.StringFromPtr(row.VehicleModel),
		})
	}
	return out, nil
}

// ClaimSent marks the reminder sent unless another run already did.
func (r *ReminderRepository) ClaimSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := GetDB(ctx, r.db).Model(&models.Reminder{}).
		Where("id = ? AND email_sent_at IS NULL", id).
		Update("email_sent_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ReleaseClaim undoes ClaimSent after a failed send.
func (r *ReminderRepository) ReleaseClaim(ctx context.Context, id uuid.UUID, at time.Time) error {
	return GetDB(ctx, r.db).Model(&models.Reminder{}).
		Where("id = ? AND email_sent_at = ?", id, at).
		Update("email_sent_at", gorm.Expr("NULL")).Error
}

func toReminderEntity(m *models.Reminder) *entities.Reminder {
	return &entities.Reminder{
		ID:           m.ID,
		UserID:       m.UserID,
		VehicleID:    m.VehicleID,
		Type:         entities.ReminderType(m.Type),
		DueDate:      m.DueDate,
		Note:         null.StringFromPtr(m.Note),
		IsDone:       m.IsDone,
		CreatedAt:    m.CreatedAt,
		EmailEnabled: m.EmailEnabled,
		EmailSendAt:  m.EmailSendAt,
		EmailSentAt:  null.TimeFromPtr(m.EmailSentAt),
	}
}

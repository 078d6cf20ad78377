package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"vininfo.backend/internal/domain/entities"
)

// ReminderRepository defines reminder operations
type ReminderRepository interface {
	Create(ctx context.Context, reminder *entities.Reminder) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*entities.Reminder, error)
	ListByUser(ctx context.Context, userID uuid.UUID, vehicleID *uuid.UUID) ([]*entities.Reminder, error)
	Update(ctx context.Context, id, userID uuid.UUID, update entities.ReminderUpdate) (*entities.Reminder, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// ReminderDeliveryRepository backs the email dispatcher
type ReminderDeliveryRepository interface {
	// ListDueForEmail returns reminders eligible for an email on the given day, earliest due first.
	ListDueForEmail(ctx context.Context, today entities.Date) ([]*entities.ReminderDelivery, error)
	// ClaimSent stamps email_sent_at only if it is still empty; false means another run owns it.
	ClaimSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	// ReleaseClaim clears a claim made at the given instant.
	ReleaseClaim(ctx context.Context, id uuid.UUID, at time.Time) error
}

package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"vininfo.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdatePreferences(ctx context.Context, id uuid.UUID, patch entities.PreferencesPatch) (*entities.Preferences, error)
	ListMarketingRecipients(ctx context.Context) ([]*entities.User, error)
}

// EmailVerificationRepository defines email verification operations
type EmailVerificationRepository interface {
	// SetCode replaces the pending code together with its expiry and send time.
	SetCode(ctx context.Context, userID uuid.UUID, code string, expiresAt, sentAt time.Time) error
	// MarkVerified stamps the user verified and clears the pending code fields.
	MarkVerified(ctx context.Context, userID uuid.UUID, at time.Time) error
}

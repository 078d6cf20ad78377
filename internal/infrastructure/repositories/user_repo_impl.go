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

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	m := &models.User{
		ID:                         user.ID,
		Email:                      user.Email,
		PasswordHash:               user.PasswordHash,
		CreatedAt:                  user.CreatedAt,
		TermsAcceptedAt:            user.TermsAcceptedAt.Ptr(),
		EmailVerifiedAt:            user.EmailVerifiedAt.Ptr(),
		EmailVerificationCode:      user.EmailVerificationCode.Ptr(),
		EmailVerificationExpiresAt: user.EmailVerificationExpiresAt.Ptr(),
		EmailVerificationSentAt:    user.EmailVerificationSentAt.Ptr(),
		NotificationsEnabled:       user.NotificationsEnabled,
		MarketingEnabled:           user.MarketingEnabled,
	}

	// Select("*") keeps explicit false booleans from falling back to column defaults.
	if err := GetDB(ctx, r.db).Select("*").Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toUserEntity(&m), nil
}

// GetByEmail gets a user by normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toUserEntity(&m), nil
}

// UpdatePreferences applies the supplied switches and returns the stored state
func (r *UserRepository) UpdatePreferences(ctx context.Context, id uuid.UUID, patch entities.PreferencesPatch) (*entities.Preferences, error) {
	updates := map[string]interface{}{}
	if patch.NotificationsEnabled.Valid {
		updates["notifications_enabled"] = patch.NotificationsEnabled.Bool
	}
	if patch.MarketingEnabled.Valid {
		updates["marketing_enabled"] = patch.MarketingEnabled.Bool
	}
	if len(updates) == 0 {
		return nil, domainerrors.ErrNoFields
	}

	db := GetDB(ctx, r.db)
	result := db.Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domainerrors.ErrNotFound
	}

	var m models.User
	if err := db.Select("notifications_enabled", "marketing_enabled").Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.Preferences{
		NotificationsEnabled: m.NotificationsEnabled,
		MarketingEnabled:     m.MarketingEnabled,
	}, nil
}

// ListMarketingRecipients lists users who accept marketing email, oldest first
func (r *UserRepository) ListMarketingRecipients(ctx context.Context) ([]*entities.User, error) {
	var rows []models.User
	if err := GetDB(ctx, r.db).
		Select("id", "email", "created_at").
		Where("marketing_enabled = ?", true).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	users := make([]*entities.User, 0, len(rows))
	for i := range rows {
		users = append(users, toUserEntity(&rows[i]))
	}
	return users, nil
}

func toUserEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:                         m.ID,
		Email:                      m.Email,
		PasswordHash:               m.PasswordHash,
		CreatedAt:                  m.CreatedAt,
		TermsAcceptedAt:            null.TimeFromPtr(m.TermsAcceptedAt),
		EmailVerifiedAt:            null.TimeFromPtr(m.EmailVerifiedAt),
		EmailVerificationCode:      null.StringFromPtr(m.EmailVerificationCode),
		EmailVerificationExpiresAt: null.TimeFromPtr(m.EmailVerificationExpiresAt),
		EmailVerificationSentAt:    null.TimeFromPtr(m.EmailVerificationSentAt),
		NotificationsEnabled:       m.NotificationsEnabled,
		MarketingEnabled:           m.MarketingEnabled,
	}
}

// EmailVerificationRepository stores pending verification codes on the user row
type EmailVerificationRepository struct {
	db *gorm.DB
}

// NewEmailVerificationRepository creates a new email verification repository
func NewEmailVerificationRepository(db *gorm.DB) *EmailVerificationRepository {
	return &EmailVerificationRepository{db: db}
}

// SetCode replaces the pending code
func (r *EmailVerificationRepository) SetCode(ctx context.Context, userID uuid.UUID, code string, expiresAt, sentAt time.Time) error {
	result := GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"email_verification_code":       code,
		"email_verification_expires_at": expiresAt,
		"email_verification_sent_at":    sentAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// MarkVerified stamps the verification time and clears the code fields together
func (r *EmailVerificationRepository) MarkVerified(ctx context.Context, userID uuid.UUID, at time.Time) error {
	result := GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"email_verified_at":             at,
		"email_verification_code":       gorm.Expr("NULL"),
		"email_verification_expires_at": gorm.Expr("NULL"),
		"email_verification_sent_at":    gorm.Expr("NULL"),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

package usecases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"vininfo.backend/internal/domain/entities"
	domainerrors "vininfo.backend/internal/domain/errors"
	"vininfo.backend/internal/domain/repositories"
)

// PreferenceUsecase reads and changes the email switches of a user
type PreferenceUsecase struct {
	userRepo repositories.UserRepository
}

// NewPreferenceUsecase creates a new preference usecase
func NewPreferenceUsecase(userRepo repositories.UserRepository) *PreferenceUsecase {
	return &PreferenceUsecase{userRepo: userRepo}
}

// Get returns the current preferences
func (u *PreferenceUsecase) Get(ctx context.Context, userID uuid.UUID) (*entities.Preferences, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("User not found")
		}
		return nil, domainerrors.InternalError(err)
	}
	return &entities.Preferences{
		NotificationsEnabled: user.NotificationsEnabled,
		MarketingEnabled:     user.MarketingEnabled,
	}, nil
}

// Update changes the supplied switches
func (u *PreferenceUsecase) Update(ctx context.Context, userID uuid.UUID, patch entities.PreferencesPatch) (*entities.Preferences, error) {
	if patch.IsEmpty() {
		return nil, domainerrors.BadRequest("No fields to update")
	}
	prefs, err := u.userRepo.UpdatePreferences(ctx, userID, patch)
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrNotFound):
			return nil, domainerrors.NotFound("User not found")
		case errors.Is(err, domainerrors.ErrNoFields):
			return nil, domainerrors.BadRequest("No fields to update")
		}
		return nil, domainerrors.InternalError(err)
	}
	return prefs, nil
}

package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"vininfo.backend/internal/domain/entities"
	domainerrors "vininfo.backend/internal/domain/errors"
	"vininfo.backend/internal/domain/repositories"
	"vininfo.backend/pkg/jwt"
	"vininfo.backend/pkg/logger"
	"vininfo.backend/pkg/utils"
)

// ErrMissingToken is returned when the unsubscribe link carries no token
var ErrMissingToken = errors.New("missing unsubscribe token")

// UnsubscribeUsecase switches off an email preference from a signed link
type UnsubscribeUsecase struct {
	userRepo repositories.UserRepository
	tokens   *jwt.TokenService
}

// NewUnsubscribeUsecase creates a new unsubscribe usecase
func NewUnsubscribeUsecase(userRepo repositories.UserRepository, tokens *jwt.TokenService) *UnsubscribeUsecase {
	return &UnsubscribeUsecase{userRepo: userRepo, tokens: tokens}
}

// Unsubscribe verifies the token and disables the preference it names.
// Repeating it, or naming a user that no longer exists, is a no-op.
// Errors: ErrMissingToken, jwt.ErrUnauthorized, jwt.ErrInvalidPreference or an internal error.
func (u *UnsubscribeUsecase) Unsubscribe(ctx context.Context, token string) (jwt.Preference, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	claims, err := u.tokens.VerifyUnsubscribeToken(token)
	if err != nil {
		return "", err
	}

	userID, ok := utils.ParseUUID(claims.UserID)
	if !ok {
		return claims.Type, nil
	}

	var patch entities.PreferencesPatch
	switch claims.Type {
	case jwt.PreferenceNotifications:
		patch.NotificationsEnabled = null.BoolFrom(false)
	case jwt.PreferenceMarketing:
		patch.MarketingEnabled = null.BoolFrom(false)
	default:
		return "", jwt.ErrInvalidPreference
	}

	if _, err := u.userRepo.UpdatePreferences(ctx, userID, patch); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return claims.Type, nil
		}
		logger.Error(ctx, "Failed to unsubscribe", zap.String("user_id", userID.String()), zap.Error(err))
		return "", domainerrors.InternalError(err)
	}
	logger.Info(ctx, "User unsubscribed", zap.String("user_id", userID.String()), zap.String("type", string(claims.Type)))
	return claims.Type, nil
}

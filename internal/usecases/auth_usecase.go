package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"vininfo.backend/internal/domain/entities"
	domainerrors "vininfo.backend/internal/domain/errors"
	"vininfo.backend/internal/domain/repositories"
	"vininfo.backend/internal/infrastructure/email"
	"vininfo.backend/internal/infrastructure/metrics"
	"vininfo.backend/pkg/crypto"
	"vininfo.backend/pkg/jwt"
	"vininfo.backend/pkg/logger"
	"vininfo.backend/pkg/utils"
)

var (
	hashPassword             = crypto.HashPassword
	checkPassword            = crypto.CheckPassword
	generateVerificationCode = crypto.GenerateVerificationCode
)

// AuthUsecase handles registration, login and email verification
type AuthUsecase struct {
	userRepo       repositories.UserRepository
	emailVerifRepo repositories.EmailVerificationRepository
	tokens         *jwt.TokenService
	mailer         EmailSender
	renderer       *email.Renderer
	limiter        AttemptLimiter
	verifyLimiter  AttemptLimiter
	metrics        *metrics.Metrics
	exposeCodes    bool
	now            func() time.Time
}

// NewAuthUsecase creates a new auth usecase. exposeCodes echoes verification codes
// in responses and is only meant for local development.
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	emailVerifRepo repositories.EmailVerificationRepository,
	tokens *jwt.TokenService,
	mailer EmailSender,
	renderer *email.Renderer,
	limiter AttemptLimiter,
	m *metrics.Metrics,
	exposeCodes bool,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:       userRepo,
		emailVerifRepo: emailVerifRepo,
		tokens:         tokens,
		mailer:         mailer,
		renderer:       renderer,
		limiter:        limiter,
		metrics:        m,
		exposeCodes:    exposeCodes,
		now:            time.Now,
	}
}

// WithVerifyLimiter throttles wrong verification codes per user
func (u *AuthUsecase) WithVerifyLimiter(l AttemptLimiter) *AuthUsecase {
	u.verifyLimiter = l
	return u
}

// WithClock replaces the time source
func (u *AuthUsecase) WithClock(now func() time.Time) *AuthUsecase {
	u.now = now
	return u
}

// Register creates an account, issues a session and emails a verification code
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.RegisterResult, error) {
	address := entities.NormalizeEmail(input.Email)
	if address == "" || input.Password == "" {
		return nil, domainerrors.BadRequest("Email and password are required")
	}
	if utf8.RuneCountInString(input.Password) < entities.PasswordMinLength {
		return nil, domainerrors.BadRequest("Password must be at least 8 characters")
	}
	if !input.TermsAccepted {
		return nil, domainerrors.BadRequest("You must accept the terms and conditions")
	}

	_, err := u.userRepo.GetByEmail(ctx, address)
	if err == nil {
		return nil, domainerrors.Conflict("User already exists")
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.InternalError(err)
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	code, err := generateVerificationCode()
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	now := u.now().UTC()
	user := &entities.User{
		ID:                         utils.GenerateUUIDv7(),
		Email:                      address,
		PasswordHash:               passwordHash,
		CreatedAt:                  now,
		TermsAcceptedAt:            null.TimeFrom(now),
		EmailVerificationCode:      null.StringFrom(code),
		EmailVerificationExpiresAt: null.TimeFrom(now.Add(entities.VerificationCodeTTL)),
		EmailVerificationSentAt:    null.TimeFrom(now),
		NotificationsEnabled:       true,
		// Marketing is opt-out: only an explicit false disables it.
		MarketingEnabled: !input.MarketingEnabled.Valid || input.MarketingEnabled.Bool,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("User already exists")
		}
		return nil, domainerrors.InternalError(err)
	}

	token, err := u.tokens.IssueSessionToken(user.ID)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	u.sendVerification(ctx, user, code)

	result := &entities.RegisterResult{User: user, SessionToken: token}
	if u.exposeCodes {
		result.VerificationCode = code
	}
	return result, nil
}

// Login checks the credentials and issues a session token
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResult, error) {
	address := entities.NormalizeEmail(input.Email)
	if address == "" || input.Password == "" {
		return nil, domainerrors.BadRequest("Email and password are required")
	}

	if u.limiter != nil {
		blocked, wait, err := u.limiter.Blocked(ctx, address)
		if err != nil {
			logger.Warn(ctx, "Login throttle unavailable", zap.Error(err))
		} else if blocked {
			return nil, domainerrors.TooManyRequests("Too many login attempts. Try again later.", secondsUntil(wait))
		}
	}

	user, err := u.userRepo.GetByEmail(ctx, address)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			u.recordFailure(ctx, address)
			return nil, invalidCredentials()
		}
		return nil, domainerrors.InternalError(err)
	}
	if !checkPassword(input.Password, user.PasswordHash) {
		u.recordFailure(ctx, address)
		return nil, invalidCredentials()
	}

	if u.limiter != nil {
		if err := u.limiter.Reset(ctx, address); err != nil {
			logger.Warn(ctx, "Failed to reset login throttle", zap.Error(err))
		}
	}

	token, err := u.tokens.IssueSessionToken(user.ID)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return &entities.AuthResult{User: user, SessionToken: token}, nil
}

// Me returns the signed in user
func (u *AuthUsecase) Me(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("User not found")
		}
		return nil, domainerrors.InternalError(err)
	}
	return user, nil
}

// VerifyEmail confirms the address with the emailed code
func (u *AuthUsecase) VerifyEmail(ctx context.Context, userID uuid.UUID, input *entities.VerifyEmailInput) (*entities.User, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, domainerrors.BadRequest("Ověřovací kód je povinný")
	}

	key := userID.String()
	if u.verifyLimiter != nil {
		blocked, wait, err := u.verifyLimiter.Blocked(ctx, key)
		if err != nil {
			logger.Warn(ctx, "Verification throttle unavailable", zap.Error(err))
		} else if blocked {
			return nil, domainerrors.TooManyRequests("Příliš mnoho neplatných pokusů. Zkuste to později.", secondsUntil(wait))
		}
	}

	user, err := u.pendingUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.EmailVerificationCode.Valid || user.EmailVerificationCode.String != code {
		u.recordVerifyFailure(ctx, key)
		return nil, domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeBadRequest,
			"Neplatný ověřovací kód", domainerrors.ErrInvalidCode)
	}
	now := u.now().UTC()
	if !user.EmailVerificationExpiresAt.Valid || user.EmailVerificationExpiresAt.Time.Before(now) {
		return nil, domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeBadRequest,
			"Platnost ověřovacího kódu vypršela", domainerrors.ErrCodeExpired)
	}

	if err := u.emailVerifRepo.MarkVerified(ctx, user.ID, now); err != nil {
		return nil, domainerrors.InternalError(err)
	}
	if u.verifyLimiter != nil {
		if err := u.verifyLimiter.Reset(ctx, key); err != nil {
			logger.Warn(ctx, "Failed to reset verification throttle", zap.Error(err))
		}
	}
	return u.Me(ctx, user.ID)
}

// ResendVerification issues a fresh code at most once per cooldown window.
// It returns the new code when codes are exposed, otherwise an empty string.
func (u *AuthUsecase) ResendVerification(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := u.pendingUser(ctx, userID)
	if err != nil {
		return "", err
	}

	now := u.now().UTC()
	if user.EmailVerificationSentAt.Valid {
		elapsed := now.Sub(user.EmailVerificationSentAt.Time)
		if elapsed < entities.VerificationResendCooldown {
			wait := secondsUntil(entities.VerificationResendCooldown - elapsed)
			return "", domainerrors.TooManyRequests(
				fmt.Sprintf("Počkejte %d sekund před dalším odesláním.", wait), wait)
		}
	}

	code, err := generateVerificationCode()
	if err != nil {
		return "", domainerrors.InternalError(err)
	}
	if err := u.emailVerifRepo.SetCode(ctx, user.ID, code, now.Add(entities.VerificationCodeTTL), now); err != nil {
		return "", domainerrors.InternalError(err)
	}

	u.sendVerification(ctx, user, code)

	if u.exposeCodes {
		return code, nil
	}
	return "", nil
}

func (u *AuthUsecase) pendingUser(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Uživatel nenalezen")
		}
		return nil, domainerrors.InternalError(err)
	}
	if user.IsVerified() {
		return nil, domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeBadRequest,
			"Email je již ověřen", domainerrors.ErrAlreadyVerified)
	}
	return user, nil
}

// sendVerification never fails the caller; the user can ask for another code.
func (u *AuthUsecase) sendVerification(ctx context.Context, user *entities.User, code string) {
	if u.mailer == nil || !u.mailer.Configured() {
		logger.Warn(ctx, "Email provider not configured, skipping verification email", zap.String("user_id", user.ID.String()))
		return
	}
	html, err := u.renderer.Verification(code)
	if err == nil {
		err = u.mailer.Send(ctx, email.Message{To: user.Email, Subject: u.renderer.VerificationSubject(), HTML: html})
	}
	if err != nil {
		u.metrics.EmailFailed(metrics.KindVerification)
		logger.Error(ctx, "Failed to send verification email", zap.String("user_id", user.ID.String()), zap.Error(err))
		return
	}
	u.metrics.EmailSent(metrics.KindVerification)
}

func (u *AuthUsecase) recordFailure(ctx context.Context, address string) {
	if u.limiter == nil {
		return
	}
	if err := u.limiter.Fail(ctx, address); err != nil {
		logger.Warn(ctx, "Failed to record login failure", zap.Error(err))
	}
}

func (u *AuthUsecase) recordVerifyFailure(ctx context.Context, key string) {
	if u.verifyLimiter == nil {
		return
	}
	if err := u.verifyLimiter.Fail(ctx, key); err != nil {
		logger.Warn(ctx, "Failed to record verification failure", zap.Error(err))
	}
}

func invalidCredentials() *domainerrors.AppError {
	return domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeInvalidCredentials,
		"Invalid credentials", domainerrors.ErrInvalidCredentials)
}

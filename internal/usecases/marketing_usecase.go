package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"vininfo.backend/internal/domain/entities"
	domainerrors "vininfo.backend/internal/domain/errors"
	"vininfo.backend/internal/domain/repositories"
	"vininfo.backend/internal/infrastructure/email"
	"vininfo.backend/internal/infrastructure/metrics"
	"vininfo.backend/pkg/jwt"
	"vininfo.backend/pkg/logger"
)

// MarketingExample is returned with a validation error to show a complete payload.
var MarketingExample = entities.MarketingInput{
	Subject:   "Novinka na VIN Info.cz",
	Preheader: "Podívejte se, co je nového...",
	Heading:   "Nová funkce: Upozornění na termíny",
	Content:   "<p>Nyní si můžete nastavit upozornění na důležité termíny...</p>",
	CTAText:   "Vyzkoušet",
	CTAURL:    "https://vininfo.cz/klientska-zona",
	TestEmail: "optional@test.com",
}

// MarketingUsecase broadcasts operator written campaigns to opted in users
type MarketingUsecase struct {
	userRepo repositories.UserRepository
	tokens   *jwt.TokenService
	mailer   EmailSender
	renderer *email.Renderer
	metrics  *metrics.Metrics
	delay    time.Duration
	sleep    SleepFunc
}

// NewMarketingUsecase creates a new marketing usecase
func NewMarketingUsecase(
	userRepo repositories.UserRepository,
	tokens *jwt.TokenService,
	mailer EmailSender,
	renderer *email.Renderer,
	m *metrics.Metrics,
	delay time.Duration,
) *MarketingUsecase {
	return &MarketingUsecase{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		renderer: renderer,
		metrics:  m,
		delay:    delay,
		sleep:    sleepContext,
	}
}

// WithSleep replaces the pacing wait
func (u *MarketingUsecase) WithSleep(sleep SleepFunc) *MarketingUsecase {
	u.sleep = sleep
	return u
}

// Broadcast sends the campaign to every marketing recipient, or only to
// input.TestEmail when it is set.
func (u *MarketingUsecase) Broadcast(ctx context.Context, input *entities.MarketingInput) (*entities.BroadcastResult, error) {
	if input.MissingRequired() {
		return nil, domainerrors.BadRequest("Missing required fields: subject, heading, content").
			WithDetail("example", MarketingExample)
	}
	if u.mailer == nil || !u.mailer.Configured() {
		return nil, domainerrors.ConfigError("RESEND_API_KEY not configured")
	}

	testMode := strings.TrimSpace(input.TestEmail) != ""
	recipients, err := u.recipients(ctx, input.TestEmail)
	if err != nil {
		logger.Error(ctx, "Failed to load marketing recipients", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}
	if len(recipients) == 0 {
		return &entities.BroadcastResult{Message: "No recipients found", TestMode: testMode}, nil
	}

	result := &entities.BroadcastResult{Total: len(recipients), TestMode: testMode}
	for i, recipient := range recipients {
		if i > 0 {
			if err := u.sleep(ctx, u.delay); err != nil {
				logger.Warn(ctx, "Marketing broadcast interrupted", zap.Int("remaining", len(recipients)-i), zap.Error(err))
				break
			}
		}
		if err := u.send(ctx, input, recipient); err != nil {
			u.metrics.EmailFailed(metrics.KindMarketing)
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to send to %s: %v", recipient.Email, err))
			logger.Error(ctx, "Failed to send marketing email", zap.String("user_id", recipient.ID), zap.Error(err))
			continue
		}
		result.Sent++
		u.metrics.EmailSent(metrics.KindMarketing)
	}

	result.Message = fmt.Sprintf("Sent %d of %d marketing emails", result.Sent, result.Total)
	logger.Info(ctx, "Marketing broadcast finished",
		zap.Bool("test_mode", testMode),
		zap.Int("sent", result.Sent),
		zap.Int("total", result.Total),
	)
	return result, nil
}

func (u *MarketingUsecase) recipients(ctx context.Context, testEmail string) ([]entities.Recipient, error) {
	if address := strings.TrimSpace(testEmail); address != "" {
		user, err := u.userRepo.GetByEmail(ctx, entities.NormalizeEmail(address))
		if errors.Is(err, domainerrors.ErrNotFound) {
			return []entities.Recipient{{ID: TestRecipientID, Email: address}}, nil
		}
		if err != nil {
			return nil, err
		}
		return []entities.Recipient{{ID: user.ID.String(), Email: user.Email}}, nil
	}

	users, err := u.userRepo.ListMarketingRecipients(ctx)
	if err != nil {
		return nil, err
	}
	recipients := make([]entities.Recipient, 0, len(users))
	for _, user := range users {
		recipients = append(recipients, entities.Recipient{ID: user.ID.String(), Email: user.Email})
	}
	return recipients, nil
}

func (u *MarketingUsecase) send(ctx context.Context, input *entities.MarketingInput, recipient entities.Recipient) error {
	token, err := u.tokens.IssueUnsubscribeToken(recipient.ID, jwt.PreferenceMarketing)
	if err != nil {
		return err
	}
	html, err := u.renderer.Marketing(email.MarketingEmail{
		Subject:          input.Subject,
		Preheader:        input.Preheader,
		Heading:          input.Heading,
		Content:          input.Content,
		CTAText:          input.CTAText,
		CTAURL:           input.CTAURL,
		UnsubscribeToken: token,
	})
	if err != nil {
		return err
	}
	return u.mailer.Send(ctx, email.Message{To: recipient.Email, Subject: input.Subject, HTML: html})
}

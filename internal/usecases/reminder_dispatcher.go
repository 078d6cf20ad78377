package usecases

import (
	"context"
	"fmt"
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

// ReminderDispatcher emails every reminder whose send date has come.
// Each reminder is claimed before sending so overlapping runs never email it twice.
type ReminderDispatcher struct {
	deliveryRepo repositories.ReminderDeliveryRepository
	tokens       *jwt.TokenService
	mailer       EmailSender
	renderer     *email.Renderer
	locker       RunLocker
	metrics      *metrics.Metrics
	delay        time.Duration
	sleep        SleepFunc
	now          func() time.Time
}

// NewReminderDispatcher creates a dispatcher. locker may be nil.
func NewReminderDispatcher(
	deliveryRepo repositories.ReminderDeliveryRepository,
	tokens *jwt.TokenService,
	mailer EmailSender,
	renderer *email.Renderer,
	locker RunLocker,
	m *metrics.Metrics,
	delay time.Duration,
) *ReminderDispatcher {
	return &ReminderDispatcher{
		deliveryRepo: deliveryRepo,
		tokens:       tokens,
		mailer:       mailer,
		renderer:     renderer,
		locker:       locker,
		metrics:      m,
		delay:        delay,
		sleep:        sleepContext,
		now:          time.Now,
	}
}

// WithClock replaces the time source
func (d *ReminderDispatcher) WithClock(now func() time.Time) *ReminderDispatcher {
	d.now = now
	return d
}

// WithSleep replaces the pacing wait
func (d *ReminderDispatcher) WithSleep(sleep SleepFunc) *ReminderDispatcher {
	d.sleep = sleep
	return d
}

// Dispatch runs one pass. trigger labels the run in metrics.
// The pass is detached from ctx cancellation: once a reminder is claimed it is either
// sent or released, so a dropped cron request or a shutdown cannot strand it as sent.
func (d *ReminderDispatcher) Dispatch(ctx context.Context, trigger string) (*entities.DispatchResult, error) {
	ctx = context.WithoutCancel(ctx)
	release, acquired := d.acquire(ctx)
	if !acquired {
		logger.Info(ctx, "Reminder dispatch already running", zap.String("trigger", trigger))
		return &entities.DispatchResult{Message: "Dispatch already running"}, nil
	}
	if release != nil {
		defer func() {
			if err := release(ctx); err != nil {
				logger.Warn(ctx, "Failed to release dispatch lock", zap.Error(err))
			}
		}()
	}

	d.metrics.DispatchRun(trigger)

	today := entities.DateOf(d.now())
	due, err := d.deliveryRepo.ListDueForEmail(ctx, today)
	if err != nil {
		logger.Error(ctx, "Failed to list due reminders", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}
	if len(due) == 0 {
		return &entities.DispatchResult{Message: "No reminders to send"}, nil
	}
	if d.mailer == nil || !d.mailer.Configured() {
		logger.Error(ctx, "RESEND_API_KEY is not configured")
		return nil, domainerrors.ConfigError("Email service not configured")
	}

	result := &entities.DispatchResult{Total: len(due)}
	for i, item := range due {
		if i > 0 {
			if err := d.sleep(ctx, d.delay); err != nil {
				logger.Warn(ctx, "Reminder dispatch interrupted", zap.Int("remaining", len(due)-i), zap.Error(err))
				break
			}
		}

		claimedAt := d.now().UTC().Truncate(time.Microsecond)
		claimed, err := d.deliveryRepo.ClaimSent(ctx, item.ReminderID, claimedAt)
		if err != nil {
			d.fail(ctx, result, item, err)
			continue
		}
		if !claimed {
			result.Skipped++
			continue
		}

		if err := d.deliver(ctx, item); err != nil {
			if releaseErr := d.deliveryRepo.ReleaseClaim(ctx, item.ReminderID, claimedAt); releaseErr != nil {
				logger.Error(ctx, "Failed to release reminder claim",
					zap.String("reminder_id", item.ReminderID.String()), zap.Error(releaseErr))
			}
			d.fail(ctx, result, item, err)
			continue
		}

		result.Sent++
		d.metrics.EmailSent(metrics.KindReminder)
	}

	result.Message = fmt.Sprintf("Sent %d of %d reminders", result.Sent, result.Total)
	logger.Info(ctx, "Reminder dispatch finished",
		zap.String("trigger", trigger),
		zap.Int("sent", result.Sent),
		zap.Int("total", result.Total),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Errors)),
	)
	return result, nil
}

func (d *ReminderDispatcher) deliver(ctx context.Context, item *entities.ReminderDelivery) error {
	token, err := d.tokens.IssueUnsubscribeToken(item.UserID.String(), jwt.PreferenceNotifications)
	if err != nil {
		return err
	}
	label := item.Type.Label()
	vehicleName := item.VehicleName()
	html, err := d.renderer.Reminder(email.ReminderEmail{
		TypeLabel:        label,
		VehicleName:      vehicleName,
		DueDate:          item.DueDate,
		Note:             item.Note.String,
		UnsubscribeToken: token,
	})
	if err != nil {
		return err
	}
	return d.mailer.Send(ctx, email.Message{
		To:      item.Email,
		Subject: d.renderer.ReminderSubject(label, vehicleName),
		HTML:    html,
	})
}

func (d *ReminderDispatcher) fail(ctx context.Context, result *entities.DispatchResult, item *entities.ReminderDelivery, err error) {
	d.metrics.EmailFailed(metrics.KindReminder)
	result.Errors = append(result.Errors, fmt.Sprintf("Failed to send reminder %s: %v", item.ReminderID, err))
	logger.Error(ctx, "Failed to send reminder", zap.String("reminder_id", item.ReminderID.String()), zap.Error(err))
}

// acquire fails open: a lock backend error lets the run proceed unguarded.
func (d *ReminderDispatcher) acquire(ctx context.Context) (func(context.Context) error, bool) {
	if d.locker == nil {
		return nil, true
	}
	release, acquired, err := d.locker.Acquire(ctx)
	if err != nil {
		logger.Warn(ctx, "Dispatch lock unavailable, running unguarded", zap.Error(err))
		return nil, true
	}
	return release, acquired
}

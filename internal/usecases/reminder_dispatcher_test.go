package usecases_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"vininfo.backend/internal/domain/entities"
	domainerrors "vininfo.backend/internal/domain/errors"
	"vininfo.backend/internal/infrastructure/email"
	"vininfo.backend/internal/infrastructure/metrics"
	"vininfo.backend/internal/usecases"
	"vininfo.backend/pkg/jwt"
)

type dispatcherFixture struct {
	repo    *MockReminderDeliveryRepository
	sender  *MockEmailSender
	locker  *MockRunLocker
	tokens  *jwt.TokenService
	metrics *metrics.Metrics
	sleeps  []time.Duration
	now     time.Time
	uc      *usecases.ReminderDispatcher
}

func newDispatcherFixture(t *testing.T, withLock bool) *dispatcherFixture {
	f := &dispatcherFixture{
		repo:    new(MockReminderDeliveryRepository),
		sender:  new(MockEmailSender),
		tokens:  newTokenService(t),
		metrics: metrics.New(),
		now:     time.Date(2026, 3, 9, 7, 0, 0, 123456789, time.UTC),
	}
	var locker usecases.RunLocker
	if withLock {
		f.locker = new(MockRunLocker)
		locker = f.locker
	}
	f.uc = usecases.NewReminderDispatcher(f.repo, f.tokens, f.sender, newRenderer(t), locker, f.metrics, usecases.DefaultSendDelay).
		WithClock(func() time.Time { return f.now }).
		WithSleep(func(_ context.Context, d time.Duration) error {
			f.sleeps = append(f.sleeps, d)
			return nil
		})
	return f
}

func scrapeMetrics(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func (f *dispatcherFixture) claimedAt() time.Time {
	return f.now.UTC().Truncate(time.Microsecond)
}

func delivery(email string) *entities.ReminderDelivery {
	return &entities.ReminderDelivery{
		ReminderID:   uuid.New(),
		UserID:       uuid.New(),
		Type:         entities.ReminderTypeSTK,
		DueDate:      entities.NewDate(2026, time.March, 10),
		Note:         null.StringFrom("vzít doklady"),
		Email:        email,
		VehicleBrand: null.StringFrom("Škoda"),
		VehicleModel: null.StringFrom("Octavia"),
	}
}

func TestReminderDispatcher_NoReminders(t *testing.T) {
	f := newDispatcherFixture(t, false)
	f.repo.On("ListDueForEmail", mock.Anything, entities.NewDate(2026, time.March, 9)).Return([]*entities.ReminderDelivery{}, nil).Once()

	result, err := f.uc.Dispatch(context.Background(), usecases.TriggerCron)
	require.NoError(t, err)
	assert.Equal(t, &entities.DispatchResult{Message: "No reminders to send"}, result)
	assert.Empty(t, f.sleeps)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	assert.Contains(t, scrapeMetrics(t, f.metrics), `vininfo_dispatch_runs_total{trigger="cron"} 1`)
}

func TestReminderDispatcher_NotConfigured(t *testing.T) {
	f := newDispatcherFixture(t, false)
	f.repo.On("ListDueForEmail", mock.Anything, mock.Anything).Return([]*entities.ReminderDelivery{delivery("a@b.cz")}, nil).Once()
	f.sender.On("Configured").Return(false)

	_, err := f.uc.Dispatch(context.Background(), usecases.TriggerCron)
	requireAppError(t, err, http.StatusInternalServerError, "Email service not configured")
	assert.ErrorIs(t, err, domainerrors.ErrConfig)
	f.repo.AssertNotCalled(t, "ClaimSent", mock.Anything, mock.Anything, mock.Anything)
}

func TestReminderDispatcher_ListError(t *testing.T) {
	f := newDispatcherFixture(t, false)
	f.repo.On("ListDueForEmail", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	_, err := f.uc.Dispatch(context.Background(), usecases.TriggerCron)
	requireAppError(t, err, http.StatusInternalServerError, "Internal server error")
}

func TestReminderDispatcher_PartialFailure(t *testing.T) {
	f := newDispatcherFixture(t, false)
	first, second, third := delivery("a@b.cz"), delivery("fail@b.cz"), delivery("c@b.cz")
	f.repo.On("ListDueForEmail", mock.Anything, mock.Anything).Return([]*entities.ReminderDelivery{first, second, third}, nil).Once()
	f.sender.On("Configured").Return(true)
	for _, d := range []*entities.ReminderDelivery{first, second, third} {
		f.repo.On("ClaimSent", mock.Anything, d.ReminderID, f.claimedAt()).Return(true, nil).Once()
	}
	f.repo.On("ReleaseClaim", mock.Anything, second.ReminderID, f.claimedAt()).Return(nil).Once()

	f.sender.On("Send", mock.Anything, mock.MatchedBy(func(m email.Message) bool { return m.To == "fail@b.cz" })).
		Return(&email.ProviderError{Status: 422, Body: "invalid"}).Once()
	f.sender.On("Send", mock.Anything, mock.MatchedBy(func(m email.Message) bool { return m.To != "fail@b.cz" })).
		Return(nil).Twice()

	result, err := f.uc.Dispatch(context.Background(), usecases.TriggerCron)
	require.NoError(t, err)
	assert.Equal(t, "Sent 2 of 3 reminders", result.Message)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Failed to send reminder "+second.ReminderID.String()+": Resend API error: 422 - invalid", result.Errors[0])

	assert.Equal(t, []time.Duration{600 * time.Millisecond, 600 * time.Millisecond}, f.sleeps)
	scraped := scrapeMetrics(t, f.metrics)
	assert.Contains(t, scraped, `vininfo_emails_total{kind="reminder",status="sent"} 2`)
	assert.Contains(t, scraped, `vininfo_emails_total{kind="reminder",status="failed"} 1`)
	f.repo.AssertExpectations(t)
	f.sender.AssertExpectations(t)
}

func TestReminderDispatcher_MessageContent(t *testing.T) {
	f := newDispatcherFixture(t, false)
	d := delivery("a@b.cz")
	f.repo.On("ListDueForEmail", mock.Anything, mock.Anything).Return([]*entities.ReminderDelivery{d}, nil).Once()
	f.repo.On("ClaimSent", mock.Anything, d.ReminderID, f.claimedAt()).Return(true, nil).Once()
	f.sender.On("Configured").Return(true)

	var sent email.Message
	f.sender.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(email.Message)
	}).Return(nil).Once()

	_, err := f.uc.Dispatch(context.Background(), usecases.TriggerCron)
	require.NoError(t, err)
	assert.Equal(t, "a@b.cz", sent.To)
	assert.Equal(t, "Připomínka: Termín STK - Škoda Octavia", sent.Subject)
	assert.Contains(t, sent.HTML, "10. března 2026")
	assert.Contains(t, sent.HTML, "https://vininfo.cz/api/email/unsubscribe?token=")
	assert.Empty(t, f.sleeps, "a single reminder is not delayed")
}

func TestReminderDispatcher_SkipsReminderClaimedElsewhere(t *testing.T) {
	f := newDispatcherFixture(t, false)
	taken, free := delivery("a@b.cz"), delivery("b@b.cz")
	f.repo.On("ListDueForEmail", mock.Anything, mock.Anything).Return([]*entities.ReminderDelivery{taken, free}, nil).Once()
	f.repo.On("ClaimSent", mock.Anything, taken.ReminderID, mock.Anything).Return(false, nil).Once()
	f.repo.On("ClaimSent", mock.Anything, free.ReminderID, mock.Anything).Return(true, nil).Once()
	f.sender.On("Configured").Return(true)
	f.sender.On("Send", mock.Anything, mock.MatchedBy(func(m email.Message) bool { return m.To == "b@b.cz" })).Return(nil).Once()

	result, err := f.uc.Dispatch(context.Background(), usecases.TriggerCron)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)
	f.sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestReminderDispatcher_ClaimError(t *testing.T) {
	f := newDispatcherFixture(t, false)
	d := delivery("a@b.cz")
	f.repo.On("ListDueForEmail", mock.Anything, mock.Anything).Return([]*entities.ReminderDelivery{d}, nil).Once()
	f.repo.On("ClaimSent", mock.Anything, d.ReminderID, mock.Anything).Return(false, errors.New("db down")).Once()
	f.sender.On("Configured").Return(true)

	result, err := f.uc.Dispatch(context.Background(), usecases.TriggerCron)
	require.NoError(t, err)
	assert.Equal(t, "Sent 0 of 1 reminders", result.Message)
	assert.Equal(t, []string{"Failed to send reminder " + d.ReminderID.String() + ": db down"}, result.Errors)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestReminderDispatcher_CancelledCallerStillCompletesBatch(t *testing.T) {
	f := newDispatcherFixture(t, false)
	first, second := delivery("a@b.cz"), delivery("b@b.cz")
	live := mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })

	f.repo.On("ListDueForEmail", live, mock.Anything).Return([]*entities.ReminderDelivery{first, second}, nil).Once()
	f.repo.On("ClaimSent", live, first.ReminderID, f.claimedAt()).Return(true, nil).Once()
	f.repo.On("ClaimSent", live, second.ReminderID, f.claimedAt()).Return(true, nil).Once()
	f.sender.On("Configured").Return(true)
	f.sender.On("Send", live, mock.MatchedBy(func(m email.Message) bool { return m.To == "a@b.cz" })).Return(nil).Once()
	f.sender.On("Send", live, mock.MatchedBy(func(m email.Message) bool { return m.To == "b@b.cz" })).
		Return(errors.New("provider down")).Once()
	f.repo.On("ReleaseClaim", live, second.ReminderID, f.claimedAt()).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.uc.Dispatch(ctx, usecases.TriggerCron)
	require.NoError(t, err)
	assert.Equal(t, "Sent 1 of 2 reminders", result.Message)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], second.ReminderID.String())
	f.repo.AssertExpectations(t)
	f.sender.AssertExpectations(t)
}

func TestReminderDispatcher_RunLock(t *testing.T) {
	t.Run("held elsewhere", func(t *testing.T) {
		f := newDispatcherFixture(t, true)
		f.locker.On("Acquire", mock.Anything).Return(false, nil).Once()

		result, err := f.uc.Dispatch(context.Background(), usecases.TriggerCron)
		require.NoError(t, err)
		assert.Equal(t, "Dispatch already running", result.Message)
		assert.Zero(t, result.Sent)
		assert.Zero(t, result.Total)
		f.repo.AssertNotCalled(t, "ListDueForEmail", mock.Anything, mock.Anything)
	})

	t.Run("acquired and released", func(t *testing.T) {
		f := newDispatcherFixture(t, true)
		f.locker.On("Acquire", mock.Anything).Return(true, nil).Once()
		f.repo.On("ListDueForEmail", mock.Anything, mock.Anything).Return([]*entities.ReminderDelivery{}, nil).Once()

		_, err := f.uc.Dispatch(context.Background(), usecases.TriggerCron)
		require.NoError(t, err)
		assert.Equal(t, 1, f.locker.released)
	})

	t.Run("backend down fails open", func(t *testing.T) {
		f := newDispatcherFixture(t, true)
		f.locker.On("Acquire", mock.Anything).Return(false, errors.New("redis down")).Once()
		f.repo.On("ListDueForEmail", mock.Anything, mock.Anything).Return([]*entities.ReminderDelivery{}, nil).Once()

		result, err := f.uc.Dispatch(context.Background(), usecases.TriggerCron)
		require.NoError(t, err)
		assert.Equal(t, "No reminders to send", result.Message)
	})
}

package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"vininfo.backend/internal/domain/entities"
	"vininfo.backend/internal/usecases"
	"vininfo.backend/pkg/logger"
)

// ReminderDispatcher runs one reminder email pass
type ReminderDispatcher interface {
	Dispatch(ctx context.Context, trigger string) (*entities.DispatchResult, error)
}

// ReminderDispatchJob triggers the reminder dispatcher on a cron schedule (UTC)
type ReminderDispatchJob struct {
	dispatcher ReminderDispatcher
	spec       string
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewReminderDispatchJob creates the job. An empty spec disables it.
func NewReminderDispatchJob(dispatcher ReminderDispatcher, spec string) *ReminderDispatchJob {
	return &ReminderDispatchJob{
		dispatcher: dispatcher,
		spec:       spec,
		stop:       make(chan struct{}),
	}
}

// Start blocks until ctx is done or Stop is called
func (j *ReminderDispatchJob) Start(ctx context.Context) {
	if j.spec == "" {
		logger.Info(ctx, "Reminder dispatch job disabled")
		return
	}

	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(j.spec, func() { j.run(ctx) }); err != nil {
		logger.Error(ctx, "Invalid reminder dispatch schedule", zap.String("spec", j.spec), zap.Error(err))
		return
	}

	logger.Info(ctx, "Starting reminder dispatch job", zap.String("spec", j.spec))
	c.Start()

	select {
	case <-ctx.Done():
		logger.Info(ctx, "Reminder dispatch job stopped (context cancelled)")
	case <-j.stop:
		logger.Info(ctx, "Reminder dispatch job stopped")
	}

	// wait for a run in progress
	<-c.Stop().Done()
}

// Stop ends a running Start. Safe to call more than once.
func (j *ReminderDispatchJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

func (j *ReminderDispatchJob) run(ctx context.Context) {
	result, err := j.dispatcher.Dispatch(ctx, usecases.TriggerScheduler)
	if err != nil {
		logger.Error(ctx, "Scheduled reminder dispatch failed", zap.Error(err))
		return
	}
	logger.Info(ctx, "Scheduled reminder dispatch finished",
		zap.String("message", result.Message),
		zap.Int("sent", result.Sent),
		zap.Int("total", result.Total),
		zap.Int("errors", len(result.Errors)),
	)
}

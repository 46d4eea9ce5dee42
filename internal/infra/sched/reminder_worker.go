package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-course-bot/internal/infra/metrics"
	"telegram-course-bot/internal/usecase"
)

// ReminderWorker periodically counts paid students who have not opened a
// lesson inside the inactivity window and publishes the figure as a gauge
// so operators can follow up with them.
type ReminderWorker struct {
	interval time.Duration
	window   time.Duration
	userUC   usecase.UserUseCase
	log      *zerolog.Logger
}

func NewReminderWorker(interval, window time.Duration, userUC usecase.UserUseCase, logger *zerolog.Logger) *ReminderWorker {
	compLog := logger.With().Str("component", "ReminderWorker").Logger()
	return &ReminderWorker{
		interval: interval,
		window:   window,
		userUC:   userUC,
		log:      &compLog,
	}
}

func (w *ReminderWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting reminder worker")
	// Run once on startup, then on every tick
	w.runCheck(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping reminder worker")
			return ctx.Err()
		case <-ticker.C:
			w.runCheck(ctx)
		}
	}
}

func (w *ReminderWorker) runCheck(ctx context.Context) {
	since := time.Now().Add(-w.window)
	count, err := w.userUC.CountInactivePaidSince(ctx, since)
	if err != nil {
		w.log.Error().Err(err).Msg("inactive student check failed")
		return
	}
	metrics.SetInactivePaidUsers(count)
	if count > 0 {
		w.log.Info().Int("count", count).Dur("window", w.window).Msg("paid students inactive")
	}
}

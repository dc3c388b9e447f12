package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/linkmind/linkmind/internal/logger"
	"github.com/linkmind/linkmind/internal/reminder"
)

// SweepRunner drives the due-reminder sweep on a cron cadence. An empty
// schedule disables the internal cadence entirely, leaving the sweep to
// external triggers via the HTTP endpoint.
type SweepRunner struct {
	sweeper  *reminder.Sweeper
	logger   logger.Logger
	schedule string
	cron     *cron.Cron
}

// NewSweepRunner creates the cron-backed sweep runner.
func NewSweepRunner(sweeper *reminder.Sweeper, log logger.Logger, schedule string) *SweepRunner {
	return &SweepRunner{
		sweeper:  sweeper,
		logger:   log,
		schedule: schedule,
	}
}

// Start registers the sweep job and starts the cron loop. Start with an
// empty schedule is a no-op.
func (sr *SweepRunner) Start(ctx context.Context) error {
	if sr.schedule == "" {
		sr.logger.Info("internal sweep cadence disabled, relying on external triggers")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(sr.schedule, func() {
		result, err := sr.sweeper.Run(ctx)
		if err != nil {
			sr.logger.Error("scheduled sweep failed", logger.Error(err))
			return
		}
		if result.Skipped {
			return
		}
		sr.logger.Info("scheduled sweep completed",
			logger.Int("users_notified", result.UsersNotified),
			logger.Int("bookmarks_swept", result.BookmarksSwept))
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", sr.schedule, err)
	}

	c.Start()
	sr.cron = c
	sr.logger.Info("sweep runner started", logger.String("schedule", sr.schedule))
	return nil
}

// Stop halts the cron loop and waits for a running sweep job to finish.
func (sr *SweepRunner) Stop() {
	if sr.cron == nil {
		return
	}
	<-sr.cron.Stop().Done()
	sr.logger.Info("sweep runner stopped")
}

// internal/keeper/scheduler.go
package keeper

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const fallbackSchedule = "@every 60s"

// Scheduler runs the keeper jobs on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	jobs     *Jobs
	logger   *logrus.Logger
	schedule string
}

func NewScheduler(jobs *Jobs, logger *logrus.Logger, schedule string) *Scheduler {
	c := cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(logger))))
	return &Scheduler{
		cron:     c,
		jobs:     jobs,
		logger:   logger,
		schedule: schedule,
	}
}

// ResolveSchedule picks the cron spec: an explicit schedule wins, otherwise
// the order's own interval.
func ResolveSchedule(explicit string, interval uint64) string {
	if explicit != "" {
		return explicit
	}
	if interval == 0 {
		return fallbackSchedule
	}
	return fmt.Sprintf("@every %ds", interval)
}

// Start registers the purchase job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	schedule := s.schedule
	if schedule == "" {
		var interval uint64
		if order, active, err := s.jobs.client.GetMyOrder(ctx); err != nil {
			s.logger.WithError(err).Warn("could not read purchase order, using fallback schedule")
		} else if active {
			interval = order.PurchaseInterval
		}
		schedule = ResolveSchedule("", interval)
	}

	if _, err := s.cron.AddFunc(schedule, s.jobs.ExecuteDuePurchase); err != nil {
		return fmt.Errorf("failed to schedule purchase job: %w", err)
	}
	s.logger.WithField("schedule", schedule).Info("scheduled purchase job")

	s.cron.Start()
	return nil
}

// Stop stops the scheduler; the returned context is done once running jobs
// have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

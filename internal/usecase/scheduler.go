package usecase

import (
	"context"
	"log/slog"
	"time"

	"QueChoisir/internal/ports"
)

// Scheduler wires the ticker driver with the rankings use case.
type Scheduler struct {
	driver   ports.Scheduler
	rankings *Rankings
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring digests.
func NewScheduler(driver ports.Scheduler, rankings *Rankings, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, rankings: rankings, logger: logger}
}

// Start registers the digest job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.rankings == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if err := s.rankings.Publish(ctx); err != nil && s.logger != nil {
			s.logger.Error("scheduled digest failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

// Package scheduler runs the periodic maintenance jobs: stats reconcile,
// weather cache freshness, and retroactive goal recompute.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/dripline/dripline/internal/goal"
	"github.com/dripline/dripline/internal/stats"
	"github.com/dripline/dripline/internal/weather"
)

// Scheduler owns the gocron instance and its jobs.
type Scheduler struct {
	inner  gocron.Scheduler
	logger *slog.Logger
}

// Config carries the job intervals.
type Config struct {
	ReconcileInterval time.Duration
	WeatherInterval   time.Duration
}

// New builds the scheduler with all maintenance jobs registered. Jobs do not
// run until Start is called.
func New(cfg Config, agg *stats.Aggregator, engine *goal.Engine, svc *weather.Service, logger *slog.Logger) (*Scheduler, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	s := &Scheduler{inner: inner, logger: logger}

	if _, err := inner.NewJob(
		gocron.DurationJob(cfg.ReconcileInterval),
		gocron.NewTask(func() {
			if _, err := agg.Reconcile(); err != nil {
				logger.Error("scheduled stats reconcile failed", "error", err)
				return
			}
			if err := engine.RecomputeRecent(); err != nil {
				logger.Error("scheduled goal recompute failed", "error", err)
			}
		}),
	); err != nil {
		return nil, err
	}

	if _, err := inner.NewJob(
		gocron.DurationJob(cfg.WeatherInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			// Unforced: a fresh cache is a no-op, an expired one refetches.
			if _, err := svc.Current(ctx, false); err != nil {
				logger.Debug("scheduled weather refresh skipped", "error", err)
			}
		}),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins executing jobs on their intervals.
func (s *Scheduler) Start() {
	s.inner.Start()
	s.logger.Info("scheduler started")
}

// Shutdown stops the scheduler and waits for running jobs.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- s.inner.Shutdown() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

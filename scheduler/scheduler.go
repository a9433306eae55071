// Package scheduler recomputes forecast and analysis gauges on a cron
// schedule while the API server runs.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"wfm-planner/models"
)

// Refresher is implemented by planner.Planner.
type Refresher interface {
	Refresh(ctx context.Context, r models.DateRange, targetSL float64) error
}

// Job describes what each tick recomputes.
type Job struct {
	Range    models.DateRange
	TargetSL float64
	// Timeout bounds one refresh; zero means one minute.
	Timeout time.Duration
}

// Scheduler runs a Job on a standard five-field cron spec.
type Scheduler struct {
	cron      *cron.Cron
	entry     cron.EntryID
	refresher Refresher
	job       Job
	logger    *slog.Logger
}

// New validates spec and registers the job. Call Start to begin ticking.
func New(spec string, refresher Refresher, job Job, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if job.Timeout <= 0 {
		job.Timeout = time.Minute
	}

	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		refresher: refresher,
		job:       job,
		logger:    logger,
	}

	id, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.job.Timeout)
		defer cancel()
		_ = s.RunOnce(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	s.entry = id
	return s, nil
}

// RunOnce performs a single refresh and logs the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()
	err := s.refresher.Refresh(ctx, s.job.Range, s.job.TargetSL)
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled refresh failed", "error", err)
		return err
	}
	s.logger.InfoContext(ctx, "scheduled refresh complete",
		"from", models.DateKey(s.job.Range.Start),
		"to", models.DateKey(s.job.Range.End),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Next returns the next activation time, or zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Start begins the schedule in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("refresh scheduler started", "next", s.Next())
}

// Stop halts the schedule. The returned context is done once a running
// refresh has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

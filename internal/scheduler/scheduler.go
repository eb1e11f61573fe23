// Package scheduler triggers the maintenance sweep on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/staybook/internal/services"
	"github.com/robfig/cron/v3"
)

// Sweeper is the single entry point the scheduler drives.
type Sweeper interface {
	RunSweep(ctx context.Context) services.SweepResult
}

type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	logger  *slog.Logger
	timeout time.Duration
}

// New registers the sweep under spec (standard five-field cron or a descriptor such as "@hourly").
// Overlapping runs are skipped rather than queued.
func New(spec string, sweeper Sweeper, logger *slog.Logger) (*Scheduler, error) {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		sweeper: sweeper,
		logger:  logger,
		timeout: 5 * time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sweep panicked", "panic", r)
		}
	}()
	s.sweeper.RunSweep(ctx)
}

// RunNow performs a sweep outside the schedule, e.g. once at startup.
func (s *Scheduler) RunNow(ctx context.Context) services.SweepResult {
	return s.sweeper.RunSweep(ctx)
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("sweep scheduler started", "entries", len(s.cron.Entries()))
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

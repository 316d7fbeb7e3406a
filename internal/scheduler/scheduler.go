// Package scheduler wires up the cron jobs that keep the job table fresh:
// a refresh pass every 6 hours, a keyword fetch every 12 and a cleanup
// every 24.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"jobpulse/search-service/internal/tasks"
)

const (
	refreshSpec = "@every 6h"
	fetchSpec   = "@every 12h"
	cleanupSpec = "@every 24h"
)

// Scheduler wraps robfig/cron and manages the maintenance loop.
type Scheduler struct {
	cron   *cron.Cron
	runner *tasks.Runner
}

// New creates a Scheduler around the given task runner.
func New(runner *tasks.Runner) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		runner: runner,
	}
}

// Start registers the maintenance jobs and starts the scheduler. A fetch
// runs immediately so a fresh deployment has rows without waiting for the
// first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	jobs := []struct {
		spec string
		run  func()
	}{
		{refreshSpec, func() {
			if _, err := s.runner.RefreshJobs(ctx); err != nil {
				log.Printf("[scheduler] refresh error: %v", err)
			}
		}},
		{fetchSpec, func() {
			if _, err := s.runner.FetchNewJobs(ctx, nil, 0); err != nil {
				log.Printf("[scheduler] fetch error: %v", err)
			}
		}},
		{cleanupSpec, func() {
			if _, err := s.runner.CleanupJobs(ctx, 0); err != nil {
				log.Printf("[scheduler] cleanup error: %v", err)
			}
		}},
	}
	for _, j := range jobs {
		if _, err := s.cron.AddFunc(j.spec, j.run); err != nil {
			return fmt.Errorf("cron.AddFunc %s: %w", j.spec, err)
		}
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — refresh %s, fetch %s, cleanup %s",
		refreshSpec, fetchSpec, cleanupSpec)

	// Seed the table on startup (non-blocking).
	go func() {
		if _, err := s.runner.FetchNewJobs(ctx, nil, 0); err != nil {
			log.Printf("[scheduler] initial fetch error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

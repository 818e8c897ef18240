// Package scheduler drives the lifecycle jobs on cron cadences and fans
// their reports out to logging, metrics, and the event bus.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"tradepost/internal/jobs"
)

// Publisher receives job reports for the alerting collaborator. A nil
// Publisher disables publishing.
type Publisher interface {
	PublishResult(ctx context.Context, res jobs.Result) error
}

// Scheduler owns the cron runner. Jobs registered on it never overlap with
// themselves: a tick that fires while the previous run is still going is
// skipped, which keeps the engine single-flight per job as the batches
// require.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
	pub  Publisher

	mu      sync.Mutex
	running bool
}

// New returns a Scheduler publishing reports through pub when non-nil.
func New(log zerolog.Logger, pub Publisher) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		log: log.With().Str("component", "scheduler").Logger(),
		pub: pub,
	}
}

// Register schedules job on the given cron expression.
func (s *Scheduler) Register(ctx context.Context, spec string, job jobs.Job) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron schedule %q for %s: %w", spec, job.Name(), err)
	}

	_, err := s.cron.AddFunc(spec, func() {
		s.RunOnce(ctx, job)
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name(), err)
	}

	s.log.Info().Str("job", job.Name()).Str("schedule", spec).Msg("job registered")
	return nil
}

// RunOnce executes a job immediately with the current time, logs the
// report, and publishes it. The one-shot CLI path uses it directly.
func (s *Scheduler) RunOnce(ctx context.Context, job jobs.Job) jobs.Result {
	res := job.Run(ctx, time.Now().UTC())

	event := s.log.Info()
	if !res.Success {
		event = s.log.Error()
	}
	event.Str("job", res.Job).Bool("success", res.Success).Str("message", res.Message).Msg("job run finished")

	if s.pub != nil {
		if err := s.pub.PublishResult(ctx, res); err != nil {
			s.log.Warn().Err(err).Str("job", res.Job).Msg("publish job report")
		}
	}

	return res
}

// Start begins firing registered schedules and stops them when ctx ends.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
}

// Stop halts the cron runner and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info().Msg("scheduler stopped")
}

// NextRun reports the earliest upcoming scheduled firing, if any.
func (s *Scheduler) NextRun() *time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	for _, e := range entries[1:] {
		if e.Next.Before(next) {
			next = e.Next
		}
	}
	return &next
}

// Package schedule repeats a job on a cron schedule for long-running use.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/holon-run/readme-activity/pkg/log"
)

// Job is one scheduled run. Its error is logged; it never stops the scheduler.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a standard five-field cron spec or descriptor
// such as "@hourly". Runs never overlap; a tick that fires while the
// previous run is still in progress is skipped.
type Scheduler struct {
	spec       string
	job        Job
	runOnStart bool
	stopWait   time.Duration
	cron       *cron.Cron
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRunOnStart runs the job once immediately when Start is called.
func WithRunOnStart() Option {
	return func(s *Scheduler) { s.runOnStart = true }
}

// WithStopTimeout bounds how long Start waits for an in-flight run on shutdown.
func WithStopTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.stopWait = d }
}

// New validates spec and prepares a scheduler.
func New(spec string, job Job, opts ...Option) (*Scheduler, error) {
	if job == nil {
		return nil, fmt.Errorf("schedule: job is required")
	}
	s := &Scheduler{spec: spec, job: job, stopWait: 30 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start blocks until ctx is done, then waits for any in-flight run.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron = cron.New(cron.WithChain(
		cron.Recover(cronLogger{}),
		cron.SkipIfStillRunning(cronLogger{}),
	), cron.WithLogger(cronLogger{}))

	var entryJob cron.Job = cron.FuncJob(func() { s.run(ctx) })
	id, err := s.cron.AddJob(s.spec, entryJob)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	if s.runOnStart {
		// Run through the wrapped entry so it counts against SkipIfStillRunning.
		go s.cron.Entry(id).WrappedJob.Run()
	}

	s.cron.Start()
	log.Info("scheduler started", "schedule", s.spec, "next", s.cron.Entry(id).Next.Format(time.RFC3339))

	<-ctx.Done()

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(s.stopWait):
		log.Warn("timed out waiting for the running job to finish")
	}
	log.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := s.job(ctx); err != nil {
		log.Error("scheduled run failed", "error", err)
		return
	}
	log.Debug("scheduled run finished", "duration", time.Since(start).String())
}

// cronLogger routes the cron library's logging into the zap logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error(msg, append(keysAndValues, "error", err)...)
}

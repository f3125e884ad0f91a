package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"janitor/internal/logging"
)

// Job is the work executed on every trigger.
type Job func(ctx context.Context)

// Scheduler runs a Job on a cron schedule.
type Scheduler struct {
	spec   string
	job    Job
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	wrapped cron.Job
}

// New validates the cron expression and prepares a scheduler. Standard five
// field expressions and descriptors such as "@daily" are accepted.
func New(spec string, job Job, logger *slog.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("schedule requires a job")
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	logger = logging.NewComponentLogger(logger, "scheduler")
	return &Scheduler{
		spec:   spec,
		job:    job,
		cron:   cron.New(cron.WithLogger(cronLogger{logger: logger})),
		logger: logger,
	}, nil
}

// Start registers the job and begins scheduling. The scheduler stops when ctx
// is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler already started")
	}
	s.wrapped = cron.NewChain(cron.SkipIfStillRunning(cronLogger{logger: s.logger})).Then(cron.FuncJob(func() {
		s.job(ctx)
	}))
	if _, err := s.cron.AddJob(s.spec, s.wrapped); err != nil {
		return fmt.Errorf("schedule janitor run: %w", err)
	}
	s.cron.Start()
	s.running = true

	s.logger.Info("scheduler started",
		logging.String("schedule", s.spec),
		logging.String(logging.FieldEventType, "scheduler_started"),
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// RunNow triggers the job immediately through the same overlap guard as
// scheduled runs. It returns once the job finishes or is skipped.
func (s *Scheduler) RunNow() {
	s.mu.Lock()
	job := s.wrapped
	s.mu.Unlock()
	if job != nil {
		job.Run()
	}
}

// Stop stops the scheduler and waits for any running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		stopped := s.cron.Stop()
		<-stopped.Done()
		s.running = false
		s.logger.Info("scheduler stopped", logging.String(logging.FieldEventType, "scheduler_stopped"))
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled trigger, or nil before Start.
func (s *Scheduler) NextRun() *time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	if next.IsZero() {
		return nil
	}
	return &next
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	if msg == "skip" {
		logging.WarnWithContext(l.logger, "run skipped; previous run still in progress", "run_skipped",
			logging.String(logging.FieldImpact, "this trigger is dropped"),
			logging.String(logging.FieldErrorHint, "lengthen the schedule interval if this repeats"),
		)
		return
	}
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	args := append([]any{logging.Error(err)}, keysAndValues...)
	l.logger.Error("cron: "+msg, args...)
}

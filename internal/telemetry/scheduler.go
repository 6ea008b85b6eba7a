package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of scheduled maintenance
type Job func(ctx context.Context) error

// Scheduler runs maintenance jobs on cron specs with a seconds field
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// NewScheduler creates a scheduler; every job run is bounded by timeout
func NewScheduler(logger *zap.Logger, timeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
	}
}

// Register adds a named job
func (s *Scheduler) Register(spec, name string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, job) }); err != nil {
		return fmt.Errorf("register %s job: %w", name, err)
	}
	s.logger.Info("Scheduled job registered", zap.String("job", name), zap.String("spec", spec))
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		s.logger.Error("Scheduled job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.logger.Debug("Scheduled job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.cancel()
		s.logger.Warn("Scheduler stop timed out, cancelling running jobs")
		return
	}
	s.cancel()
	s.logger.Info("Scheduler stopped")
}

// PurgeJob deletes telemetry older than the retention window
func PurgeJob(r *Recorder, retention time.Duration) Job {
	return func(ctx context.Context) error {
		_, err := r.Purge(ctx, retention)
		return err
	}
}

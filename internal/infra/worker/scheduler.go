package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"newsdigest/internal/pkg/redact"
)

// Job is one digest run. It returns the number of digest items produced.
type Job func(ctx context.Context) (int, error)

// Scheduler runs a Job once or on the configured cron schedule.
type Scheduler struct {
	cfg     *Config
	job     Job
	metrics *Metrics
	logger  *slog.Logger
}

// NewScheduler wires a job to its schedule. metrics may be nil.
func NewScheduler(cfg *Config, job Job, metrics *Metrics, logger *slog.Logger) *Scheduler {
	return &Scheduler{cfg: cfg, job: job, metrics: metrics, logger: logger}
}

// RunOnce executes the job under RunTimeout and records job metrics.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()
	s.record(func(m *Metrics) { m.RecordJobRun("started") })
	s.logger.Info("digest job started")

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	items, err := s.job(ctx)
	elapsed := time.Since(start)
	s.record(func(m *Metrics) { m.RecordJobDuration(elapsed.Seconds()) })
	if err != nil {
		s.record(func(m *Metrics) { m.RecordJobRun("failure") })
		s.logger.Error("digest job failed",
			slog.String("error", redact.Error(err)),
			slog.Duration("duration", elapsed))
		return err
	}

	s.record(func(m *Metrics) {
		m.RecordJobRun("success")
		m.RecordItems(items)
		m.RecordLastSuccess()
	})
	s.logger.Info("digest job completed",
		slog.Int("items", items),
		slog.Duration("duration", elapsed))
	return nil
}

// Start schedules the job and blocks until ctx is cancelled. A run still in
// progress when the next tick fires is not overlapped.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(s.cfg.Location()),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	if _, err := c.AddFunc(s.cfg.CronSchedule, func() {
		_ = s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	c.Start()

	s.logger.Info("digest scheduler started",
		slog.String("schedule", s.cfg.CronSchedule),
		slog.String("timezone", s.cfg.Timezone))

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	s.logger.Info("digest scheduler stopped")
	return nil
}

func (s *Scheduler) record(fn func(m *Metrics)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}

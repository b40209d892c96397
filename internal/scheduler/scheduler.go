package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"solicitudes-backend/internal/config"
	"solicitudes-backend/internal/jobs"
	"solicitudes-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a scheduler and registers the jobs named in cfg.
func NewScheduler(jobRunner *jobs.JobRunner, cfg config.JobsConfig) (*Scheduler, error) {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if err := s.registerJobs(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerJobs(cfg config.JobsConfig) error {
	if _, err := s.cron.AddFunc(cfg.PendingBacklog, s.jobs.ReportPendingBacklog); err != nil {
		logger.Error("Failed to register job", "job", jobs.JobPendingBacklog, "error", err)
		return err
	}
	if _, err := s.cron.AddFunc(cfg.CounterAudit, s.jobs.AuditPendingCounters); err != nil {
		logger.Error("Failed to register job", "job", jobs.JobCounterAudit, "error", err)
		return err
	}

	logger.Info("All cron jobs registered successfully", "count", len(s.cron.Entries()))
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
}

// Stop gracefully stops the cron scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

package jobs

import (
	"context"
	"errors"
	"time"

	"solicitudes-backend/internal/logger"
	"solicitudes-backend/internal/metrics"
	"solicitudes-backend/internal/repository"
)

const (
	JobPendingBacklog = "pending-backlog"
	JobCounterAudit   = "counter-audit"
)

var errPanicked = errors.New("job panicked")

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	solicitudes repository.SolicitudRepository
	auditor     repository.CounterAuditor
	metrics     *metrics.Metrics
	timeout     time.Duration
}

// NewJobRunner creates a job runner. The counter audit is skipped when store
// keeps no pending counters.
func NewJobRunner(store repository.SolicitudRepository, m *metrics.Metrics, timeout time.Duration) *JobRunner {
	jr := &JobRunner{solicitudes: store, metrics: m, timeout: timeout}
	if auditor, ok := store.(repository.CounterAuditor); ok {
		jr.auditor = auditor
	}
	return jr
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) {
	log := logger.WithService("jobs").With("job", jobName)
	var err error
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
			jr.metrics.ObserveJob(jobName, errPanicked)
			return
		}
		jr.metrics.ObserveJob(jobName, err)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	log.Debug("Starting job")
	if err = jobFunc(ctx); err != nil {
		log.Error("Job failed", "error", err)
		return
	}
	log.Debug("Job completed")
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ReportPendingBacklog()
	jr.AuditPendingCounters()
}

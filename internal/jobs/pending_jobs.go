package jobs

import (
	"context"

	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/logger"
)

// ReportPendingBacklog publishes how many solicitudes wait for a decision and
// logs the count per responsable.
func (jr *JobRunner) ReportPendingBacklog() {
	jr.runWithRecovery(JobPendingBacklog, func(ctx context.Context) error {
		all, err := jr.solicitudes.List(ctx)
		if err != nil {
			return err
		}

		perResponsable := make(map[string]int)
		pending := 0
		for i := range all {
			if all[i].Estado != domain.EstadoPendiente {
				continue
			}
			pending++
			perResponsable[all[i].Responsable]++
		}

		jr.metrics.SetPending(pending)
		for responsable, n := range perResponsable {
			logger.Debug("Pending solicitudes awaiting decision", "responsable", responsable, "count", n)
		}
		logger.Info("Pending backlog", "pending", pending, "responsables", len(perResponsable))
		return nil
	})
}

// AuditPendingCounters compares the pending counters against storage. Drift is
// reported, not repaired: counters are rebuilt on the next startup.
func (jr *JobRunner) AuditPendingCounters() {
	if jr.auditor == nil {
		return
	}
	jr.runWithRecovery(JobCounterAudit, func(ctx context.Context) error {
		drift, err := jr.auditor.PendingCounterDrift(ctx)
		if err != nil {
			return err
		}
		jr.metrics.SetCounterDrift(len(drift))
		if len(drift) > 0 {
			logger.Warn("Pending counters out of sync", "solicitantes", drift)
		}
		return nil
	})
}

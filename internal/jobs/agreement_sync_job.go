package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AgreementSyncJobName is the name of the agreement reconciliation job
const AgreementSyncJobName = "agreement_sync"

// DefaultAgreementSyncTimeout bounds a single reconciliation sweep
const DefaultAgreementSyncTimeout = 5 * time.Minute

// AgreementStatusSyncer defines the interface for reconciling agreement
// statuses against the e-signature vendor. This interface allows the job to
// call the service without importing the service package directly.
type AgreementStatusSyncer interface {
	// SyncAgreementStatuses polls the vendor for every quote with an
	// unsettled agreement and applies any status changes. Missed webhooks
	// are picked up here.
	SyncAgreementStatuses(ctx context.Context) error
}

// AgreementSyncJob reconciles agreement statuses on a schedule, covering for
// webhook deliveries that never arrived.
type AgreementSyncJob struct {
	syncer  AgreementStatusSyncer
	logger  *zap.Logger
	timeout time.Duration
}

// NewAgreementSyncJob creates a new agreement reconciliation job.
// The timeout controls how long a single sweep is allowed to run.
func NewAgreementSyncJob(syncer AgreementStatusSyncer, logger *zap.Logger, timeout time.Duration) *AgreementSyncJob {
	if timeout <= 0 {
		timeout = DefaultAgreementSyncTimeout
	}
	return &AgreementSyncJob{
		syncer:  syncer,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one reconciliation sweep.
// This is called by the scheduler according to the cron expression.
func (j *AgreementSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting agreement reconciliation sweep")

	if err := j.syncer.SyncAgreementStatuses(ctx); err != nil {
		j.logger.Error("agreement reconciliation sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("agreement reconciliation sweep completed",
		zap.Duration("duration", time.Since(start)))
}

// RegisterAgreementSyncJob registers the agreement reconciliation job with
// the scheduler. The cronExpr should be a valid cron expression with seconds
// field (e.g., "0 */30 * * * *" for every 30 minutes).
func RegisterAgreementSyncJob(scheduler *Scheduler, syncer AgreementStatusSyncer, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewAgreementSyncJob(syncer, logger, timeout)
	return scheduler.AddJob(AgreementSyncJobName, cronExpr, job.Run)
}

package jobs

import (
	"context"
	"time"

	"robotique/eventmanager/internal/db/repositories"
	"robotique/eventmanager/internal/metrics"
)

// InitializeJobs initializes and starts all background jobs
func InitializeJobs(
	ctx context.Context,
	events *repositories.EventRepository,
	processor EventProcessor,
	audit *repositories.AuditLogRepo,
	metricsReg *metrics.MetricsRegistry,
	sweepInterval time.Duration,
) *PenaltySweepJob {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	sweepJob := NewPenaltySweepJob(events, processor, audit, metricsReg)
	sweepJob.Start(ctx, sweepInterval)

	return sweepJob
}

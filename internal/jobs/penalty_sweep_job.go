package jobs

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"robotique/eventmanager/internal/constants"
	"robotique/eventmanager/internal/db/repositories"
	"robotique/eventmanager/internal/metrics"
	"robotique/eventmanager/internal/models/entities"
	models "robotique/eventmanager/internal/models/gorm"
)

// EventProcessor sweeps one ended event behind the processed-flag
// compare-and-swap. Satisfied by services.EventService.
type EventProcessor interface {
	ProcessEnded(ctx context.Context, event *models.Event) (penaltiesAdded, noShowCount int, processed bool, err error)
}

// PenaltySweepJob is the recurring no-show sweep: every tick it finds
// ended, unprocessed events and runs the penalty engine once per
// event. At most one tick executes at a time per process; overlapping
// ticks are skipped, not queued.
type PenaltySweepJob struct {
	events     *repositories.EventRepository
	processor  EventProcessor
	audit      *repositories.AuditLogRepo
	metricsReg *metrics.MetricsRegistry

	running atomic.Bool
	cancel  context.CancelFunc

	// now is swappable for tests
	now func() time.Time
}

// NewPenaltySweepJob creates a new sweep job instance. audit and
// metricsReg may be nil (tests).
func NewPenaltySweepJob(
	events *repositories.EventRepository,
	processor EventProcessor,
	audit *repositories.AuditLogRepo,
	metricsReg *metrics.MetricsRegistry,
) *PenaltySweepJob {
	return &PenaltySweepJob{
		events:     events,
		processor:  processor,
		audit:      audit,
		metricsReg: metricsReg,
		now:        time.Now,
	}
}

// Run executes a single sweep tick. Failures on one event are logged
// and do not halt the tick; the event's flag stays false so the next
// tick retries it.
func (j *PenaltySweepJob) Run(ctx context.Context) error {
	if !j.running.CompareAndSwap(false, true) {
		log.Printf("[PenaltySweepJob] Previous tick still running, skipping")
		return nil
	}
	defer j.running.Store(false)

	start := j.now()

	ended, err := j.events.FindEndedUnprocessed(ctx, start)
	if err != nil {
		return fmt.Errorf("failed to query ended events: %w", err)
	}

	if j.metricsReg != nil {
		j.metricsReg.SweepRunsTotal.Inc()
	}

	if len(ended) == 0 {
		return nil
	}

	log.Printf("[PenaltySweepJob] Found %d ended unprocessed events", len(ended))

	totalEvents := 0
	totalPenalties := 0
	for i := range ended {
		event := &ended[i]

		added, noShows, processed, err := j.processor.ProcessEnded(ctx, event)
		if err != nil {
			log.Printf("[PenaltySweepJob] Error processing event %s (%s): %v", event.ID, event.Title, err)
			continue
		}
		if !processed {
			// Lost the CAS to a foreground caller between query and sweep.
			continue
		}

		totalEvents++
		totalPenalties += added

		if j.metricsReg != nil {
			j.metricsReg.SweepEventsProcessed.Inc()
			j.metricsReg.SweepNoShowsPenalized.Add(float64(added))
		}

		j.writeAudit(ctx, event, added, noShows)

		log.Printf("[PenaltySweepJob] Processed: %s - %d penalties for %d no-shows", event.Title, added, noShows)
	}

	if j.metricsReg != nil {
		j.metricsReg.SweepDuration.Observe(time.Since(start).Seconds())
	}

	log.Printf("[PenaltySweepJob] Completed tick in %s: %d events, %d total penalties",
		time.Since(start).Truncate(time.Millisecond), totalEvents, totalPenalties)
	return nil
}

func (j *PenaltySweepJob) writeAudit(ctx context.Context, event *models.Event, added, noShows int) {
	if j.audit == nil {
		return
	}
	entry := &entities.AuditLog{
		Action:        constants.ActionSchedulerRun,
		TargetEventID: &event.ID,
		Details:       fmt.Sprintf("Auto-processed event '%s': %d penalties for %d no-shows", event.Title, added, noShows),
	}
	if err := j.audit.Insert(ctx, entry); err != nil {
		log.Printf("[PenaltySweepJob] Failed to write audit entry for event %s: %v", event.ID, err)
	}
}

// RunScheduled runs the sweep on a fixed interval until ctx is
// cancelled.
func (j *PenaltySweepJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := j.Run(ctx); err != nil {
		log.Printf("[PenaltySweepJob] Error in initial run: %v", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				log.Printf("[PenaltySweepJob] Error in scheduled run: %v", err)
			}
		case <-ctx.Done():
			log.Printf("[PenaltySweepJob] Shutting down scheduled sweep")
			return
		}
	}
}

// Start launches the scheduled sweep in the background. Stop cancels
// it; both exist so tests and main own the job's lifecycle explicitly.
func (j *PenaltySweepJob) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	go j.RunScheduled(ctx, interval)
}

// Stop cancels a Start-ed sweep.
func (j *PenaltySweepJob) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
}

package workers

import (
	"context"
	"log"
	"time"

	"github.com/teamboard/schedule-engine/internal/core/calendar"
)

const (
	defaultQueueSize = 100
	jobTimeout       = 30 * time.Second
)

// LayoutRefresher drops and rebuilds cached month layouts.
type LayoutRefresher interface {
	Invalidate(ctx context.Context, teamID string, months ...calendar.YearMonth) error
	Warm(ctx context.Context, teamID string, months ...calendar.YearMonth) error
}

type LayoutJob struct {
	TeamID string
	Months []calendar.YearMonth
}

type LayoutWorker struct {
	layouts LayoutRefresher
	jobs    chan LayoutJob
}

func NewLayoutWorker(layouts LayoutRefresher) *LayoutWorker {
	return &LayoutWorker{
		layouts: layouts,
		jobs:    make(chan LayoutJob, defaultQueueSize),
	}
}

func (w *LayoutWorker) Start(ctx context.Context) {
	go func() {
		log.Println("[WORKER] Layout worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("[WORKER] Layout worker shutting down...")
				return
			}
		}
	}()
}

// Enqueue never blocks: when the queue is full the job is dropped and the
// stale layouts are caught by the fingerprint check on the next read.
func (w *LayoutWorker) Enqueue(teamID string, months ...calendar.YearMonth) {
	if len(months) == 0 {
		return
	}

	job := LayoutJob{TeamID: teamID, Months: append([]calendar.YearMonth(nil), months...)}
	select {
	case w.jobs <- job:
	default:
		log.Printf("[WORKER] Layout queue full! Dropping job for team %s (%d months)", teamID, len(months))
	}
}

func (w *LayoutWorker) processJob(ctx context.Context, job LayoutJob) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	if err := w.layouts.Invalidate(ctx, job.TeamID, job.Months...); err != nil {
		log.Printf("[WORKER] Failed to invalidate layouts for team %s: %v", job.TeamID, err)
	}

	if err := w.layouts.Warm(ctx, job.TeamID, job.Months...); err != nil {
		log.Printf("[WORKER] Failed to warm layouts for team %s: %v", job.TeamID, err)
		return
	}

	log.Printf("[WORKER] Refreshed %d month layouts for team %s", len(job.Months), job.TeamID)
}

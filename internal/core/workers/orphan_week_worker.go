package workers

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
)

const (
	DefaultOrphanRetries    = 5
	DefaultOrphanRetryDelay = 2 * time.Second
	orphanQueueSize         = 100
)

type WeekDeleter interface {
	DeleteWeek(ctx context.Context, id string) error
}

type OrphanJob struct {
	WeekID  string
	Attempt int
}

// OrphanWeekWorker deletes weeks that were stored without their days and
// could not be compensated inline. Failed deletes are retried with a fixed
// delay up to maxRetries attempts.
type OrphanWeekWorker struct {
	repo       WeekDeleter
	jobs       chan OrphanJob
	maxRetries int
	retryDelay time.Duration

	mu      sync.Mutex
	stopped bool
}

func NewOrphanWeekWorker(repo WeekDeleter, maxRetries int, retryDelay time.Duration) *OrphanWeekWorker {
	if maxRetries < 1 {
		maxRetries = DefaultOrphanRetries
	}
	if retryDelay <= 0 {
		retryDelay = DefaultOrphanRetryDelay
	}
	return &OrphanWeekWorker{
		repo:       repo,
		jobs:       make(chan OrphanJob, orphanQueueSize),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

func (w *OrphanWeekWorker) Start(ctx context.Context) {
	go func() {
		log.Println("[WORKER] Orphan week worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.mu.Lock()
				w.stopped = true
				w.mu.Unlock()
				log.Printf("[WORKER] Orphan week worker shutting down, %d jobs left in queue", len(w.jobs))
				return
			}
		}
	}()
}

func (w *OrphanWeekWorker) Enqueue(weekID string) {
	w.push(OrphanJob{WeekID: weekID})
}

func (w *OrphanWeekWorker) push(job OrphanJob) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		log.Printf("[WORKER] Worker stopped, dropping orphan week %s", job.WeekID)
		return
	}

	select {
	case w.jobs <- job:
	default:
		log.Printf("[WORKER] Orphan queue full! Dropping job for week %s", job.WeekID)
	}
}

// processJob reports whether the week is gone after this attempt.
func (w *OrphanWeekWorker) processJob(ctx context.Context, job OrphanJob) bool {
	err := w.repo.DeleteWeek(ctx, job.WeekID)
	if err == nil || errors.Is(err, domain.ErrWeekNotFound) {
		log.Printf("[WORKER] Orphan week %s removed", job.WeekID)
		return true
	}

	job.Attempt++
	if job.Attempt >= w.maxRetries {
		log.Printf("[WORKER] Giving up on orphan week %s after %d attempts: %v", job.WeekID, job.Attempt, err)
		return false
	}

	log.Printf("[WORKER] Failed to delete orphan week %s (attempt %d/%d): %v", job.WeekID, job.Attempt, w.maxRetries, err)
	time.AfterFunc(w.retryDelay, func() { w.push(job) })
	return false
}

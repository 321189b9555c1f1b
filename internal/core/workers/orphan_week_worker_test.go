package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
)

// flakyDeleter fails the first failures calls, then succeeds.
type flakyDeleter struct {
	mu       sync.Mutex
	failures int
	calls    int
	err      error
}

func (d *flakyDeleter) DeleteWeek(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.calls <= d.failures {
		return d.err
	}
	return nil
}

func (d *flakyDeleter) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func TestOrphanWeekWorker_ProcessJob(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		err     error
		removed bool
	}{
		{"Delete succeeds", nil, true},
		{"Week already gone", domain.ErrWeekNotFound, true},
		{"Store failure", domain.NewStoreError("delete week", errors.New("down")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &flakyDeleter{failures: 1, err: tt.err}
			w := NewOrphanWeekWorker(repo, 1, time.Millisecond)

			assert.Equal(t, tt.removed, w.processJob(ctx, OrphanJob{WeekID: "w1"}))
			assert.Equal(t, 1, repo.Calls())
		})
	}
}

func TestOrphanWeekWorker_RetriesUntilSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &flakyDeleter{failures: 2, err: errors.New("connection refused")}
	w := NewOrphanWeekWorker(repo, 5, 10*time.Millisecond)
	w.Start(ctx)

	w.Enqueue("w1")

	assert.Eventually(t, func() bool { return repo.Calls() == 3 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, repo.Calls(), "no retries after success")
}

func TestOrphanWeekWorker_GivesUp(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &flakyDeleter{failures: 100, err: errors.New("connection refused")}
	w := NewOrphanWeekWorker(repo, 3, 5*time.Millisecond)
	w.Start(ctx)

	w.Enqueue("w1")

	assert.Eventually(t, func() bool { return repo.Calls() == 3 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, repo.Calls(), "bounded number of attempts")
}

func TestOrphanWeekWorker_DropsWhenFull(t *testing.T) {
	w := NewOrphanWeekWorker(&flakyDeleter{}, 1, time.Millisecond)

	for i := 0; i < orphanQueueSize+10; i++ {
		w.Enqueue("w")
	}
	assert.Len(t, w.jobs, orphanQueueSize)
}

func TestOrphanWeekWorker_DropsAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewOrphanWeekWorker(&flakyDeleter{}, 1, time.Millisecond)
	w.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.stopped
	}, time.Second, 5*time.Millisecond)

	w.Enqueue("late")
	assert.Len(t, w.jobs, 0)
}

func TestNewOrphanWeekWorker_Defaults(t *testing.T) {
	w := NewOrphanWeekWorker(&flakyDeleter{}, 0, 0)
	assert.Equal(t, DefaultOrphanRetries, w.maxRetries)
	assert.Equal(t, DefaultOrphanRetryDelay, w.retryDelay)
}

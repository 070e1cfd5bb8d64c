package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"neetmentor-backend/internal/models"
)

type stubQueue struct {
	mu        sync.Mutex
	claimed   map[string]bool
	requeued  []*models.EmailJob
	delays    []time.Duration
	claimFail bool
}

func newStubQueue() *stubQueue {
	return &stubQueue{claimed: make(map[string]bool)}
}

func (q *stubQueue) Pop(ctx context.Context, timeout time.Duration) (*models.EmailJob, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (q *stubQueue) Claim(ctx context.Context, job *models.EmailJob) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.claimFail {
		return false, errors.New("redis down")
	}
	key := fmt.Sprintf("%s:%d", job.ID, job.RetryCount)
	if q.claimed[key] {
		return false, nil
	}
	q.claimed[key] = true
	return true, nil
}

func (q *stubQueue) RequeueAfter(job *models.EmailJob, delay time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.requeued = append(q.requeued, job)
	q.delays = append(q.delays, delay)
}

type stubDeliverer struct {
	err   error
	calls int
}

func (d *stubDeliverer) Deliver(ctx context.Context, job *models.EmailJob) error {
	d.calls++
	return d.err
}

func newJob() *models.EmailJob {
	return &models.EmailJob{ID: uuid.New(), Kind: models.EmailKindOTP, To: "a@b.co", MaxRetries: 3}
}

func TestPool_DeliversOnce(t *testing.T) {
	q := newStubQueue()
	d := &stubDeliverer{}
	p := NewPool(q, d, 1)

	job := newJob()
	p.process(0, job)
	p.process(0, job)

	assert.Equal(t, 1, d.calls, "second pop of the same attempt is skipped by the lock")
	assert.Empty(t, q.requeued)
}

func TestPool_RetriesWithBackoffThenGivesUp(t *testing.T) {
	q := newStubQueue()
	d := &stubDeliverer{err: errors.New("smtp timeout")}
	p := NewPool(q, d, 1)

	job := newJob()
	p.process(0, job)
	p.process(0, job)
	p.process(0, job)

	assert.Equal(t, 3, d.calls)
	assert.Equal(t, 3, job.RetryCount)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, q.delays)
}

func TestPool_SkipsWhenClaimFails(t *testing.T) {
	q := newStubQueue()
	q.claimFail = true
	d := &stubDeliverer{}
	NewPool(q, d, 1).process(0, newJob())
	assert.Zero(t, d.calls)
}

func TestPool_StopWaitsForWorkers(t *testing.T) {
	p := NewPool(newStubQueue(), &stubDeliverer{}, 3)
	p.Start()

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop")
	}
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, Backoff(1))
	assert.Equal(t, 4*time.Second, Backoff(2))
	assert.Equal(t, 8*time.Second, Backoff(3))
}

package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"neetmentor-backend/internal/models"
)

const (
	popTimeout     = 5 * time.Second
	deliverTimeout = 30 * time.Second
)

type jobQueue interface {
	Pop(ctx context.Context, timeout time.Duration) (*models.EmailJob, error)
	Claim(ctx context.Context, job *models.EmailJob) (bool, error)
	RequeueAfter(job *models.EmailJob, delay time.Duration)
}

type deliverer interface {
	Deliver(ctx context.Context, job *models.EmailJob) error
}

// Pool drains the outbound email queue. Failed sends are retried with
// exponential backoff until the job's MaxRetries is reached.
type Pool struct {
	queue       jobQueue
	email       deliverer
	workerCount int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPool(queue jobQueue, email deliverer, workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		queue:       queue,
		email:       email,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	log.Info().Int("workers", p.workerCount).Msg("email worker pool started")
}

// Stop signals every worker and waits for in-flight sends to finish.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		if p.ctx.Err() != nil {
			log.Debug().Int("worker", id).Msg("email worker shutting down")
			return
		}

		job, err := p.queue.Pop(p.ctx, popTimeout)
		if err != nil {
			if p.ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("email queue pop failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if job == nil {
			continue
		}

		p.process(id, job)
	}
}

func (p *Pool) process(workerID int, job *models.EmailJob) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	locked, err := p.queue.Claim(ctx, job)
	if err != nil || !locked {
		return
	}

	logger := log.With().Int("worker", workerID).Str("job_id", job.ID.String()).Str("kind", job.Kind).Logger()

	if err := p.email.Deliver(ctx, job); err != nil {
		p.handleFailure(job, err)
		return
	}
	logger.Info().Str("to", job.To).Msg("email delivered")
}

func (p *Pool) handleFailure(job *models.EmailJob, err error) {
	job.RetryCount++
	logger := log.With().Str("job_id", job.ID.String()).Str("kind", job.Kind).Int("attempt", job.RetryCount).Logger()

	if job.RetryCount < job.MaxRetries {
		backoff := Backoff(job.RetryCount)
		logger.Warn().Err(err).Dur("backoff", backoff).Msg("email delivery failed, retrying")
		p.queue.RequeueAfter(job, backoff)
		return
	}

	logger.Error().Err(err).Str("to", job.To).Msg("email delivery failed permanently")
}

// Backoff is the delay before retry attempt n: 2s, 4s, 8s, ...
func Backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"neetmentor-backend/internal/models"
)

const (
	EmailQueueName    = "queue:email"
	emailLockPrefix   = "email_lock:"
	emailLockTTL      = 10 * time.Minute
	defaultMaxRetries = 3
)

// EmailQueue is the Redis list outbound mail flows through. Producers push
// jobs; the worker pool pops them and claims each with a lock key so a job
// re-pushed during a retry is processed once.
type EmailQueue struct {
	redis *redis.Client
}

func NewEmailQueue(redisClient *redis.Client) *EmailQueue {
	return &EmailQueue{redis: redisClient}
}

func (q *EmailQueue) Enqueue(ctx context.Context, job *models.EmailJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = defaultMaxRetries
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	return q.push(ctx, job)
}

func (q *EmailQueue) push(ctx context.Context, job *models.EmailJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode email job: %w", err)
	}
	return q.redis.LPush(ctx, EmailQueueName, string(data)).Err()
}

// Pop blocks up to timeout for the next job. It returns (nil, nil) on timeout.
func (q *EmailQueue) Pop(ctx context.Context, timeout time.Duration) (*models.EmailJob, error) {
	result, err := q.redis.BLPop(ctx, timeout, EmailQueueName).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}

	var job models.EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to parse email job: %w", err)
	}
	return &job, nil
}

// Claim takes the per-attempt processing lock. False means another worker
// already has this attempt.
func (q *EmailQueue) Claim(ctx context.Context, job *models.EmailJob) (bool, error) {
	key := fmt.Sprintf("%s%s:%d", emailLockPrefix, job.ID, job.RetryCount)
	return q.redis.SetNX(ctx, key, "1", emailLockTTL).Result()
}

// RequeueAfter pushes job back once delay has passed.
func (q *EmailQueue) RequeueAfter(job *models.EmailJob, delay time.Duration) {
	time.AfterFunc(delay, func() {
		q.push(context.Background(), job)
	})
}

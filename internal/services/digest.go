package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"neetmentor-backend/internal/analytics"
	"neetmentor-backend/internal/repository"
)

const (
	digestSentPrefix = "digest_sent:"
	digestSentTTL    = 8 * 24 * time.Hour
	digestRunTimeout = 30 * time.Minute
)

type digestRecipients interface {
	ListDigestRecipients(ctx context.Context) ([]repository.DigestRecipient, error)
}

type snapshotSource interface {
	Snapshot(ctx context.Context, userID uuid.UUID) (*analytics.Summary, analytics.Score, error)
}

type digestMailer interface {
	QueueDigest(ctx context.Context, to, firstName string, stats DigestStats) error
}

// DigestScheduler emails every verified user a weekly analytics snapshot.
type DigestScheduler struct {
	scheduler *gocron.Scheduler
	users     digestRecipients
	reports   snapshotSource
	email     digestMailer
	redis     *redis.Client
	cronExpr  string
	loc       *time.Location
}

func NewDigestScheduler(
	users digestRecipients,
	reports snapshotSource,
	email digestMailer,
	redisClient *redis.Client,
	cronExpr string,
	loc *time.Location,
) *DigestScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &DigestScheduler{
		scheduler: gocron.NewScheduler(loc),
		users:     users,
		reports:   reports,
		email:     email,
		redis:     redisClient,
		cronExpr:  cronExpr,
		loc:       loc,
	}
}

func (s *DigestScheduler) Start() error {
	s.scheduler.SingletonModeAll()
	_, err := s.scheduler.Cron(s.cronExpr).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), digestRunTimeout)
		defer cancel()
		s.RunOnce(ctx, time.Now().In(s.loc))
	})
	if err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", s.cronExpr, err)
	}

	s.scheduler.StartAsync()
	log.Info().Str("cron", s.cronExpr).Str("tz", s.loc.String()).Msg("weekly digest scheduler started")
	return nil
}

func (s *DigestScheduler) Stop() {
	s.scheduler.Stop()
}

// RunOnce queues a digest for every recipient not yet sent one this ISO
// week and returns how many were queued.
func (s *DigestScheduler) RunOnce(ctx context.Context, now time.Time) int {
	recipients, err := s.users.ListDigestRecipients(ctx)
	if err != nil {
		log.Error().Err(err).Msg("weekly digest: failed to list recipients")
		return 0
	}

	week := digestWeek(now)
	queued := 0
	for _, rec := range recipients {
		if ctx.Err() != nil {
			break
		}

		summary, score, err := s.reports.Snapshot(ctx, rec.ID)
		if err != nil {
			log.Error().Err(err).Str("user_id", rec.ID.String()).Msg("weekly digest: failed to build report")
			continue
		}
		stats := digestStats(summary, score)
		if stats.QuestionsSolved == 0 && stats.StudyHours == 0 {
			continue
		}

		key := digestSentPrefix + rec.ID.String() + ":" + week
		first, err := s.redis.SetNX(ctx, key, "1", digestSentTTL).Result()
		if err != nil {
			log.Error().Err(err).Str("user_id", rec.ID.String()).Msg("weekly digest: dedupe check failed")
			continue
		}
		if !first {
			continue
		}

		if err := s.email.QueueDigest(ctx, rec.Email, rec.FirstName, stats); err != nil {
			s.redis.Del(ctx, key)
			log.Error().Err(err).Str("user_id", rec.ID.String()).Msg("weekly digest: failed to queue email")
			continue
		}
		queued++
	}

	log.Info().Int("queued", queued).Int("recipients", len(recipients)).Str("week", week).Msg("weekly digest run finished")
	return queued
}

func digestWeek(now time.Time) string {
	year, week := now.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func digestStats(s *analytics.Summary, score analytics.Score) DigestStats {
	return DigestStats{
		QuestionsSolved:   s.Attempts.TotalQuestions,
		Accuracy:          int(math.RoundToEven(s.Accuracy())),
		StudyHours:        s.StudyHours(),
		IntelligenceScore: score.Value,
		SyllabusPercent:   int(math.RoundToEven(s.SyllabusPercent())),
	}
}

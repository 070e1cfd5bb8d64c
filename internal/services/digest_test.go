package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neetmentor-backend/internal/analytics"
	"neetmentor-backend/internal/repository"
)

type stubRecipients struct {
	list []repository.DigestRecipient
	err  error
}

func (s *stubRecipients) ListDigestRecipients(ctx context.Context) ([]repository.DigestRecipient, error) {
	return s.list, s.err
}

type stubSnapshots map[uuid.UUID]*analytics.Summary

func (s stubSnapshots) Snapshot(ctx context.Context, userID uuid.UUID) (*analytics.Summary, analytics.Score, error) {
	summary, ok := s[userID]
	if !ok {
		return nil, analytics.Score{}, errors.New("no data")
	}
	return summary, analytics.Score{Value: 812}, nil
}

type digestCall struct {
	to    string
	stats DigestStats
}

type stubDigestMailer struct {
	calls []digestCall
	err   error
}

func (m *stubDigestMailer) QueueDigest(ctx context.Context, to, firstName string, stats DigestStats) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, digestCall{to: to, stats: stats})
	return nil
}

func newDigestFixture(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestDigestRunOnce(t *testing.T) {
	mr, client := newDigestFixture(t)

	active := repository.DigestRecipient{ID: uuid.New(), Email: "active@example.com", FirstName: "Asha"}
	idle := repository.DigestRecipient{ID: uuid.New(), Email: "idle@example.com"}
	broken := repository.DigestRecipient{ID: uuid.New(), Email: "broken@example.com"}

	snapshots := stubSnapshots{
		active.ID: {
			Attempts:     analytics.AttemptTotals{TotalQuestions: 40, CorrectAnswers: 30},
			TotalMinutes: 150,
			Syllabus:     analytics.TopicCount{Total: 8, Completed: 2},
		},
		idle.ID: {},
	}
	mailer := &stubDigestMailer{}
	sched := NewDigestScheduler(&stubRecipients{list: []repository.DigestRecipient{active, idle, broken}},
		snapshots, mailer, client, "0 9 * * 0", nil)

	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, sched.RunOnce(context.Background(), now))
	require.Len(t, mailer.calls, 1)
	assert.Equal(t, "active@example.com", mailer.calls[0].to)
	assert.Equal(t, DigestStats{
		QuestionsSolved:   40,
		Accuracy:          75,
		StudyHours:        2.5,
		IntelligenceScore: 812,
		SyllabusPercent:   25,
	}, mailer.calls[0].stats)
	assert.True(t, mr.Exists("digest_sent:"+active.ID.String()+":2026-W10"))

	// same ISO week: nothing new
	assert.Equal(t, 0, sched.RunOnce(context.Background(), now.Add(24*time.Hour)))
	assert.Len(t, mailer.calls, 1)

	// next week sends again
	assert.Equal(t, 1, sched.RunOnce(context.Background(), now.Add(7*24*time.Hour)))
}

func TestDigestRunOnceReleasesKeyOnQueueFailure(t *testing.T) {
	mr, client := newDigestFixture(t)

	rec := repository.DigestRecipient{ID: uuid.New(), Email: "a@example.com"}
	snapshots := stubSnapshots{rec.ID: {Attempts: analytics.AttemptTotals{TotalQuestions: 5, CorrectAnswers: 5}}}
	mailer := &stubDigestMailer{err: errors.New("queue down")}
	sched := NewDigestScheduler(&stubRecipients{list: []repository.DigestRecipient{rec}}, snapshots, mailer, client, "0 9 * * 0", time.UTC)

	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, sched.RunOnce(context.Background(), now))
	assert.False(t, mr.Exists("digest_sent:"+rec.ID.String()+":2026-W10"))

	mailer.err = nil
	assert.Equal(t, 1, sched.RunOnce(context.Background(), now))
}

func TestDigestRunOnceRecipientError(t *testing.T) {
	_, client := newDigestFixture(t)
	sched := NewDigestScheduler(&stubRecipients{err: errors.New("db down")}, stubSnapshots{}, &stubDigestMailer{}, client, "0 9 * * 0", nil)

	assert.Equal(t, 0, sched.RunOnce(context.Background(), time.Now()))
}

func TestDigestStartRejectsBadCron(t *testing.T) {
	_, client := newDigestFixture(t)
	sched := NewDigestScheduler(&stubRecipients{}, stubSnapshots{}, &stubDigestMailer{}, client, "not a cron", nil)

	assert.Error(t, sched.Start())
	sched.Stop()
}

func TestDigestWeek(t *testing.T) {
	assert.Equal(t, "2026-W01", digestWeek(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-W53", digestWeek(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}

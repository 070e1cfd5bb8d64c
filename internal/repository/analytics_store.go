package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"neetmentor-backend/internal/analytics"
)

// AnalyticsStore is the read side the analytics aggregator runs against.
// Sums come back as zero when the user has no rows.
type AnalyticsStore struct {
	pool    *pgxpool.Pool
	storage *StorageRepo
}

func NewAnalyticsStore(pool *pgxpool.Pool, storage *StorageRepo) *AnalyticsStore {
	return &AnalyticsStore{pool: pool, storage: storage}
}

func (s *AnalyticsStore) AttemptRows(ctx context.Context, userID uuid.UUID) ([]analytics.AttemptRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT quiz_name, subject, total_questions, correct_answers
		FROM quiz_attempts WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]analytics.AttemptRow, 0)
	for rows.Next() {
		var row analytics.AttemptRow
		if err := rows.Scan(&row.QuizName, &row.Subject, &row.TotalQuestions, &row.CorrectAnswers); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *AnalyticsStore) TotalStudyMinutes(ctx context.Context, userID uuid.UUID) (int, error) {
	var minutes int
	err := s.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(minutes), 0) FROM study_logs WHERE user_id = $1", userID).Scan(&minutes)
	return minutes, err
}

// StudyMinutesOn sums minutes logged on the calendar date of day, in day's
// own location.
func (s *AnalyticsStore) StudyMinutesOn(ctx context.Context, userID uuid.UUID, day time.Time) (int, error) {
	var minutes int
	err := s.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(minutes), 0) FROM study_logs WHERE user_id = $1 AND date = $2::date",
		userID, day.Format("2006-01-02")).Scan(&minutes)
	return minutes, err
}

func (s *AnalyticsStore) StorageBlob(ctx context.Context, userID uuid.UUID) (map[string]any, error) {
	raw, err := s.storage.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	var blob any
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, fmt.Errorf("failed to decode storage blob: %w", err)
	}
	obj, ok := blob.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return obj, nil
}

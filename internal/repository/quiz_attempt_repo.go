package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"neetmentor-backend/internal/models"
)

type QuizAttemptRepo struct {
	pool *pgxpool.Pool
}

func NewQuizAttemptRepo(pool *pgxpool.Pool) *QuizAttemptRepo {
	return &QuizAttemptRepo{pool: pool}
}

const quizAttemptColumns = `id, user_id, quiz_name, category, subject, score, total_questions,
	correct_answers, incorrect_answers, time_taken, mistake_data, created_at`

func scanQuizAttempt(row interface{ Scan(dest ...any) error }) (*models.QuizAttempt, error) {
	a := &models.QuizAttempt{}
	err := row.Scan(
		&a.ID, &a.UserID, &a.QuizName, &a.Category, &a.Subject, &a.Score, &a.TotalQuestions,
		&a.CorrectAnswers, &a.IncorrectAnswers, &a.TimeTaken, &a.MistakeData, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *QuizAttemptRepo) Create(ctx context.Context, a *models.QuizAttempt) error {
	mistakes := a.MistakeData
	if len(mistakes) == 0 {
		mistakes = []byte("[]")
	}

	query := `INSERT INTO quiz_attempts
		(user_id, quiz_name, category, subject, score, total_questions, correct_answers, incorrect_answers, time_taken, mistake_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb)
		RETURNING id, mistake_data, created_at`

	return r.pool.QueryRow(ctx, query,
		a.UserID, a.QuizName, a.Category, a.Subject, a.Score, a.TotalQuestions,
		a.CorrectAnswers, a.IncorrectAnswers, a.TimeTaken, string(mistakes),
	).Scan(&a.ID, &a.MistakeData, &a.CreatedAt)
}

func (r *QuizAttemptRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.QuizAttempt, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+quizAttemptColumns+` FROM quiz_attempts WHERE id = $1 AND user_id = $2`, id, userID)
	return scanQuizAttempt(row)
}

func (r *QuizAttemptRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.QuizAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizAttemptColumns+` FROM quiz_attempts WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]*models.QuizAttempt, 0)
	for rows.Next() {
		a, err := scanQuizAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// Delete reports whether a row owned by userID was removed.
func (r *QuizAttemptRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM quiz_attempts WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"neetmentor-backend/internal/models"
)

// CatalogRepo serves the read-only subject/topic/question bank and records
// answers submitted against it.
type CatalogRepo struct {
	pool *pgxpool.Pool
}

func NewCatalogRepo(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

func (r *CatalogRepo) ListSubjects(ctx context.Context) ([]*models.Subject, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM subjects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := make([]*models.Subject, 0)
	for rows.Next() {
		s := &models.Subject{}
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// ListTopics filters by subject id when given, else by case-insensitive
// subject name when given, else returns every topic.
func (r *CatalogRepo) ListTopics(ctx context.Context, subjectID *int64, subjectName string) ([]*models.Topic, error) {
	var (
		rows pgx.Rows
		err  error
	)
	switch {
	case subjectID != nil:
		rows, err = r.pool.Query(ctx, `SELECT id, subject_id, name FROM topics WHERE subject_id = $1 ORDER BY id`, *subjectID)
	case subjectName != "":
		rows, err = r.pool.Query(ctx, `
			SELECT t.id, t.subject_id, t.name
			FROM topics t
			JOIN subjects s ON s.id = t.subject_id
			WHERE LOWER(s.name) = LOWER($1)
			ORDER BY t.id`, subjectName)
	default:
		rows, err = r.pool.Query(ctx, `SELECT id, subject_id, name FROM topics ORDER BY id`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	topics := make([]*models.Topic, 0)
	for rows.Next() {
		t := &models.Topic{}
		if err := rows.Scan(&t.ID, &t.SubjectID, &t.Name); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

const questionColumns = `id, topic_id, content, options, correct_option, difficulty, explanation`

func scanQuestion(row interface{ Scan(dest ...any) error }) (*models.Question, error) {
	q := &models.Question{}
	if err := row.Scan(&q.ID, &q.TopicID, &q.Content, &q.Options, &q.CorrectOption, &q.Difficulty, &q.Explanation); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *CatalogRepo) ListQuestions(ctx context.Context, topicID int64) ([]*models.Question, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions WHERE topic_id = $1 ORDER BY id`, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]*models.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *CatalogRepo) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
}

// RecordAnswer stores the answer and, on the user's first correct answer to
// the question, bumps topic progress. Everything runs in one transaction.
func (r *CatalogRepo) RecordAnswer(ctx context.Context, userID uuid.UUID, q *models.Question, selected int) (bool, error) {
	isCorrect := selected == q.CorrectOption

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin answer transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_answers (user_id, question_id, selected_option, is_correct)
		VALUES ($1, $2, $3, $4)`, userID, q.ID, selected, isCorrect); err != nil {
		return false, fmt.Errorf("failed to record answer: %w", err)
	}

	if isCorrect {
		var correctCount int
		if err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM user_answers
			WHERE user_id = $1 AND question_id = $2 AND is_correct = TRUE`, userID, q.ID).Scan(&correctCount); err != nil {
			return false, fmt.Errorf("failed to count correct answers: %w", err)
		}

		if correctCount == 1 {
			if _, err := tx.Exec(ctx, `
				INSERT INTO user_progress (user_id, topic_id, questions_solved, percentage, last_updated)
				VALUES ($1, $2, 1, 0, NOW())
				ON CONFLICT (user_id, topic_id) DO UPDATE
				SET questions_solved = user_progress.questions_solved + 1,
					last_updated = NOW()`, userID, q.TopicID); err != nil {
				return false, fmt.Errorf("failed to update progress: %w", err)
			}

			if _, err := tx.Exec(ctx, `
				UPDATE user_progress
				SET percentage = CASE
					WHEN t.total = 0 THEN 0
					ELSE questions_solved::float8 * 100 / t.total
				END
				FROM (SELECT COUNT(*) AS total FROM questions WHERE topic_id = $2) t
				WHERE user_id = $1 AND topic_id = $2`, userID, q.TopicID); err != nil {
				return false, fmt.Errorf("failed to update progress percentage: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit answer: %w", err)
	}
	return isCorrect, nil
}

func (r *CatalogRepo) ListProgress(ctx context.Context, userID uuid.UUID) ([]*models.UserProgress, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, topic_id, questions_solved, percentage, last_updated
		FROM user_progress WHERE user_id = $1 ORDER BY topic_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	progress := make([]*models.UserProgress, 0)
	for rows.Next() {
		p := &models.UserProgress{}
		if err := rows.Scan(&p.UserID, &p.TopicID, &p.QuestionsSolved, &p.Percentage, &p.LastUpdated); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}

// ─── Seeding ───

func (r *CatalogRepo) UpsertSubject(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO subjects (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, name).Scan(&id)
	return id, err
}

func (r *CatalogRepo) UpsertTopic(ctx context.Context, subjectID int64, name string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO topics (subject_id, name) VALUES ($1, $2)
		ON CONFLICT (subject_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, subjectID, name).Scan(&id)
	return id, err
}

// CreateQuestion inserts q unless a question with the same content already
// exists in the topic. It reports whether a row was inserted.
func (r *CatalogRepo) CreateQuestion(ctx context.Context, q *models.Question) (bool, error) {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return false, fmt.Errorf("failed to encode options: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		INSERT INTO questions (topic_id, content, options, correct_option, difficulty, explanation)
		SELECT $1, $2, $3::jsonb, $4, $5, $6
		WHERE NOT EXISTS (SELECT 1 FROM questions WHERE topic_id = $1 AND content = $2)
		RETURNING id`,
		q.TopicID, q.Content, string(options), q.CorrectOption, q.Difficulty, q.Explanation,
	).Scan(&q.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

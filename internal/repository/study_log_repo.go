package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"neetmentor-backend/internal/models"
)

type StudyLogRepo struct {
	pool *pgxpool.Pool
}

func NewStudyLogRepo(pool *pgxpool.Pool) *StudyLogRepo {
	return &StudyLogRepo{pool: pool}
}

const studyLogColumns = `id, user_id, date, minutes, subject, topic, created_at`

func scanStudyLog(row interface{ Scan(dest ...any) error }) (*models.StudyLog, error) {
	l := &models.StudyLog{}
	var day time.Time
	if err := row.Scan(&l.ID, &l.UserID, &day, &l.Minutes, &l.Subject, &l.Topic, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.Date = models.NewDate(day)
	return l, nil
}

func (r *StudyLogRepo) Create(ctx context.Context, l *models.StudyLog) error {
	query := `INSERT INTO study_logs (user_id, date, minutes, subject, topic)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		l.UserID, l.Date.Time, l.Minutes, l.Subject, l.Topic,
	).Scan(&l.ID, &l.CreatedAt)
}

func (r *StudyLogRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.StudyLog, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+studyLogColumns+` FROM study_logs WHERE id = $1 AND user_id = $2`, id, userID)
	return scanStudyLog(row)
}

func (r *StudyLogRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.StudyLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+studyLogColumns+` FROM study_logs WHERE user_id = $1 ORDER BY date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]*models.StudyLog, 0)
	for rows.Next() {
		l, err := scanStudyLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *StudyLogRepo) Update(ctx context.Context, l *models.StudyLog) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE study_logs SET date = $1, minutes = $2, subject = $3, topic = $4
		WHERE id = $5 AND user_id = $6`,
		l.Date.Time, l.Minutes, l.Subject, l.Topic, l.ID, l.UserID)
	return err
}

func (r *StudyLogRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM study_logs WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"neetmentor-backend/internal/models"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

const taskColumns = `id, user_id, subject, topic, time_goal, questions_goal, priority, is_done, created_at`

func scanTask(row interface{ Scan(dest ...any) error }) (*models.StudyTask, error) {
	t := &models.StudyTask{}
	err := row.Scan(&t.ID, &t.UserID, &t.Subject, &t.Topic, &t.TimeGoal, &t.QuestionsGoal,
		&t.Priority, &t.IsDone, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TaskRepo) Create(ctx context.Context, t *models.StudyTask) error {
	if t.Priority == "" {
		t.Priority = models.DefaultTaskPriority
	}
	query := `INSERT INTO study_tasks (user_id, subject, topic, time_goal, questions_goal, priority, is_done)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		t.UserID, t.Subject, t.Topic, t.TimeGoal, t.QuestionsGoal, t.Priority, t.IsDone,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *TaskRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.StudyTask, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM study_tasks WHERE id = $1 AND user_id = $2`, id, userID)
	return scanTask(row)
}

// ListByUser returns the user's tasks newest first. The planner and the
// task history read the same ordering.
func (r *TaskRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.StudyTask, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM study_tasks WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.StudyTask, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) Update(ctx context.Context, t *models.StudyTask) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE study_tasks
		SET subject = $1, topic = $2, time_goal = $3, questions_goal = $4, priority = $5, is_done = $6
		WHERE id = $7 AND user_id = $8`,
		t.Subject, t.Topic, t.TimeGoal, t.QuestionsGoal, t.Priority, t.IsDone, t.ID, t.UserID)
	return err
}

func (r *TaskRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM study_tasks WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

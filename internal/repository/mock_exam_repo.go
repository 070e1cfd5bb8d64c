package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"neetmentor-backend/internal/models"
)

type MockTestRepo struct {
	pool *pgxpool.Pool
}

func NewMockTestRepo(pool *pgxpool.Pool) *MockTestRepo {
	return &MockTestRepo{pool: pool}
}

const mockTestColumns = `id, user_id, name, date, score, physics, chemistry, biology, incorrect,
	attempt_order, time_bio, time_chem, time_phy, mistake_breakdown, created_at`

func scanMockTest(row interface{ Scan(dest ...any) error }) (*models.MockTestResult, error) {
	m := &models.MockTestResult{}
	var day time.Time
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &day, &m.Score, &m.Physics, &m.Chemistry, &m.Biology,
		&m.Incorrect, &m.AttemptOrder, &m.TimeBio, &m.TimeChem, &m.TimePhy, &m.MistakeBreakdown, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Date = models.NewDate(day)
	return m, nil
}

func breakdownOrEmpty(raw []byte) string {
	if len(raw) == 0 {
		return "[]"
	}
	return string(raw)
}

func (r *MockTestRepo) Create(ctx context.Context, m *models.MockTestResult) error {
	query := `INSERT INTO mock_test_results
		(user_id, name, date, score, physics, chemistry, biology, incorrect, attempt_order, time_bio, time_chem, time_phy, mistake_breakdown)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::jsonb)
		RETURNING id, mistake_breakdown, created_at`
	return r.pool.QueryRow(ctx, query,
		m.UserID, m.Name, m.Date.Time, m.Score, m.Physics, m.Chemistry, m.Biology, m.Incorrect,
		m.AttemptOrder, m.TimeBio, m.TimeChem, m.TimePhy, breakdownOrEmpty(m.MistakeBreakdown),
	).Scan(&m.ID, &m.MistakeBreakdown, &m.CreatedAt)
}

func (r *MockTestRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.MockTestResult, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+mockTestColumns+` FROM mock_test_results WHERE id = $1 AND user_id = $2`, id, userID)
	return scanMockTest(row)
}

// ListByUser returns results in exam order, oldest first, for trend charts.
func (r *MockTestRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.MockTestResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+mockTestColumns+` FROM mock_test_results WHERE user_id = $1 ORDER BY date, created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*models.MockTestResult, 0)
	for rows.Next() {
		m, err := scanMockTest(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

func (r *MockTestRepo) Update(ctx context.Context, m *models.MockTestResult) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE mock_test_results
		SET name = $1, date = $2, score = $3, physics = $4, chemistry = $5, biology = $6, incorrect = $7,
			attempt_order = $8, time_bio = $9, time_chem = $10, time_phy = $11, mistake_breakdown = $12::jsonb
		WHERE id = $13 AND user_id = $14`,
		m.Name, m.Date.Time, m.Score, m.Physics, m.Chemistry, m.Biology, m.Incorrect,
		m.AttemptOrder, m.TimeBio, m.TimeChem, m.TimePhy, breakdownOrEmpty(m.MistakeBreakdown),
		m.ID, m.UserID)
	return err
}

func (r *MockTestRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM mock_test_results WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

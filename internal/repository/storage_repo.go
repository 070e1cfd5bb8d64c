package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StorageRepo holds the free-form per-user JSON document the frontend keeps
// its planner state and syllabus checklist in.
type StorageRepo struct {
	pool *pgxpool.Pool
}

func NewStorageRepo(pool *pgxpool.Pool) *StorageRepo {
	return &StorageRepo{pool: pool}
}

// GetOrCreate returns the user's blob, inserting an empty object first if
// none exists. An existing blob is never modified.
func (r *StorageRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (json.RawMessage, error) {
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO user_storage (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return nil, err
	}

	var data json.RawMessage
	err := r.pool.QueryRow(ctx, "SELECT data FROM user_storage WHERE user_id = $1", userID).Scan(&data)
	return data, err
}

func (r *StorageRepo) Replace(ctx context.Context, userID uuid.UUID, data json.RawMessage) (json.RawMessage, error) {
	var out json.RawMessage
	err := r.pool.QueryRow(ctx, `
		INSERT INTO user_storage (user_id, data, updated_at) VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (user_id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
		RETURNING data`, userID, string(data)).Scan(&out)
	return out, err
}

// Merge overlays the top-level keys of patch onto the stored object.
func (r *StorageRepo) Merge(ctx context.Context, userID uuid.UUID, patch json.RawMessage) (json.RawMessage, error) {
	var out json.RawMessage
	err := r.pool.QueryRow(ctx, `
		INSERT INTO user_storage (user_id, data, updated_at) VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET data = CASE
				WHEN jsonb_typeof(user_storage.data) = 'object' THEN user_storage.data || EXCLUDED.data
				ELSE EXCLUDED.data
			END,
			updated_at = NOW()
		RETURNING data`, userID, string(patch)).Scan(&out)
	return out, err
}

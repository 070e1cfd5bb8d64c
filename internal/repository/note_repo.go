package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"neetmentor-backend/internal/models"
)

type NoteRepo struct {
	pool *pgxpool.Pool
}

func NewNoteRepo(pool *pgxpool.Pool) *NoteRepo {
	return &NoteRepo{pool: pool}
}

const noteColumns = `id, user_id, title, content, subject, chapter, image_url, is_pinned, created_at, updated_at`

func scanNote(row interface{ Scan(dest ...any) error }) (*models.Note, error) {
	n := &models.Note{}
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Subject, &n.Chapter, &n.ImageURL,
		&n.IsPinned, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *NoteRepo) Create(ctx context.Context, n *models.Note) error {
	if n.Subject == "" {
		n.Subject = models.DefaultNoteSubject
	}
	query := `INSERT INTO notes (user_id, title, content, subject, chapter, image_url, is_pinned)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		n.UserID, n.Title, n.Content, n.Subject, n.Chapter, n.ImageURL, n.IsPinned,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
}

func (r *NoteRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Note, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	return scanNote(row)
}

// ListByUser returns pinned notes first, then most recently edited.
func (r *NoteRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Note, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = $1 ORDER BY is_pinned DESC, updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]*models.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *NoteRepo) Update(ctx context.Context, n *models.Note) error {
	return r.pool.QueryRow(ctx, `
		UPDATE notes
		SET title = $1, content = $2, subject = $3, chapter = $4, image_url = $5, is_pinned = $6, updated_at = NOW()
		WHERE id = $7 AND user_id = $8
		RETURNING updated_at`,
		n.Title, n.Content, n.Subject, n.Chapter, n.ImageURL, n.IsPinned, n.ID, n.UserID,
	).Scan(&n.UpdatedAt)
}

func (r *NoteRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM notes WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NoteRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM notes WHERE user_id = $1", userID).Scan(&count)
	return count, err
}

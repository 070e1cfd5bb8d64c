package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"neetmentor-backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

// DigestRecipient is a verified user eligible for the weekly digest.
type DigestRecipient struct {
	ID        uuid.UUID
	Email     string
	FirstName string
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, subscription_tier, is_email_verified, is_active, auth_provider, created_at, last_login_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.SubscriptionTier,
		&user.IsEmailVerified, &user.IsActive, &user.AuthProvider, &user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, first_name, is_email_verified, auth_provider)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, subscription_tier, is_active, created_at`

	user.Email = strings.ToLower(user.Email)
	if user.AuthProvider == "" {
		user.AuthProvider = "email"
	}

	return r.pool.QueryRow(ctx, query,
		user.Email, user.PasswordHash, user.FirstName, user.IsEmailVerified, user.AuthProvider,
	).Scan(&user.ID, &user.SubscriptionTier, &user.IsActive, &user.CreatedAt)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
	return scanUser(row)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepo) UpdateFirstName(ctx context.Context, userID uuid.UUID, firstName string) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET first_name = $1 WHERE id = $2", firstName, userID)
	return err
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET last_login_at = $1 WHERE id = $2", time.Now(), userID)
	return err
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET password_hash = $1 WHERE id = $2", passwordHash, userID)
	return err
}

func (r *UserRepo) ListDigestRecipients(ctx context.Context) ([]DigestRecipient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, first_name
		FROM users
		WHERE is_active = TRUE
		  AND is_email_verified = TRUE
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipients := make([]DigestRecipient, 0)
	for rows.Next() {
		var rec DigestRecipient
		if err := rows.Scan(&rec.ID, &rec.Email, &rec.FirstName); err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}

	return recipients, rows.Err()
}

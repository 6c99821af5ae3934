package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/minitrello/minitrello/internal/auth/models"
)

// SQLRepository stores OTP challenges in the otp_challenges table.
type SQLRepository struct {
	db *sqlx.DB
}

var _ Repository = (*SQLRepository)(nil)

// NewSQLRepository creates a challenge repository on top of an open database.
func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Close is a no-op; the shared database handle is closed by its owner.
func (r *SQLRepository) Close() error {
	return nil
}

// Save upserts the challenge keyed by email. The upsert syntax works on
// both sqlite3 and PostgreSQL.
func (r *SQLRepository) Save(ctx context.Context, challenge *models.Challenge) error {
	query := r.db.Rebind(`
		INSERT INTO otp_challenges (email, code, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			code = excluded.code,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at
	`)
	_, err := r.db.ExecContext(ctx, query,
		challenge.Email, challenge.Code, challenge.ExpiresAt, challenge.CreatedAt)
	return err
}

// Get returns the live challenge for an email.
func (r *SQLRepository) Get(ctx context.Context, email string) (*models.Challenge, error) {
	challenge := &models.Challenge{}
	query := r.db.Rebind(`
		SELECT email, code, expires_at, created_at
		FROM otp_challenges WHERE email = ?
	`)
	err := r.db.GetContext(ctx, challenge, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return challenge, nil
}

// Delete removes the challenge for an email.
func (r *SQLRepository) Delete(ctx context.Context, email string) error {
	query := r.db.Rebind(`DELETE FROM otp_challenges WHERE email = ?`)
	_, err := r.db.ExecContext(ctx, query, email)
	return err
}

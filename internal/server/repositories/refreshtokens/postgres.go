// Package refreshtokens provides the PostgreSQL-backed refresh-token ledger.
package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/photobridge/authserver/internal/common"
	"github.com/photobridge/authserver/internal/dbx"
	"github.com/photobridge/authserver/internal/server/models"
)

// PostgresRepository implements the ledger over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new active token row. The token column is unique across
// all time; a collision surfaces as a db error (entropy makes it unreachable
// in practice, the constraint is the backstop).
func (r *PostgresRepository) Create(ctx context.Context, userID string, token string, expiresAt time.Time) (*models.RefreshToken, error) {
	query := `
		INSERT INTO refresh_tokens (id, token, user_id, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	record := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	if err := r.db.QueryRowContext(ctx, query, record.ID, token, userID, expiresAt).Scan(&record.CreatedAt); err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	return record, nil
}

const findQuery = `
	SELECT id, token, user_id, expires_at, revoked, created_at
	FROM refresh_tokens
	WHERE token = $1
`

// Find returns the ledger row for the given token value.
func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	return r.find(ctx, findQuery, token)
}

// FindForUpdate locks the row until the surrounding transaction ends, so
// concurrent rotations of the same token serialize and only one wins.
func (r *PostgresRepository) FindForUpdate(ctx context.Context, token string) (*models.RefreshToken, error) {
	return r.find(ctx, findQuery+` FOR UPDATE`, token)
}

func (r *PostgresRepository) find(ctx context.Context, query, token string) (*models.RefreshToken, error) {
	record := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&record.ID, &record.Token, &record.UserID, &record.ExpiresAt, &record.Revoked, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return record, nil
}

// Revoke marks the token revoked. Once set the flag is never cleared.
func (r *PostgresRepository) Revoke(ctx context.Context, token string) error {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE
		WHERE token = $1
	`
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// RevokeAllForUser revokes every not-yet-revoked token of the account.
func (r *PostgresRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE
		WHERE user_id = $1 AND revoked = FALSE
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// CountActive counts tokens that could still be consumed at the given time.
func (r *PostgresRepository) CountActive(ctx context.Context, userID string, now time.Time, excludeToken string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM refresh_tokens
		WHERE user_id = $1 AND revoked = FALSE AND expires_at > $2 AND token <> $3
	`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, now, excludeToken).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

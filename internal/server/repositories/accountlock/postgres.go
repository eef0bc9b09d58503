package accountlock

import (
	"context"
	"fmt"

	"github.com/photobridge/authserver/internal/dbx"
)

// PostgresRepository serializes per-account sequences with a
// transaction-scoped advisory lock. Advisory locks hold across processes,
// which an in-process mutex cannot, and they work even when the rows being
// guarded do not exist yet (first-login entitlement creation).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Acquire takes pg_advisory_xact_lock keyed on a stable hash of the account
// ID. Released automatically at transaction end.
func (r *PostgresRepository) Acquire(ctx context.Context, accountID string) error {
	query := `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

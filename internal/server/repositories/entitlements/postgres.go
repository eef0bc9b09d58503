// Package entitlements provides the PostgreSQL-backed entitlement store.
package entitlements

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/photobridge/authserver/internal/common"
	"github.com/photobridge/authserver/internal/dbx"
	"github.com/photobridge/authserver/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const getQuery = `
	SELECT id, user_id, status, trial_ends_at, max_devices, created_at, updated_at
	FROM account_settings
	WHERE user_id = $1
`

// Get returns the account's settings row.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.AccountSetting, error) {
	return r.get(ctx, getQuery, userID)
}

// GetForUpdate locks the settings row until the transaction ends.
func (r *PostgresRepository) GetForUpdate(ctx context.Context, userID string) (*models.AccountSetting, error) {
	return r.get(ctx, getQuery+` FOR UPDATE`, userID)
}

func (r *PostgresRepository) get(ctx context.Context, query, userID string) (*models.AccountSetting, error) {
	setting := &models.AccountSetting{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&setting.ID, &setting.UserID, &setting.Status, &setting.TrialEndsAt,
		&setting.MaxDevices, &setting.CreatedAt, &setting.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return setting, nil
}

// Create inserts the settings row.
func (r *PostgresRepository) Create(ctx context.Context, setting *models.AccountSetting) (*models.AccountSetting, error) {
	query := `
		INSERT INTO account_settings (id, user_id, status, trial_ends_at, max_devices)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	setting.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, query,
		setting.ID, setting.UserID, setting.Status, setting.TrialEndsAt, setting.MaxDevices).
		Scan(&setting.CreatedAt, &setting.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	return setting, nil
}

// UpdateStatus rewrites only the status column. Used for the one-way
// trial→expired transition.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	query := `
		UPDATE account_settings
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update rewrites the operator-editable fields.
func (r *PostgresRepository) Update(ctx context.Context, setting *models.AccountSetting) (*models.AccountSetting, error) {
	query := `
		UPDATE account_settings
		SET status = $2, trial_ends_at = $3, max_devices = $4, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, setting.ID, setting.Status, setting.TrialEndsAt, setting.MaxDevices)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, common.ErrorNotFound
	}
	return setting, nil
}

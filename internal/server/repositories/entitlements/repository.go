// Package entitlements declares the repository contract for per-account
// entitlement state (status, trial deadline, device cap).
package entitlements

import (
	"context"

	"github.com/photobridge/authserver/internal/server/models"
)

// Repository defines persistence operations for account settings. Each
// account has zero or one settings row.
type Repository interface {
	// Get returns the settings row for the account, or common.ErrorNotFound.
	Get(ctx context.Context, userID string) (*models.AccountSetting, error)

	// GetForUpdate is Get with a row lock for transactional transitions.
	GetForUpdate(ctx context.Context, userID string) (*models.AccountSetting, error)

	// Create inserts a settings row for the account.
	Create(ctx context.Context, setting *models.AccountSetting) (*models.AccountSetting, error)

	// UpdateStatus rewrites only the status column.
	UpdateStatus(ctx context.Context, id string, status string) error

	// Update rewrites status, trial deadline and device cap.
	Update(ctx context.Context, setting *models.AccountSetting) (*models.AccountSetting, error)
}

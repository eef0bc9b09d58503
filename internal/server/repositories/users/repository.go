// Package users declares the repository contract for account records and
// their role assignments.
package users

import (
	"context"

	"github.com/photobridge/authserver/internal/server/models"
)

// Repository defines persistence operations for accounts. Usernames are
// matched exactly and case-sensitively.
type Repository interface {
	// Create inserts a new account together with its role assignments,
	// creating role rows as needed. Returns common.ErrorAlreadyExists when
	// the username is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUsername returns the account with the exact username, roles
	// included, or common.ErrorNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByID returns the account by ID, roles included, or
	// common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// List returns all accounts with their roles.
	List(ctx context.Context) ([]*models.User, error)

	// Update rewrites display name, active flag, password hash and role
	// assignments of an existing account.
	Update(ctx context.Context, user *models.User) (*models.User, error)

	// Delete removes an account. Token and settings rows cascade.
	Delete(ctx context.Context, id string) error
}

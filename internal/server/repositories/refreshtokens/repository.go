// Package refreshtokens declares the refresh-token ledger contract: issued
// tokens, their validity window, and revocation state.
package refreshtokens

import (
	"context"
	"time"

	"github.com/photobridge/authserver/internal/server/models"
)

// Repository defines the ledger operations. A token is active iff it is not
// revoked and its expiry lies in the future; only an explicit revoked flag is
// ever persisted.
type Repository interface {
	// Create persists a new active token row for userID expiring at expiresAt.
	Create(ctx context.Context, userID string, token string, expiresAt time.Time) (*models.RefreshToken, error)

	// Find looks up a token by its opaque value, returning
	// common.ErrorNotFound when absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// FindForUpdate is Find with a row lock, for use inside a transaction
	// that will rotate or revoke the token.
	FindForUpdate(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke sets revoked on the token row. Idempotent; revoking an unknown
	// or already-revoked token is not an error.
	Revoke(ctx context.Context, token string) error

	// RevokeAllForUser revokes every currently-active token of the account.
	RevokeAllForUser(ctx context.Context, userID string) error

	// CountActive counts the account's tokens where !revoked and
	// expires_at > now. A non-empty excludeToken leaves that one value out,
	// so an in-flight rotation does not count its own old token.
	CountActive(ctx context.Context, userID string, now time.Time, excludeToken string) (int, error)
}

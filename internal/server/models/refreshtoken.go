package models

import "time"

// RefreshToken is one row of the refresh-token ledger. Token values are
// unique across all time; once revoked a token is never reactivated.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Active reports whether the token may still be consumed at the given time.
// A lapsed token is inactive even before the ledger has observed the lapse
// and persisted the revoke.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && t.ExpiresAt.After(now)
}

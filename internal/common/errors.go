// Package common defines shared constants and sentinel errors used across
// the PhotoBridge auth server. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal        = errors.New("internal error")
	ErrorInvalidArgument = errors.New("invalid argument")

	// Unauthenticated: bad credentials or a bad/absent/expired/revoked
	// refresh token. Safe to retry with fresh credentials; callers must not
	// learn which check failed.
	ErrorUnauthenticated = errors.New("unauthenticated")

	// Forbidden family: the account may not start or continue a session.
	// Terminal until an operator (or a policy change) intervenes.
	ErrorAccountDisabled = errors.New("account disabled")
	ErrorAccountLocked   = errors.New("account locked")
	ErrorAccountExpired  = errors.New("account expired")
	ErrorTrialExpired    = errors.New("trial expired")

	// Conflict: the per-account device cap is reached. Retryable after the
	// user terminates another session.
	ErrorDeviceLimit = errors.New("session already active on another device")
)

// IsForbidden reports whether err belongs to the Forbidden family of the
// error taxonomy (account state prevents the session).
func IsForbidden(err error) bool {
	return errors.Is(err, ErrorAccountDisabled) ||
		errors.Is(err, ErrorAccountLocked) ||
		errors.Is(err, ErrorAccountExpired) ||
		errors.Is(err, ErrorTrialExpired)
}

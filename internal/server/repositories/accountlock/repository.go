// Package accountlock provides the per-account serialization point for the
// session core's guarded read-modify-write sequences (device-count
// check-then-issue, trial check-then-transition).
package accountlock

import "context"

// Repository acquires a lock scoped to one account. Two concurrent logins or
// refreshes for the same account must not interleave between observing ledger
// state and writing to it.
type Repository interface {
	// Acquire blocks until the account's lock is held. The lock is released
	// when the surrounding transaction commits or rolls back, so Acquire is
	// only meaningful on a transactional DBTX.
	Acquire(ctx context.Context, accountID string) error
}

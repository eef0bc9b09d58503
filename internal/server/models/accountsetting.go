package models

import "time"

// Account entitlement statuses. The trial→expired transition is automatic
// and one-way; locked and active are set by operator action only.
const (
	StatusActive  = "active"
	StatusTrial   = "trial"
	StatusLocked  = "locked"
	StatusExpired = "expired"
)

// AccountSetting is the entitlement state of one account (0-or-1 per user).
//
// MaxDevices nil or 0 means unlimited; N limits the account to at most N
// concurrently active refresh tokens.
type AccountSetting struct {
	ID          string
	UserID      string
	Status      string
	TrialEndsAt *time.Time
	MaxDevices  *int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TrialLapsed reports whether a trial deadline is set and already behind now.
func (s *AccountSetting) TrialLapsed(now time.Time) bool {
	return s.Status == StatusTrial && s.TrialEndsAt != nil && s.TrialEndsAt.Before(now)
}

// DeviceCap returns the effective concurrency cap, 0 meaning unlimited.
func (s *AccountSetting) DeviceCap() int {
	if s.MaxDevices == nil || *s.MaxDevices <= 0 {
		return 0
	}
	return *s.MaxDevices
}

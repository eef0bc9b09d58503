package models

import "time"

// User is an account identity. Usernames are unique and matched
// case-sensitively.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	DisplayName  string
	IsActive     bool
	CreatedAt    time.Time
	Roles        []string
}

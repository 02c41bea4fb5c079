package entity

import (
	"time"
)

// Account is the identity aggregate owned by the account directory.
// PasswordHash holds a bcrypt hash, never the plaintext.
//
// Accounts are values: stores keep their own copy and an update
// always replaces the whole record.
type Account struct {
	ID           string
	Email        string
	Username     string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// IsAdmin reports whether the account carries the admin role.
func (a Account) IsAdmin() bool { return a.Role == RoleAdmin }

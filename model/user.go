package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the identity record. PasswordHash is nil for OAuth-only accounts
// and DisabledAt is nil while the account is active.
type User struct {
	ID            uuid.UUID  `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	PasswordHash  *string    `json:"-"`
	EmailVerified bool       `json:"email_verified"`
	Role          Role       `json:"role"`
	DisabledAt    *time.Time `json:"disabled_at,omitempty"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Disabled reports whether the account has been administratively disabled.
func (u *User) Disabled() bool {
	return u.DisabledAt != nil
}

// file: model/token.go

package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is one row per issued refresh token. The ID equals the token's
// jti claim; only the SHA-256 hash of the token string is stored. A non-nil
// RevokedAt makes the record permanently unusable regardless of expiry.
type RefreshToken struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	TokenHash string     `json:"-"` // The hash is not exposed in JSON responses.
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// EmailVerification is a one-time-use, hash-stored verification token record.
// VerifiedAt doubles as the consumed marker.
type EmailVerification struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

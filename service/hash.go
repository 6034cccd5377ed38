package service

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashToken returns the SHA-256 hex digest of a token string. Refresh and
// verification tokens are stored by this hash only, never in plaintext.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

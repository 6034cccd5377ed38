package model

import "github.com/golang-jwt/jwt/v5"

// AccessClaims are the self-contained claims carried by short-lived access
// tokens. Subject holds the user ID; Username avoids a database lookup on
// every request that only needs a display name.
type AccessClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// RefreshClaims are carried by long-lived refresh tokens. The registered ID
// claim (jti) binds the token to its refresh_tokens row.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

package service

import (
	"errors"
	"fmt"
	"time"
)

// Domain error kinds returned by the auth services. Handlers map each kind to
// exactly one HTTP status; anything not in this list is treated as an
// internal error and surfaced opaquely.
var (
	// ErrInvalidCredentials covers unknown user and wrong password alike, so
	// callers cannot enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenBlacklisted   = errors.New("token blacklisted")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrWeakPassword       = errors.New("weak password")
	ErrUnauthorized       = errors.New("unauthorized")
)

// RateLimitError carries the backoff hint alongside the rate-limit kind.
// errors.Is(err, ErrRateLimitExceeded) matches it.
type RateLimitError struct {
	Limit      int64
	Current    int64
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d/%d, retry after %s", e.Current, e.Limit, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimitExceeded
}

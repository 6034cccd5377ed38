// file: handler/errors.go

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"go-auth-api/common"
	"go-auth-api/service"
)

// ToAppError maps a domain error kind to its stable HTTP representation.
// Each kind maps to exactly one status code; anything unrecognized is an
// infrastructure failure, logged in full and surfaced as an opaque 500.
func ToAppError(err error) *common.AppError {
	var rateErr *service.RateLimitError
	if errors.As(err, &rateErr) {
		retryAfter := int(rateErr.RetryAfter.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		return common.NewAppError(http.StatusTooManyRequests, "Too many requests", nil).
			WithHeader("Retry-After", strconv.Itoa(retryAfter))
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return common.NewAppError(http.StatusUnauthorized, "Invalid credentials", nil)
	case errors.Is(err, service.ErrUserAlreadyExists):
		return common.NewAppError(http.StatusConflict, "User already exists", nil)
	case errors.Is(err, service.ErrUserNotFound):
		return common.NewAppError(http.StatusNotFound, "User not found", nil)
	case errors.Is(err, service.ErrTokenExpired):
		return common.NewAppError(http.StatusUnauthorized, "Token expired", nil)
	case errors.Is(err, service.ErrTokenBlacklisted):
		return common.NewAppError(http.StatusUnauthorized, "Token has been revoked", nil)
	case errors.Is(err, service.ErrInvalidToken):
		return common.NewAppError(http.StatusUnauthorized, "Invalid token", nil)
	case errors.Is(err, service.ErrRateLimitExceeded):
		return common.NewAppError(http.StatusTooManyRequests, "Too many requests", nil)
	case errors.Is(err, service.ErrEmailNotVerified):
		return common.NewAppError(http.StatusForbidden, "Email not verified", nil)
	case errors.Is(err, service.ErrWeakPassword):
		return common.NewAppError(http.StatusBadRequest, "Password does not meet security requirements", nil)
	case errors.Is(err, service.ErrUnauthorized):
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized", nil)
	default:
		return common.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
}

// file: service/blacklist.go

package service

import (
	"context"
	"fmt"
	"time"

	"go-auth-api/logger"
)

// BlacklistService is the revocation cache for access tokens invalidated
// before their natural expiry (logout, security incidents). Entries carry a
// TTL equal to the token's remaining lifetime, so they disappear exactly when
// the token would have expired anyway.
//
// Refresh tokens are never blacklisted here; they are revoked through the
// token repository, which already tracks them.
type BlacklistService struct {
	cache ICacheClient
}

// NewBlacklistService creates a new BlacklistService.
func NewBlacklistService(cache ICacheClient) *BlacklistService {
	return &BlacklistService{cache: cache}
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}

// Add blacklists an access token for the given remaining lifetime.
// Callers compute ttl as claims.exp minus now, never a fixed value.
func (s *BlacklistService) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token is already past its expiry; nothing to deny.
		return nil
	}
	if err := s.cache.SetEx(ctx, blacklistKey(token), 1, ttl).Err(); err != nil {
		logger.Log.WithError(err).Error("Failed to add token to blacklist")
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

// Contains reports whether the token has been blacklisted. A lookup failure
// is returned as an error; the enforcement point must treat it as deny
// (fail closed), since failing open would defeat immediate revocation.
func (s *BlacklistService) Contains(ctx context.Context, token string) (bool, error) {
	n, err := s.cache.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		logger.Log.WithError(err).Error("Blacklist lookup failed")
		return false, fmt.Errorf("blacklist lookup failed: %w", err)
	}
	return n > 0, nil
}

// file: service/auth_service.go

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-auth-api/config"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const pqUniqueViolation = "23505"

// TokenPair is the result of register, login and refresh: a fresh access
// token plus the refresh token that supersedes any previous one.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // access token lifetime in seconds
}

// AuthService composes the hasher, token codec, refresh token store,
// blacklist and rate limiter into the register/login/refresh/logout/authorize
// use cases. It is the single enforcement point the HTTP layer calls for
// every protected request.
type AuthService struct {
	users     repository.IUserRepository
	tokens    repository.ITokenRepository
	hasher    *PasswordHasher
	codec     *TokenService
	blacklist *BlacklistService
	limiter   *RateLimiterService
	jwtCfg    config.JWTConfig
	retention time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users repository.IUserRepository,
	tokens repository.ITokenRepository,
	hasher *PasswordHasher,
	codec *TokenService,
	blacklist *BlacklistService,
	limiter *RateLimiterService,
	jwtCfg config.JWTConfig,
	retention config.TokenRetention,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		hasher:    hasher,
		codec:     codec,
		blacklist: blacklist,
		limiter:   limiter,
		jwtCfg:    jwtCfg,
		retention: time.Duration(retention.RetentionDays) * 24 * time.Hour,
	}
}

// Register creates a new account and issues the first token pair.
// Username or email collisions report ErrUserAlreadyExists.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, *TokenPair, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: &hash,
	}
	if err := s.users.CreateUser(user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, nil, ErrUserAlreadyExists
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")
	return user, pair, nil
}

// Login verifies credentials and issues a token pair. The attempt is
// rate-limited per origin IP before any credential work. Unknown user, wrong
// password, passwordless (OAuth-only) account and disabled account are all
// folded into ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, ip string) (*model.User, *TokenPair, error) {
	status, err := s.limiter.AllowLogin(ctx, ip)
	if err != nil {
		return nil, nil, err
	}
	if !status.Allowed {
		return nil, nil, &RateLimitError{Limit: status.Limit, Current: status.Current, RetryAfter: status.RetryAfter}
	}

	user, err := s.users.GetUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.PasswordHash == nil {
		return nil, nil, ErrInvalidCredentials
	}
	match, err := s.hasher.Verify(req.Password, *user.PasswordHash)
	if err != nil {
		return nil, nil, err
	}
	if !match || user.Disabled() {
		return nil, nil, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(user.ID); err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login timestamp")
	}
	if err := s.limiter.ResetLogin(ctx, ip); err != nil {
		logger.Log.WithError(err).Warn("Failed to reset login rate limit after success")
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("User logged in")
	return user, pair, nil
}

// Refresh rotates a refresh token: the presented token is validated against
// its stored record, marked revoked, and a new pair is issued — all such that
// at most one of two concurrent rotations of the same token can succeed. The
// losing attempt reports ErrInvalidToken, which is the theft-detection
// signal.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.User, *TokenPair, error) {
	claims, err := s.codec.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	jti := uuid.MustParse(claims.ID)

	record, err := s.validateStored(refreshToken, jti)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetUserByID(record.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.Disabled() {
		return nil, nil, ErrUnauthorized
	}

	accessToken, err := s.codec.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, nil, err
	}
	newRefresh, newJTI, err := s.codec.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, nil, err
	}

	newRecord := &model.RefreshToken{
		ID:        newJTI,
		UserID:    user.ID,
		TokenHash: hashToken(newRefresh),
		ExpiresAt: time.Now().Add(s.jwtCfg.RefreshTTL()),
	}
	if err := s.tokens.Rotate(jti, newRecord); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The old token was revoked between validation and rotation:
			// a concurrent rotation or a replayed stolen token.
			logger.Log.WithField("jti", jti).Warn("Refresh token rotation race detected")
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return user, &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresIn:    int64(s.jwtCfg.AccessTTL().Seconds()),
	}, nil
}

// Logout revokes the refresh token and blacklists the paired access token
// for its remaining lifetime. Repeating the call with an already revoked
// refresh token fails with ErrTokenBlacklisted and has no side effect.
func (s *AuthService) Logout(ctx context.Context, refreshToken, accessToken string) error {
	claims, err := s.codec.VerifyRefreshToken(refreshToken)
	if err != nil {
		return err
	}
	jti := uuid.MustParse(claims.ID)

	if _, err := s.validateStored(refreshToken, jti); err != nil {
		return err
	}
	if err := s.tokens.Revoke(jti); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	// Blacklist the access token for however long it would otherwise stay
	// valid. An expired or malformed access token has nothing left to deny.
	if accessToken != "" {
		accessClaims, err := s.codec.VerifyAccessToken(accessToken)
		if err == nil && accessClaims.ExpiresAt != nil {
			ttl := time.Until(accessClaims.ExpiresAt.Time)
			if err := s.blacklist.Add(ctx, accessToken, ttl); err != nil {
				return err
			}
		}
	}

	logger.Log.WithField("jti", jti).Info("User logged out")
	return nil
}

// Authorize is the per-request gate: signature and expiry check, then
// blacklist check, then a fresh user lookup so role and disabled status are
// current rather than trusted from the claims. A blacklist lookup failure
// denies access (fail closed).
func (s *AuthService) Authorize(ctx context.Context, accessToken string) (*model.User, *model.AccessClaims, error) {
	claims, err := s.codec.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, nil, err
	}

	blacklisted, err := s.blacklist.Contains(ctx, accessToken)
	if err != nil {
		return nil, nil, err
	}
	if blacklisted {
		return nil, nil, ErrTokenBlacklisted
	}

	userID, err := SubjectID(claims)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrUnauthorized
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.Disabled() {
		return nil, nil, ErrUnauthorized
	}

	return user, claims, nil
}

// DisableUser stamps the disabled marker and revokes every live refresh
// token, so neither existing sessions nor future logins survive.
func (s *AuthService) DisableUser(userID uuid.UUID) error {
	if err := s.users.SetDisabled(userID, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to disable user: %w", err)
	}
	if err := s.tokens.RevokeAllForUser(userID); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	logger.Log.WithField("user_id", userID).Warn("User disabled; all refresh tokens revoked")
	return nil
}

// EnableUser clears the disabled marker. Previously revoked tokens stay
// revoked; the user must log in again.
func (s *AuthService) EnableUser(userID uuid.UUID) error {
	if err := s.users.SetDisabled(userID, false); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to enable user: %w", err)
	}
	logger.Log.WithField("user_id", userID).Info("User enabled")
	return nil
}

// CleanupExpiredTokens deletes refresh token records expired beyond the
// retention window. Called periodically, never on the request path.
func (s *AuthService) CleanupExpiredTokens() (int64, error) {
	return s.tokens.DeleteExpired(s.retention)
}

// validateStored checks the presented token string against its stored record.
// An unknown jti and a hash mismatch are indistinguishable to the caller
// (both ErrInvalidToken); revocation is checked before expiry so a revoked
// but unexpired token reports ErrTokenBlacklisted.
func (s *AuthService) validateStored(refreshToken string, jti uuid.UUID) (*model.RefreshToken, error) {
	record, err := s.tokens.GetByID(jti)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}
	if record.TokenHash != hashToken(refreshToken) {
		return nil, ErrInvalidToken
	}
	if record.RevokedAt != nil {
		return nil, ErrTokenBlacklisted
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, ErrTokenExpired
	}
	return record, nil
}

func (s *AuthService) issuePair(user *model.User) (*TokenPair, error) {
	accessToken, err := s.codec.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	refreshToken, jti, err := s.codec.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	record := &model.RefreshToken{
		ID:        jti,
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: time.Now().Add(s.jwtCfg.RefreshTTL()),
	}
	if err := s.tokens.Create(record); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtCfg.AccessTTL().Seconds()),
	}, nil
}

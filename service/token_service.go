// file: service/token_service.go

package service

import (
	"errors"
	"fmt"
	"time"

	"go-auth-api/config"
	"go-auth-api/logger"
	"go-auth-api/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenService signs and verifies the two JWT kinds: short-lived access
// tokens and long-lived refresh tokens. Verification distinguishes expiry
// from every other failure because callers react differently (expired access
// token -> try the refresh flow; anything else -> reject outright).
type TokenService struct {
	cfg config.JWTConfig
}

// NewTokenService creates a TokenService from the immutable JWT configuration.
func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{cfg: cfg}
}

func (s *TokenService) key() []byte {
	return []byte(s.cfg.SecretKey)
}

// GenerateAccessToken issues a signed access token for the user.
func (s *TokenService) GenerateAccessToken(userID uuid.UUID, username string) (string, error) {
	now := time.Now()
	claims := &model.AccessClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.key())
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to sign access token")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}
	return tokenString, nil
}

// GenerateRefreshToken issues a signed refresh token with a fresh random jti
// and returns both. The jti is the key binding the token to its database row.
func (s *TokenService) GenerateRefreshToken(userID uuid.UUID) (string, uuid.UUID, error) {
	now := time.Now()
	jti := uuid.New()
	claims := &model.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTTL())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.key())
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to sign refresh token")
		return "", uuid.Nil, fmt.Errorf("failed to sign token string: %w", err)
	}
	return tokenString, jti, nil
}

// VerifyAccessToken checks signature and expiry and returns the claims.
// Returns ErrTokenExpired for expired tokens, ErrInvalidToken for everything
// else (bad signature, malformed, wrong claims shape). Both token kinds are
// signed with the same secret, so the claims shape is the discriminator: a
// token carrying a jti or missing the username claim is a refresh token and
// must never pass the access gate.
func (s *TokenService) VerifyAccessToken(tokenString string) (*model.AccessClaims, error) {
	claims := &model.AccessClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.ID != "" || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefreshToken checks signature and expiry and returns the claims.
// The jti claim must be a valid UUID or the token is rejected.
func (s *TokenService) VerifyRefreshToken(tokenString string) (*model.RefreshClaims, error) {
	claims := &model.RefreshClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key(), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// SubjectID extracts the user id from verified claims.
func SubjectID(claims jwt.Claims) (uuid.UUID, error) {
	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

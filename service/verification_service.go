// file: service/verification_service.go

package service

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"

	"github.com/google/uuid"
)

const verificationTokenTTL = 24 * time.Hour

// VerificationService manages one-time email verification tokens. The token
// record follows the refresh-token pattern: hash-only storage, explicit
// expiry, and a nullable consumed marker.
type VerificationService struct {
	verifications repository.IVerificationRepository
	users         repository.IUserRepository
	mailer        Mailer
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(verifications repository.IVerificationRepository, users repository.IUserRepository, mailer Mailer) *VerificationService {
	return &VerificationService{verifications: verifications, users: users, mailer: mailer}
}

// SendVerification creates a fresh verification token for the user and hands
// it to the mailer. The plaintext token leaves the process only through the
// mail channel.
func (s *VerificationService) SendVerification(userID uuid.UUID) error {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}
	token := hex.EncodeToString(raw)

	record := &model.EmailVerification{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(token),
		ExpiresAt: time.Now().Add(verificationTokenTTL),
	}
	if err := s.verifications.Create(record); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	if err := s.mailer.SendVerificationEmail(user.Email, token); err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to send verification email")
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// VerifyEmail consumes a verification token and flips the user's
// email_verified flag. Unknown, already consumed and structurally wrong
// tokens all report ErrInvalidToken; an expired record reports
// ErrTokenExpired.
func (s *VerificationService) VerifyEmail(token string) (uuid.UUID, error) {
	record, err := s.verifications.GetByTokenHash(hashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrInvalidToken
		}
		return uuid.Nil, fmt.Errorf("failed to look up verification token: %w", err)
	}

	if record.VerifiedAt != nil {
		return uuid.Nil, ErrInvalidToken
	}
	if time.Now().After(record.ExpiresAt) {
		return uuid.Nil, ErrTokenExpired
	}

	if err := s.verifications.MarkVerified(record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost a race with a concurrent verify; the token is spent.
			return uuid.Nil, ErrInvalidToken
		}
		return uuid.Nil, fmt.Errorf("failed to consume verification token: %w", err)
	}

	if err := s.users.SetEmailVerified(record.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrUserNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to mark user verified: %w", err)
	}

	logger.Log.WithField("user_id", record.UserID).Info("Email verified")
	return record.UserID, nil
}

// file: repository/token_repository.go

package repository

import (
	"database/sql"
	"time"

	"go-auth-api/logger"
	"go-auth-api/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for refresh token database operations.
type ITokenRepository interface {
	Create(token *model.RefreshToken) error
	GetByID(jti uuid.UUID) (*model.RefreshToken, error)
	Revoke(jti uuid.UUID) error
	Rotate(oldJTI uuid.UUID, newToken *model.RefreshToken) error
	RevokeAllForUser(userID uuid.UUID) error
	DeleteExpired(retention time.Duration) (int64, error)
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Create inserts a new refresh token record. The record id is the token's jti.
func (r *TokenRepository) Create(token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"jti":        token.ID,
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})

	query := `INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at) VALUES ($1, $2, $3, $4) RETURNING created_at`
	err := r.DB.QueryRow(query, token.ID, token.UserID, token.TokenHash, token.ExpiresAt).Scan(&token.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query")
		return err
	}
	return nil
}

// GetByID retrieves a refresh token record by its jti.
// Returns sql.ErrNoRows when no record exists.
func (r *TokenRepository) GetByID(jti uuid.UUID) (*model.RefreshToken, error) {
	token := &model.RefreshToken{}
	query := `SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens WHERE id = $1`
	err := r.DB.QueryRow(query, jti).Scan(&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.RevokedAt, &token.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithField("jti", jti).WithError(err).Error("Failed to execute get refresh token query")
		}
		return nil, err
	}
	return token, nil
}

// Revoke marks a single token as revoked. Revoking an already revoked or
// unknown token returns sql.ErrNoRows so callers can treat it as invalid.
func (r *TokenRepository) Revoke(jti uuid.UUID) error {
	query := `UPDATE refresh_tokens SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`
	res, err := r.DB.Exec(query, jti)
	if err != nil {
		logger.Log.WithField("jti", jti).WithError(err).Error("Failed to execute revoke refresh token query")
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Rotate revokes the old record and inserts the replacement in a single
// transaction. If the old record was already revoked (a concurrent rotation
// or a replayed token) the whole transaction rolls back with sql.ErrNoRows,
// so at most one rotation of a given token ever succeeds.
func (r *TokenRepository) Rotate(oldJTI uuid.UUID, newToken *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"old_jti": oldJTI,
		"new_jti": newToken.ID,
		"user_id": newToken.UserID,
	})

	tx, err := r.DB.Begin()
	if err != nil {
		log.WithError(err).Error("Failed to begin rotation transaction")
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE refresh_tokens SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, oldJTI)
	if err != nil {
		log.WithError(err).Error("Failed to revoke old refresh token")
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	err = tx.QueryRow(
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		newToken.ID, newToken.UserID, newToken.TokenHash, newToken.ExpiresAt,
	).Scan(&newToken.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to insert rotated refresh token")
		return err
	}

	return tx.Commit()
}

// RevokeAllForUser marks every live token of a user as revoked.
// Used on account disable and logout-everywhere.
func (r *TokenRepository) RevokeAllForUser(userID uuid.UUID) error {
	query := `UPDATE refresh_tokens SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL`
	_, err := r.DB.Exec(query, userID)
	if err != nil {
		logger.Log.WithField("user_id", userID).WithError(err).Error("Failed to execute revoke all refresh tokens query")
		return err
	}
	return nil
}

// DeleteExpired removes records whose expiry is older than now minus the
// retention window. Maintenance operation, not part of the request path.
func (r *TokenRepository) DeleteExpired(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)

	res, err := r.DB.Exec(`DELETE FROM refresh_tokens WHERE expires_at < $1`, cutoff)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete expired refresh tokens query")
		return 0, err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	logger.Log.WithField("rows_deleted", deleted).Info("Expired refresh tokens cleaned up")
	return deleted, nil
}

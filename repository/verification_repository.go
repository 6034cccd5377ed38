// file: repository/verification_repository.go

package repository

import (
	"database/sql"

	"go-auth-api/logger"
	"go-auth-api/model"
)

// IVerificationRepository defines the contract for email verification token
// database operations.
type IVerificationRepository interface {
	Create(v *model.EmailVerification) error
	GetByTokenHash(tokenHash string) (*model.EmailVerification, error)
	MarkVerified(v *model.EmailVerification) error
}

// VerificationRepository implements IVerificationRepository.
type VerificationRepository struct {
	DB *sql.DB
}

// NewVerificationRepository creates a new VerificationRepository.
func NewVerificationRepository(db *sql.DB) *VerificationRepository {
	return &VerificationRepository{DB: db}
}

// Create inserts a new email verification record.
func (r *VerificationRepository) Create(v *model.EmailVerification) error {
	query := `INSERT INTO email_verifications (id, user_id, token_hash, expires_at) VALUES ($1, $2, $3, $4) RETURNING created_at`
	err := r.DB.QueryRow(query, v.ID, v.UserID, v.TokenHash, v.ExpiresAt).Scan(&v.CreatedAt)
	if err != nil {
		logger.Log.WithField("user_id", v.UserID).WithError(err).Error("Failed to execute create email verification query")
		return err
	}
	return nil
}

// GetByTokenHash retrieves a verification record by its hashed token value.
func (r *VerificationRepository) GetByTokenHash(tokenHash string) (*model.EmailVerification, error) {
	v := &model.EmailVerification{}
	query := `SELECT id, user_id, token_hash, expires_at, verified_at, created_at FROM email_verifications WHERE token_hash = $1`
	err := r.DB.QueryRow(query, tokenHash).Scan(&v.ID, &v.UserID, &v.TokenHash, &v.ExpiresAt, &v.VerifiedAt, &v.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute get email verification query")
		}
		return nil, err
	}
	return v, nil
}

// MarkVerified consumes the record. A record can only be consumed once;
// consuming an already used record returns sql.ErrNoRows.
func (r *VerificationRepository) MarkVerified(v *model.EmailVerification) error {
	query := `UPDATE email_verifications SET verified_at = now() WHERE id = $1 AND verified_at IS NULL`
	res, err := r.DB.Exec(query, v.ID)
	if err != nil {
		logger.Log.WithField("id", v.ID).WithError(err).Error("Failed to execute mark verified query")
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

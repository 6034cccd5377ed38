package repository

import (
	"database/sql"

	"go-auth-api/model"

	"github.com/google/uuid"
)

// IUserRepository defines the contract for user database operations.
type IUserRepository interface {
	CreateUser(user *model.User) error
	GetUserByID(id uuid.UUID) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	UpdateLastLogin(id uuid.UUID) error
	UpdateUserRole(id uuid.UUID, newRole string) error
	SetDisabled(id uuid.UUID, disabled bool) error
	SetEmailVerified(id uuid.UUID) error
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, username, email, password_hash, email_verified, role, disabled_at, last_login_at, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.EmailVerified,
		&user.Role, &user.DisabledAt, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) CreateUser(user *model.User) error {
	query := `INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id, email_verified, role, created_at, updated_at`
	return r.DB.QueryRow(query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.EmailVerified, &user.Role, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) GetUserByID(id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.DB.QueryRow(query, id))
}

func (r *UserRepository) GetUserByUsername(username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return scanUser(r.DB.QueryRow(query, username))
}

func (r *UserRepository) GetUserByEmail(email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.DB.QueryRow(query, email))
}

func (r *UserRepository) UpdateLastLogin(id uuid.UUID) error {
	query := `UPDATE users SET last_login_at = now(), updated_at = now() WHERE id = $1`
	_, err := r.DB.Exec(query, id)
	return err
}

func (r *UserRepository) UpdateUserRole(id uuid.UUID, newRole string) error {
	query := `UPDATE users SET role = $2, updated_at = now() WHERE id = $1`
	res, err := r.DB.Exec(query, id, newRole)
	if err != nil {
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

// SetDisabled stamps or clears the disabled marker.
func (r *UserRepository) SetDisabled(id uuid.UUID, disabled bool) error {
	var query string
	if disabled {
		query = `UPDATE users SET disabled_at = now(), updated_at = now() WHERE id = $1 AND disabled_at IS NULL`
	} else {
		query = `UPDATE users SET disabled_at = NULL, updated_at = now() WHERE id = $1 AND disabled_at IS NOT NULL`
	}
	res, err := r.DB.Exec(query, id)
	if err != nil {
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

func (r *UserRepository) SetEmailVerified(id uuid.UUID) error {
	query := `UPDATE users SET email_verified = TRUE, updated_at = now() WHERE id = $1`
	res, err := r.DB.Exec(query, id)
	if err != nil {
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

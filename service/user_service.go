package service

import (
	"database/sql"
	"errors"
	"fmt"

	"go-auth-api/model"
	"go-auth-api/repository"

	"github.com/google/uuid"
)

// UserService handles user-related business logic that is not part of the
// token lifecycle.
type UserService struct {
	userRepo repository.IUserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.IUserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetUser loads a user by id.
func (s *UserService) GetUser(userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// UpdateUserRole validates the role and calls the repository to update it.
func (s *UserService) UpdateUserRole(userID uuid.UUID, newRole model.Role) error {
	// We ensure that only valid roles can be assigned.
	if newRole != model.RoleAdmin && newRole != model.RoleUser {
		return errors.New("invalid role specified")
	}

	if err := s.userRepo.UpdateUserRole(userID, string(newRole)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update user role: %w", err)
	}
	return nil
}

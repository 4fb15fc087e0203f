package service

import (
	"errors"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrInvalidUserID = apperrors.Validation("Invalid user ID")
	ErrInvalidRole   = apperrors.Validation("Invalid role")
	ErrSelfChange    = apperrors.Conflict("Admins cannot demote or delete themselves")
)

// UserService is the admin view of accounts
type UserService interface {
	ListUsers() ([]model.User, error)
	UpdateRole(actorID, userID, role string) (*model.User, error)
	DeleteUser(actorID, userID string) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) ListUsers() ([]model.User, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, apperrors.Upstream(err, "Failed to load users")
	}
	return users, nil
}

func (s *userService) UpdateRole(actorID, userID, role string) (*model.User, error) {
	if !validID(userID) {
		return nil, ErrInvalidUserID
	}
	next := model.UserRole(role)
	if !next.Valid() {
		return nil, ErrInvalidRole
	}
	if actorID == userID && next != model.RoleAdmin {
		return nil, ErrSelfChange
	}

	if err := s.userRepo.UpdateRole(userID, next); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperrors.Upstream(err, "Failed to update user")
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperrors.Upstream(err, "Failed to load user")
	}

	logger.Info("User role updated", map[string]interface{}{
		"user_id":  userID,
		"role":     next,
		"actor_id": actorID,
	})
	return user, nil
}

func (s *userService) DeleteUser(actorID, userID string) error {
	if !validID(userID) {
		return ErrInvalidUserID
	}
	if actorID == userID {
		return ErrSelfChange
	}

	if err := s.userRepo.Delete(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return apperrors.Upstream(err, "Failed to delete user")
	}

	logger.Info("User deleted", map[string]interface{}{
		"user_id":  userID,
		"actor_id": actorID,
	})
	return nil
}

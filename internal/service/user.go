package service

import (
	"context"
	"errors"
	"time"

	"barterhub-api/internal/model"
	"barterhub-api/internal/repository"
	"barterhub-api/pkg/apierror"
)

// UserService handles user directory business logic.
type UserService struct {
	users repository.UserRepository
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository) *UserService {
	if users == nil {
		return nil
	}
	return &UserService{users: users}
}

// Register upserts a user by identity. Location and display name are
// optional; the update timestamp is server-assigned.
func (s *UserService) Register(ctx context.Context, identity, displayName string, loc *model.Location) (model.User, error) {
	user := model.User{
		Identity:    identity,
		DisplayName: displayName,
		Location:    loc,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.users.UpsertUser(ctx, user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Get resolves a user by identity.
func (s *UserService) Get(ctx context.Context, identity string) (*model.User, error) {
	user, err := s.users.GetUser(ctx, identity)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("user not found")
	}
	return user, err
}

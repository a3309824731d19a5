package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"flowstack/internal/auth"
	errs "flowstack/internal/errors"
	"flowstack/internal/model"
	"flowstack/internal/repository"
)

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
	}
}

// Register creates a user with a hashed password and issues an access token.
// Email uniqueness is ultimately enforced by the store's unique index; a
// concurrent registration losing that race surfaces as a duplicate, never as
// a second success.
func (s *authService) Register(ctx context.Context, email, password string) (*model.User, string, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, "", errs.ErrEmailAlreadyRegistered
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", errs.ErrEmailAlreadyRegistered
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtService.IssueToken(user.ID, 0)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and issues an access token. An unknown email
// and a wrong password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", errs.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", errs.ErrInvalidCredentials
	}

	token, err := s.jwtService.IssueToken(user.ID, 0)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return user, token, nil
}

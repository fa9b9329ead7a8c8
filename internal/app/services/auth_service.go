package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/profrate/internal/app/auth"
	"github.com/yigit/profrate/internal/app/models"
	"github.com/yigit/profrate/internal/app/models/dto"
	"github.com/yigit/profrate/internal/app/repositories"
	"github.com/yigit/profrate/internal/pkg/apperrors"
	pkgauth "github.com/yigit/profrate/internal/pkg/auth"
	"github.com/yigit/profrate/internal/pkg/validation"
)

// AuthService handles accounts and credential checks. Session handling lives
// in the auth package.
type AuthService interface {
	Register(ctx context.Context, identity auth.Identity, req *dto.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*models.User, error)
	CreateUser(ctx context.Context, username, password string) (*models.User, error)
	SetActive(ctx context.Context, username string, active bool) error
}

type authServiceImpl struct {
	store  repositories.Store
	hasher *pkgauth.PasswordHasher
	logger zerolog.Logger
}

// NewAuthService creates a new auth service instance
func NewAuthService(store repositories.Store, hasher *pkgauth.PasswordHasher, logger zerolog.Logger) AuthService {
	return &authServiceImpl{store: store, hasher: hasher, logger: logger}
}

// Register creates an account for an anonymous caller
func (s *authServiceImpl) Register(ctx context.Context, identity auth.Identity, req *dto.RegisterRequest) (*models.User, error) {
	if identity.LoggedIn() {
		return nil, apperrors.ErrLoggedIn
	}
	return s.CreateUser(ctx, req.Username, req.Password)
}

// CreateUser creates an active account
func (s *authServiceImpl) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || len(username) > validation.UsernameMaxLength {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("username must be between 1 and %d characters", validation.UsernameMaxLength))
	}
	if password == "" {
		return nil, apperrors.NewInvalidInputError("password is required")
	}
	// bcrypt only looks at the first 72 bytes
	if len(password) > 72 {
		return nil, apperrors.NewInvalidInputError("password must be at most 72 bytes")
	}

	users := s.store.Repositories().Users

	exists, err := users.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error checking if username exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrDuplicateUsername
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: username, PasswordHash: hash, IsActive: true}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUniqueViolation) {
			return nil, apperrors.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info().Str("username", username).Msg("User registered")
	return user, nil
}

// Login verifies credentials and returns the account
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*models.User, error) {
	user, err := s.store.Repositories().Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Debug().Str("username", req.Username).Msg("Login for unknown user")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	if !s.hasher.Check(user.PasswordHash, req.Password) {
		s.logger.Debug().Str("username", req.Username).Msg("Login with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	return user, nil
}

// SetActive enables or disables an account
func (s *authServiceImpl) SetActive(ctx context.Context, username string, active bool) error {
	if err := s.store.Repositories().Users.SetActive(ctx, username, active); err != nil {
		return notFound(err, apperrors.ErrUserNotFound)
	}
	s.logger.Info().Str("username", username).Bool("active", active).Msg("User activation changed")
	return nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/profrate/internal/app/models"
	"github.com/yigit/profrate/internal/pkg/logger"
)

// SQLUserRepository handles user account database operations
type SQLUserRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new SQLUserRepository
func NewUserRepository(db DBTX, sb squirrel.StatementBuilderType) *SQLUserRepository {
	return &SQLUserRepository{db: db, sb: sb}
}

// Create inserts a user. A taken username fails with ErrUniqueViolation.
func (r *SQLUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query, args, err := r.sb.Insert("users").
		Columns("username", "password_hash", "is_active", "created_at").
		Values(user.Username, user.PasswordHash, user.IsActive, user.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&user.ID); err != nil {
		if err = translate(err); errors.Is(err, ErrUniqueViolation) {
			logger.Warn().Str("username", user.Username).Msg("Attempted to create duplicate user")
			return err
		}
		logger.Error().Err(err).Str("username", user.Username).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by username
func (r *SQLUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query, args, err := r.sb.Select("id", "username", "password_hash", "is_active").
		From("users").
		Where(squirrel.Eq{"username": username}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	var u models.User
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsActive); err != nil {
		if err = translate(err); errors.Is(err, ErrNotFound) {
			return nil, err
		}
		logger.Error().Err(err).Str("username", username).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return &u, nil
}

// UsernameExists checks if a username is already taken
func (r *SQLUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return countExists(ctx, r.db, r.sb.Select("COUNT(*)").
		From("users").
		Where(squirrel.Eq{"username": username}))
}

// SetActive enables or disables an account
func (r *SQLUserRepository) SetActive(ctx context.Context, username string, active bool) error {
	query, args, err := r.sb.Update("users").
		Set("is_active", active).
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	return expectAffected(res)
}

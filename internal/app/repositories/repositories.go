package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/profrate/internal/app/models"
	"github.com/yigit/profrate/internal/pkg/dberrors"
)

// Shared repository errors. Services translate them into apperrors values.
var (
	ErrNotFound        = errors.New("record not found")
	ErrUniqueViolation = errors.New("unique constraint violated")
)

// ProfessorRepository stores professors
type ProfessorRepository interface {
	Create(ctx context.Context, professor *models.Professor) error
	GetByExternalID(ctx context.Context, externalID string) (*models.Professor, error)
	GetAll(ctx context.Context) ([]*models.Professor, error)
}

// ModuleRepository stores module definitions, their instances and the
// professors teaching each instance
type ModuleRepository interface {
	GetDefinitionByName(ctx context.Context, name string) (*models.Module, error)
	GetDefinitionByCode(ctx context.Context, code string) (*models.Module, error)
	CreateDefinition(ctx context.Context, module *models.Module) error
	DeleteOrphanDefinitions(ctx context.Context) (int64, error)

	CreateInstance(ctx context.Context, instance *models.ModuleInstance) error
	UpdateInstance(ctx context.Context, instance *models.ModuleInstance) error
	DeleteInstance(ctx context.Context, id int64) error
	GetInstanceByID(ctx context.Context, id int64) (*models.ModuleInstance, error)
	FindInstance(ctx context.Context, code string, year int, semester models.Semester) (*models.ModuleInstance, error)
	FirstInstanceByCode(ctx context.Context, code string) (*models.ModuleInstance, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	GetAllInstances(ctx context.Context) ([]*models.ModuleInstance, error)

	AddProfessor(ctx context.Context, instanceID, professorID int64) error
	RemoveProfessor(ctx context.Context, instanceID, professorID int64) error
	IsTeaching(ctx context.Context, instanceID, professorID int64) (bool, error)
	TeachesCode(ctx context.Context, professorID int64, code string) (bool, error)
}

// RatingRepository stores ratings. Create must fail with ErrUniqueViolation
// when the (professor, instance, student) triple is already rated.
type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	Exists(ctx context.Context, professorID, instanceID int64, studentID string) (bool, error)
	ValuesByProfessor(ctx context.Context) (map[int64][]int, error)
	ValuesForProfessorAndCode(ctx context.Context, professorID int64, code string) ([]int, error)
}

// UserRepository stores accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	SetActive(ctx context.Context, username string, active bool) error
}

// TokenRepository remembers revoked session ids until they would have expired
type TokenRepository interface {
	Revoke(ctx context.Context, sessionID string, expiresAt int64) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
	PurgeExpired(ctx context.Context, now int64) (int64, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Professors ProfessorRepository
	Modules    ModuleRepository
	Ratings    RatingRepository
	Users      UserRepository
	Tokens     TokenRepository
}

// TxFn runs against repositories bound to one transaction
type TxFn func(ctx context.Context, repos *Repositories) error

// Store gives access to repositories and runs units of work atomically
type Store interface {
	Repositories() *Repositories
	WithTransaction(ctx context.Context, fn TxFn) error
}

// DBTX is satisfied by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Dialect selects SQL placeholder style
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// StatementBuilder returns a squirrel builder for the dialect
func (d Dialect) StatementBuilder() squirrel.StatementBuilderType {
	if d == DialectPostgres {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

// SQLStore is the database/sql backed Store
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	repos   *Repositories
}

// NewSQLStore initializes all repositories over db
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{
		db:      db,
		dialect: dialect,
		repos:   newRepositories(db, dialect),
	}
}

func newRepositories(db DBTX, dialect Dialect) *Repositories {
	sb := dialect.StatementBuilder()
	return &Repositories{
		Professors: NewProfessorRepository(db, sb),
		Modules:    NewModuleRepository(db, sb),
		Ratings:    NewRatingRepository(db, sb),
		Users:      NewUserRepository(db, sb),
		Tokens:     NewTokenRepository(db, sb),
	}
}

// Repositories returns repositories bound to the connection pool
func (s *SQLStore) Repositories() *Repositories {
	return s.repos
}

// WithTransaction runs fn with repositories bound to a single transaction,
// committing when fn succeeds and rolling back otherwise
func (s *SQLStore) WithTransaction(ctx context.Context, fn TxFn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(ctx, newRepositories(tx, s.dialect)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return ErrUniqueViolation
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// translate maps driver errors onto the shared repository errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case dberrors.IsUniqueViolation(err):
		return ErrUniqueViolation
	default:
		return err
	}
}

var (
	_ Store               = (*SQLStore)(nil)
	_ ProfessorRepository = (*SQLProfessorRepository)(nil)
	_ ModuleRepository    = (*SQLModuleRepository)(nil)
	_ RatingRepository    = (*SQLRatingRepository)(nil)
	_ UserRepository      = (*SQLUserRepository)(nil)
	_ TokenRepository     = (*SQLTokenRepository)(nil)
)

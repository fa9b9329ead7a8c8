// Package migrations holds the embedded schema for each supported dialect
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/yigit/profrate/internal/app/repositories"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrations embed.FS

// goose keeps its dialect and filesystem in package globals
var gooseMu sync.Mutex

func configure(dialect repositories.Dialect) (string, error) {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	switch dialect {
	case repositories.DialectPostgres:
		if err := goose.SetDialect("postgres"); err != nil {
			return "", fmt.Errorf("failed to set dialect: %w", err)
		}
		return "postgres", nil
	case repositories.DialectSQLite:
		if err := goose.SetDialect("sqlite"); err != nil {
			return "", fmt.Errorf("failed to set dialect: %w", err)
		}
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", dialect)
	}
}

// Migrate runs all pending migrations for the dialect
func Migrate(db *sql.DB, dialect repositories.Dialect) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	dir, err := configure(dialect)
	if err != nil {
		return err
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Version returns the current schema version
func Version(db *sql.DB, dialect repositories.Dialect) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if _, err := configure(dialect); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(db)
}

// Package db opens the configured database and exposes it as *sql.DB
package db

import (
	"database/sql"
	"fmt"

	"github.com/yigit/profrate/internal/app/repositories"
	"github.com/yigit/profrate/internal/config"
	"github.com/yigit/profrate/internal/pkg/logger"
)

// Database is an open connection together with its SQL dialect
type Database struct {
	DB      *sql.DB
	Dialect repositories.Dialect

	pg *PostgresDB
}

// Open connects to the database selected by cfg.Database.Driver
func Open(cfg *config.Config) (*Database, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pg, err := NewPostgresDB(cfg)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("host", cfg.Database.Host).Str("dbname", cfg.Database.DBName).Msg("Connected to PostgreSQL")
		return &Database{DB: pg.SQLDB(), Dialect: repositories.DialectPostgres, pg: pg}, nil

	case config.DriverSQLite:
		sqlDB, err := OpenSQLite(cfg.GetSQLiteDSN())
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", cfg.Database.SQLitePath).Msg("Opened SQLite database")
		return &Database{DB: sqlDB, Dialect: repositories.DialectSQLite}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// Close releases the connection and, for postgres, the underlying pool
func (d *Database) Close() error {
	err := d.DB.Close()
	if d.pg != nil {
		d.pg.Close()
	}
	return err
}

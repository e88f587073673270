// Package database provides the connection pool and schema management for rentalctl.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rentalctl/rentalctl-go/internal/config"
	"github.com/rentalctl/rentalctl-go/internal/ctxlog"
)

// Pool settings.
const (
	MaxOpenConns    = 4
	MaxIdleConns    = 2
	ConnMaxLifetime = 30 * time.Minute
)

// DB wraps a connection pool with the dialect it speaks and, for SQLite,
// the file it lives in.
type DB struct {
	*sql.DB
	Dialect       Dialect
	Path          string
	IsTemp        bool
	ShouldCleanup bool
}

// Open builds the connection pool described by cfg. No connection is made
// until the first statement runs.
// For SQLite an empty path creates a temporary database that Close removes.
func Open(ctx context.Context, cfg *config.Config) (*DB, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	d := &DB{Dialect: dialect}
	if cfg.Driver == config.SQLite {
		if err := d.prepareSQLitePath(cfg); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(dialect.DriverName(), cfg.DSN())
	if err != nil {
		if d.ShouldCleanup {
			os.Remove(d.Path)
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(MaxOpenConns)
	db.SetMaxIdleConns(MaxIdleConns)
	db.SetConnMaxLifetime(ConnMaxLifetime)
	d.DB = db

	ctxlog.FromContext(ctx).Debug("connection pool configured",
		"driver", dialect.DriverName(), "target", cfg.Redacted(), "env_file", cfg.EnvFile, "max_open", MaxOpenConns)
	return d, nil
}

// prepareSQLitePath resolves the database file, creating a temporary one or
// the parent directory of an explicit one. cfg.Path is updated so the DSN
// points at the resolved file.
func (d *DB) prepareSQLitePath(cfg *config.Config) error {
	if cfg.Path == "" {
		tmpFile, err := os.CreateTemp("", "rentalctl-*.db")
		if err != nil {
			return fmt.Errorf("failed to create temporary database: %w", err)
		}
		tmpFile.Close()
		cfg.Path = tmpFile.Name()
		d.IsTemp = true
		d.ShouldCleanup = true
	} else {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "." && dbDir != "" {
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				return fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}
	d.Path = cfg.Path
	return nil
}

// Cleanup removes the temporary database file if applicable.
func (d *DB) Cleanup() error {
	if d.ShouldCleanup {
		if err := os.Remove(d.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove temporary database %s: %w", d.Path, err)
		}
	}
	return nil
}

// Close closes the connection pool and cleans up if necessary.
func (d *DB) Close() error {
	if err := d.DB.Close(); err != nil {
		return err
	}
	return d.Cleanup()
}

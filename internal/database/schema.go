package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rentalctl/rentalctl-go/internal/ctxlog"
)

// Tables lists the managed tables in creation order.
var Tables = []string{"movies", "customers", "rentals"}

// EnsureSchema creates the movies, customers and rentals tables if they do
// not already exist. Safe to run on every invocation.
func EnsureSchema(ctx context.Context, db *DB) error {
	log := ctxlog.FromContext(ctx)

	for i, stmt := range db.Dialect.CreateTableStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", Tables[i], err)
		}

		// The catalog is only queried when debug records are kept.
		if !log.Enabled(ctx, slog.LevelDebug) {
			continue
		}
		exists, err := TableExists(ctx, db, Tables[i])
		if err != nil {
			return err
		}
		log.Debug("table ensured", "table", Tables[i], "exists", exists)
	}
	return nil
}

// TableExists reports whether the named table is present in the current
// database or schema.
func TableExists(ctx context.Context, db *DB, table string) (bool, error) {
	var count int
	query := db.Dialect.Rebind(db.Dialect.TableExistsQuery())
	if err := db.QueryRowContext(ctx, query, table).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", table, err)
	}
	return count > 0, nil
}

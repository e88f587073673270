package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rentalctl/rentalctl-go/internal/config"
)

// Dialect captures the per-driver differences in DDL and placeholder syntax.
// Queries are written with '?' placeholders and passed through Rebind.
type Dialect interface {
	DriverName() string
	// CreateTableStatements returns the movies, customers and rentals DDL in
	// dependency order.
	CreateTableStatements() []string
	// TableExistsQuery returns a query taking one table-name parameter and
	// yielding a single count.
	TableExistsQuery() string
	Rebind(query string) string
}

// DialectFor returns the dialect for a configured driver.
func DialectFor(driver config.Driver) (Dialect, error) {
	switch driver {
	case config.Postgres:
		return postgresDialect{}, nil
	case config.MySQL:
		return mysqlDialect{}, nil
	case config.SQLite:
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, driver)
	}
}

type postgresDialect struct{}

func (postgresDialect) DriverName() string { return "postgres" }

func (postgresDialect) CreateTableStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS movies (
			movie_id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			release_year INT NOT NULL,
			genre TEXT NOT NULL,
			director TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			customer_id SERIAL PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			phone_number TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rentals (
			rental_id SERIAL PRIMARY KEY,
			customer_id INT REFERENCES customers(customer_id) ON DELETE CASCADE,
			movie_id INT REFERENCES movies(movie_id),
			rental_date DATE NOT NULL,
			return_date DATE
		)`,
	}
}

func (postgresDialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?"
}

// Rebind rewrites '?' placeholders as $1..$n. Question marks inside single
// quoted literals are left alone.
func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

type mysqlDialect struct{}

func (mysqlDialect) DriverName() string { return "mysql" }

// MySQL cannot put a UNIQUE index on an unbounded TEXT column, so email is a
// VARCHAR.
func (mysqlDialect) CreateTableStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS movies (
			movie_id INT AUTO_INCREMENT PRIMARY KEY,
			title TEXT NOT NULL,
			release_year INT NOT NULL,
			genre TEXT NOT NULL,
			director TEXT NOT NULL
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS customers (
			customer_id INT AUTO_INCREMENT PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			phone_number TEXT NOT NULL
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS rentals (
			rental_id INT AUTO_INCREMENT PRIMARY KEY,
			customer_id INT,
			movie_id INT,
			rental_date DATE NOT NULL,
			return_date DATE,
			FOREIGN KEY (customer_id) REFERENCES customers(customer_id) ON DELETE CASCADE,
			FOREIGN KEY (movie_id) REFERENCES movies(movie_id)
		) ENGINE=InnoDB`,
	}
}

func (mysqlDialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
}

func (mysqlDialect) Rebind(query string) string { return query }

type sqliteDialect struct{}

func (sqliteDialect) DriverName() string { return "sqlite3" }

func (sqliteDialect) CreateTableStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS movies (
			movie_id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			release_year INTEGER NOT NULL,
			genre TEXT NOT NULL,
			director TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			customer_id INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			phone_number TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rentals (
			rental_id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER REFERENCES customers(customer_id) ON DELETE CASCADE,
			movie_id INTEGER REFERENCES movies(movie_id),
			rental_date DATE NOT NULL,
			return_date DATE
		)`,
	}
}

func (sqliteDialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
}

func (sqliteDialect) Rebind(query string) string { return query }

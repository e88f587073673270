// Package config provides configuration types and parsing for rentalctl.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// Driver identifies the database/sql driver used for the connection pool.
type Driver string

const (
	Postgres Driver = "postgres"
	MySQL    Driver = "mysql"
	SQLite   Driver = "sqlite3"
)

// DefaultEnvFile is loaded when no --env-file flag is given. It may be absent.
const DefaultEnvFile = ".env"

// Environment variable names.
const (
	EnvDriver   = "RENTALCTL_DB_DRIVER"
	EnvHost     = "RENTALCTL_DB_HOST"
	EnvPort     = "RENTALCTL_DB_PORT"
	EnvName     = "RENTALCTL_DB_NAME"
	EnvUser     = "RENTALCTL_DB_USER"
	EnvPassword = "RENTALCTL_DB_PASSWORD"
	EnvSSLMode  = "RENTALCTL_DB_SSLMODE"
	EnvPath     = "RENTALCTL_DB_PATH"
)

// ErrUnknownDriver is returned by ParseDriver for unsupported driver names.
var ErrUnknownDriver = errors.New("unknown database driver")

// Config holds all configuration options for rentalctl.
type Config struct {
	Driver   Driver
	Host     string
	Port     string // empty means the driver's default port
	Name     string
	User     string
	Password string
	SSLMode  string
	Path     string // SQLite database path; empty means a temporary database
	EnvFile  string
	Verbose  bool
}

// Default returns the configuration used when nothing is set in the
// environment: a local PostgreSQL server on its default port with the stock
// superuser.
func Default() *Config {
	return &Config{
		Driver:  Postgres,
		Host:    "localhost",
		Name:    "postgres",
		User:    "postgres",
		SSLMode: "disable",
	}
}

// Load builds a Config from the environment, after loading envFile into it.
// A missing DefaultEnvFile is ignored; any other missing file is an error.
// Variables already present in the process environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !(errors.Is(err, fs.ErrNotExist) && envFile == DefaultEnvFile) {
				return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
			}
		}
	}

	cfg := Default()
	cfg.EnvFile = envFile

	if v := os.Getenv(EnvDriver); v != "" {
		driver, err := ParseDriver(v)
		if err != nil {
			return nil, err
		}
		cfg.Driver = driver
	}
	setFromEnv(&cfg.Host, EnvHost)
	setFromEnv(&cfg.Port, EnvPort)
	setFromEnv(&cfg.Name, EnvName)
	setFromEnv(&cfg.User, EnvUser)
	setFromEnv(&cfg.Password, EnvPassword)
	setFromEnv(&cfg.SSLMode, EnvSSLMode)
	setFromEnv(&cfg.Path, EnvPath)

	return cfg, nil
}

// DefaultPort returns the standard port of a network driver, or "" for SQLite.
func DefaultPort(driver Driver) string {
	switch driver {
	case Postgres:
		return "5432"
	case MySQL:
		return "3306"
	default:
		return ""
	}
}

// EffectivePort returns the configured port, falling back to the driver's
// default when none was set.
func (c *Config) EffectivePort() string {
	if c.Port != "" {
		return c.Port
	}
	return DefaultPort(c.Driver)
}

func setFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// ParseDriver converts a driver name to a Driver.
// Valid values: "postgres", "postgresql", "pg", "mysql", "sqlite", "sqlite3".
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("%w: %q (use 'postgres', 'mysql', or 'sqlite')", ErrUnknownDriver, s)
	}
}

// Validate checks if the configuration is usable for its driver.
func (c *Config) Validate() error {
	switch c.Driver {
	case SQLite:
		return nil
	case Postgres, MySQL:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Driver)
	}

	var missing []string
	if c.Host == "" {
		missing = append(missing, "host")
	}
	if c.Name == "" {
		missing = append(missing, "database name")
	}
	if c.User == "" {
		missing = append(missing, "user")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing connection settings: %s", strings.Join(missing, ", "))
	}

	if _, err := strconv.ParseUint(c.EffectivePort(), 10, 16); err != nil {
		return fmt.Errorf("invalid port %q: must be a number between 0 and 65535", c.EffectivePort())
	}
	return nil
}

// DSN returns the data source name for sql.Open.
func (c *Config) DSN() string {
	switch c.Driver {
	case MySQL:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = c.Host + ":" + c.EffectivePort()
		mc.DBName = c.Name
		mc.ParseTime = true
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN()
	case SQLite:
		u := url.URL{Scheme: "file", Opaque: escapePath(c.Path), RawQuery: "_foreign_keys=on"}
		return u.String()
	default:
		parts := []string{
			"host=" + quoteValue(c.Host),
			"port=" + quoteValue(c.EffectivePort()),
			"dbname=" + quoteValue(c.Name),
			"user=" + quoteValue(c.User),
		}
		if c.Password != "" {
			parts = append(parts, "password="+quoteValue(c.Password))
		}
		if c.SSLMode != "" {
			parts = append(parts, "sslmode="+quoteValue(c.SSLMode))
		}
		return strings.Join(parts, " ")
	}
}

// Redacted returns a DSN safe for logging.
func (c *Config) Redacted() string {
	switch c.Driver {
	case SQLite:
		return c.Path
	default:
		u := url.URL{Scheme: string(c.Driver), User: url.User(c.User), Host: c.Host + ":" + c.EffectivePort(), Path: "/" + c.Name}
		return u.String()
	}
}

// escapePath percent-encodes each segment of a filesystem path so that '?',
// '#' and '%' in file names survive as part of a SQLite URI.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// quoteValue quotes a lib/pq key/value parameter when it contains spaces,
// quotes or backslashes, or is empty.
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

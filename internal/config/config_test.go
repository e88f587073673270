package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDriver(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Driver
		wantErr bool
	}{
		{"postgres", "postgres", Postgres, false},
		{"postgresql", "postgresql", Postgres, false},
		{"pg uppercase", "PG", Postgres, false},
		{"mysql", "mysql", MySQL, false},
		{"mysql mixed case", "MySQL", MySQL, false},
		{"sqlite", "sqlite", SQLite, false},
		{"sqlite3", "sqlite3", SQLite, false},
		{"padded", "  sqlite ", SQLite, false},
		{"invalid", "oracle", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDriver(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDriver(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if err != nil && !errors.Is(err, ErrUnknownDriver) {
				t.Errorf("ParseDriver(%q) error = %v, want ErrUnknownDriver", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDriver(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "default postgres",
			config:  *Default(),
			wantErr: false,
		},
		{
			name:    "sqlite without path",
			config:  Config{Driver: SQLite},
			wantErr: false,
		},
		{
			name:    "mysql complete",
			config:  Config{Driver: MySQL, Host: "db", Port: "3306", Name: "rentals", User: "app"},
			wantErr: false,
		},
		{
			name:    "mysql without port",
			config:  Config{Driver: MySQL, Host: "db", Name: "rentals", User: "app"},
			wantErr: false,
		},
		{
			name:    "missing host",
			config:  Config{Driver: Postgres, Port: "5432", Name: "postgres", User: "postgres"},
			wantErr: true,
		},
		{
			name:    "non-numeric port",
			config:  Config{Driver: Postgres, Host: "localhost", Port: "pg", Name: "postgres", User: "postgres"},
			wantErr: true,
		},
		{
			name:    "port out of range",
			config:  Config{Driver: MySQL, Host: "localhost", Port: "70000", Name: "rentals", User: "app"},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			config:  Config{Driver: "oracle"},
			wantErr: true,
		},
		{
			name:    "invalid empty",
			config:  Config{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)

	envPath := filepath.Join(t.TempDir(), "rentals.env")
	content := strings.Join([]string{
		"RENTALCTL_DB_DRIVER=mysql",
		"RENTALCTL_DB_HOST=db.internal",
		"RENTALCTL_DB_NAME=rentals",
		"RENTALCTL_DB_USER=app",
		"RENTALCTL_DB_PASSWORD=s3cret",
	}, "\n")
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(envPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := &Config{
		Driver:   MySQL,
		Host:     "db.internal",
		Name:     "rentals",
		User:     "app",
		Password: "s3cret",
		SSLMode:  "disable",
		EnvFile:  envPath,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.EffectivePort(); got != "3306" {
		t.Errorf("EffectivePort() = %q, want 3306", got)
	}
}

func TestEffectivePort(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{"postgres default", Config{Driver: Postgres}, "5432"},
		{"mysql default", Config{Driver: MySQL}, "3306"},
		{"sqlite has none", Config{Driver: SQLite}, ""},
		{"explicit wins", Config{Driver: MySQL, Port: "13306"}, "13306"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.EffectivePort(); got != tt.want {
				t.Errorf("EffectivePort() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDriverChangeFollowsDefaultPort(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDriver, "mysql")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.Driver = Postgres

	if got := cfg.EffectivePort(); got != "5432" {
		t.Errorf("EffectivePort() = %q, want 5432 after switching to postgres", got)
	}
	if dsn := cfg.DSN(); !strings.Contains(dsn, "port=5432") {
		t.Errorf("DSN() = %q, want port=5432", dsn)
	}
}

func TestLoadProcessEnvWinsOverFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvHost, "from-process")

	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte("RENTALCTL_DB_HOST=from-file\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(envPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Host != "from-process" {
		t.Errorf("Host = %q, want %q", cfg.Host, "from-process")
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("Expected error for explicitly named missing env file, got nil")
	}

	// The default file is optional.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	if _, err := Load(DefaultEnvFile); err != nil {
		t.Errorf("Load(%q) error = %v, want nil", DefaultEnvFile, err)
	}
}

func TestLoadInvalidDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDriver, "oracle")

	_, err := Load("")
	if !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Load() error = %v, want ErrUnknownDriver", err)
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   []string
	}{
		{
			name:   "postgres",
			config: Config{Driver: Postgres, Host: "localhost", Port: "5432", Name: "postgres", User: "postgres", Password: "hockey 91", SSLMode: "disable"},
			want:   []string{"host=localhost", "port=5432", "dbname=postgres", "user=postgres", "password='hockey 91'", "sslmode=disable"},
		},
		{
			name:   "mysql",
			config: Config{Driver: MySQL, Host: "db", Port: "3306", Name: "rentals", User: "app", Password: "pw"},
			want:   []string{"app:pw@tcp(db:3306)/rentals", "parseTime=true", "charset=utf8mb4"},
		},
		{
			name:   "sqlite",
			config: Config{Driver: SQLite, Path: "/tmp/rentals.db"},
			want:   []string{"file:/tmp/rentals.db?_foreign_keys=on"},
		},
		{
			name:   "sqlite path with reserved characters",
			config: Config{Driver: SQLite, Path: "/tmp/we?ird#dir/50%.db"},
			want:   []string{"file:/tmp/we%3Fird%23dir/50%25.db?_foreign_keys=on"},
		},
		{
			name:   "postgres default port",
			config: Config{Driver: Postgres, Host: "localhost", Name: "postgres", User: "postgres"},
			want:   []string{"port=5432"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := tt.config.DSN()
			for _, part := range tt.want {
				if !strings.Contains(dsn, part) {
					t.Errorf("DSN() = %q, missing %q", dsn, part)
				}
			}
		})
	}
}

func TestRedactedHidesPassword(t *testing.T) {
	cfg := Default()
	cfg.Password = "hockey91"

	if got := cfg.Redacted(); strings.Contains(got, "hockey91") {
		t.Errorf("Redacted() = %q, leaks password", got)
	}
}

func TestQuoteValue(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"", "''"},
		{"with space", "'with space'"},
		{`it's`, `'it\'s'`},
		{`back\slash`, `'back\\slash'`},
	}

	for _, tt := range tests {
		if got := quoteValue(tt.input); got != tt.want {
			t.Errorf("quoteValue(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// clearEnv unsets every RENTALCTL_DB_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvDriver, EnvHost, EnvPort, EnvName, EnvUser, EnvPassword, EnvSSLMode, EnvPath} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

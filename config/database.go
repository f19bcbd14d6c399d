package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DatabaseType selects the storage backend.
type DatabaseType string

const (
	DatabaseTypeSQLite     DatabaseType = "sqlite"
	DatabaseTypePostgreSQL DatabaseType = "postgres"
)

const sqliteMemory = ":memory:"

// sqlite pragmas applied to every connection through the DSN.
const sqlitePragmas = "_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000"

var postgresSSLModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

// DatabaseConfig is the [database] table of the settings file.
type DatabaseConfig struct {
	Type     DatabaseType   `toml:"type"`
	SQLite   SQLiteConfig   `toml:"sqlite"`
	Postgres PostgresConfig `toml:"postgres"`
}

type SQLiteConfig struct {
	Path string `toml:"path"`
}

type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Database string `toml:"database"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	SSLMode  string `toml:"ssl_mode"`
	TimeZone string `toml:"time_zone"`
}

// GetDefaultDatabaseConfig returns a local sqlite file next to the working
// directory, with postgres defaults ready for DIET_DB_TYPE=postgres.
func GetDefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: "db/daily-diet.db"},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "daily_diet",
			Username: "daily_diet",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
	}
}

// GetDSN returns the connection string for the configured backend.
func (c *DatabaseConfig) GetDSN() string {
	if c.IsPostgreSQL() {
		return c.Postgres.dsn(c.Postgres.Password)
	}
	return c.SQLite.Path + "?" + sqlitePragmas
}

// RedactedDSN is GetDSN with the postgres password masked, for logs.
func (c *DatabaseConfig) RedactedDSN() string {
	if c.IsPostgreSQL() && c.Postgres.Password != "" {
		return c.Postgres.dsn("******")
	}
	return c.GetDSN()
}

func (p PostgresConfig) dsn(password string) string {
	pairs := []struct{ key, val string }{
		{"host", p.Host},
		{"port", fmt.Sprint(p.Port)},
		{"dbname", p.Database},
		{"user", p.Username},
		{"password", password},
		{"sslmode", p.SSLMode},
		{"TimeZone", p.TimeZone},
	}
	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		if kv.val == "" {
			continue
		}
		parts = append(parts, kv.key+"="+quoteDSNValue(kv.val))
	}
	return strings.Join(parts, " ")
}

// quoteDSNValue quotes a libpq keyword value when it is empty or holds
// spaces, quotes or backslashes.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// ValidateConfig reports every problem with the configuration at once.
func (c *DatabaseConfig) ValidateConfig() error {
	var errs []error
	switch c.Type {
	case DatabaseTypeSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			errs = append(errs, errors.New("sqlite path cannot be empty"))
		}
	case DatabaseTypePostgreSQL:
		p := c.Postgres
		if p.Host == "" {
			errs = append(errs, errors.New("postgres host cannot be empty"))
		}
		if p.Database == "" {
			errs = append(errs, errors.New("postgres database name cannot be empty"))
		}
		if p.Username == "" {
			errs = append(errs, errors.New("postgres username cannot be empty"))
		}
		if p.Port <= 0 || p.Port > 65535 {
			errs = append(errs, fmt.Errorf("postgres port must be between 1 and 65535, got %d", p.Port))
		}
		if p.SSLMode != "" && !slices.Contains(postgresSSLModes, p.SSLMode) {
			errs = append(errs, fmt.Errorf("postgres ssl_mode %q is not one of %s", p.SSLMode, strings.Join(postgresSSLModes, ", ")))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database type: %q", c.Type))
	}
	return errors.Join(errs...)
}

func (c *DatabaseConfig) IsPostgreSQL() bool {
	return c.Type == DatabaseTypePostgreSQL
}

func (c *DatabaseConfig) IsSQLite() bool {
	return c.Type == DatabaseTypeSQLite
}

// IsInMemory reports whether the SQLite database lives only in memory.
func (c *DatabaseConfig) IsInMemory() bool {
	return c.IsSQLite() && c.SQLite.Path == sqliteMemory
}

// EnsureDirectoryExists creates the parent directory of a file-backed sqlite
// database.
func (c *DatabaseConfig) EnsureDirectoryExists() error {
	if !c.IsSQLite() || c.IsInMemory() {
		return nil
	}
	return os.MkdirAll(filepath.Dir(c.SQLite.Path), 0o755)
}

// Package config loads the Daily Diet server settings from built-in defaults,
// an optional TOML file, an optional .env file and the process environment.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("DIET_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("DIET_DEBUG") == "true"
}

// GetLogFolder returns the folder for the file log backend. Empty disables it.
func GetLogFolder() string {
	return os.Getenv("DIET_LOG_FOLDER")
}

// Settings holds everything the web server needs at startup.
type Settings struct {
	Listen             string         `toml:"listen"`
	Port               int            `toml:"port"`
	SecretKey          string         `toml:"secret_key"`
	SessionMaxAge      int            `toml:"session_max_age"` // minutes
	RedisAddr          string         `toml:"redis_addr"`
	LoginRateLimit     int            `toml:"login_rate_limit"` // attempts per minute per client IP
	AuditRetentionDays int            `toml:"audit_retention_days"`
	CertFile           string         `toml:"cert_file"`
	KeyFile            string         `toml:"key_file"`
	Database           DatabaseConfig `toml:"database"`
}

// DefaultSettings returns the settings used when nothing else is configured.
func DefaultSettings() *Settings {
	return &Settings{
		Port:               8080,
		SessionMaxAge:      24 * 60,
		LoginRateLimit:     10,
		AuditRetentionDays: 90,
		Database:           *GetDefaultDatabaseConfig(),
	}
}

// LoadSettings builds the effective settings. path may be empty; otherwise it
// names a TOML file whose values override the defaults. Environment variables
// (including those from a .env file in the working directory) win over both.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	if path == "" {
		path = os.Getenv("DIET_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := s.applyEnv(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("DIET_LISTEN", &s.Listen)
	setString("DIET_SECRET_KEY", &s.SecretKey)
	setString("DIET_REDIS_ADDR", &s.RedisAddr)
	setString("DIET_CERT_FILE", &s.CertFile)
	setString("DIET_KEY_FILE", &s.KeyFile)

	if v, ok := os.LookupEnv("DIET_DB_TYPE"); ok {
		s.Database.Type = DatabaseType(v)
	}
	setString("DIET_DB_PATH", &s.Database.SQLite.Path)
	setString("DIET_DB_HOST", &s.Database.Postgres.Host)
	setString("DIET_DB_NAME", &s.Database.Postgres.Database)
	setString("DIET_DB_USER", &s.Database.Postgres.Username)
	setString("DIET_DB_PASSWORD", &s.Database.Postgres.Password)
	setString("DIET_DB_SSLMODE", &s.Database.Postgres.SSLMode)
	setString("DIET_DB_TIMEZONE", &s.Database.Postgres.TimeZone)

	for key, dst := range map[string]*int{
		"DIET_PORT":                 &s.Port,
		"DIET_SESSION_MAX_AGE":      &s.SessionMaxAge,
		"DIET_LOGIN_RATE_LIMIT":     &s.LoginRateLimit,
		"DIET_AUDIT_RETENTION_DAYS": &s.AuditRetentionDays,
		"DIET_DB_PORT":              &s.Database.Postgres.Port,
	} {
		if err := setInt(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the settings for values the server cannot start with.
func (s *Settings) Validate() error {
	if s.Port <= 0 || s.Port > math.MaxUint16 {
		return fmt.Errorf("port is not a valid port: %d", s.Port)
	}
	if s.SessionMaxAge <= 0 {
		return fmt.Errorf("session max age must be positive: %d", s.SessionMaxAge)
	}
	if s.LoginRateLimit < 0 {
		return fmt.Errorf("login rate limit cannot be negative: %d", s.LoginRateLimit)
	}
	if (s.CertFile == "") != (s.KeyFile == "") {
		return errors.New("cert file and key file must be set together")
	}
	return s.Database.ValidateConfig()
}

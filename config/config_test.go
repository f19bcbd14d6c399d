package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings("")
	require.NoError(t, err)

	assert.Equal(t, 8080, s.Port)
	assert.Equal(t, 24*60, s.SessionMaxAge)
	assert.True(t, s.Database.IsSQLite())
	assert.Equal(t, "db/daily-diet.db", s.Database.SQLite.Path)
}

func TestLoadSettingsFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diet.toml")
	content := `
port = 9000
login_rate_limit = 3

[database]
type = "postgres"

[database.postgres]
host = "db.internal"
port = 5433
database = "diet"
username = "diet"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("DIET_PORT", "9100")
	t.Setenv("DIET_DB_PASSWORD", "s3cret")

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, s.Port, "environment wins over file")
	assert.Equal(t, 3, s.LoginRateLimit)
	assert.True(t, s.Database.IsPostgreSQL())
	assert.Equal(t, "db.internal", s.Database.Postgres.Host)
	assert.Equal(t, 5433, s.Database.Postgres.Port)
	assert.Equal(t, "s3cret", s.Database.Postgres.Password)
	assert.Contains(t, s.Database.GetDSN(), "host=db.internal")
	assert.Contains(t, s.Database.GetDSN(), "port=5433")
}

func TestLoadSettingsRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"non numeric port", "DIET_PORT", "http"},
		{"port out of range", "DIET_PORT", "70000"},
		{"unknown db type", "DIET_DB_TYPE", "oracle"},
		{"empty sqlite path", "DIET_DB_PATH", ""},
		{"negative rate limit", "DIET_LOGIN_RATE_LIMIT", "-1"},
		{"cert without key", "DIET_CERT_FILE", "/tmp/cert.pem"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := LoadSettings("")
			assert.Error(t, err)
		})
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	c := GetDefaultDatabaseConfig()
	c.SQLite.Path = ":memory:"
	assert.True(t, c.IsInMemory())
	assert.Contains(t, c.GetDSN(), "_foreign_keys=on")
	assert.NoError(t, c.EnsureDirectoryExists())
}

func TestPostgresDSN(t *testing.T) {
	c := GetDefaultDatabaseConfig()
	c.Type = DatabaseTypePostgreSQL
	c.Postgres.Password = `it's a secret`

	assert.Equal(t,
		`host=localhost port=5432 dbname=daily_diet user=daily_diet password='it\'s a secret' sslmode=disable TimeZone=UTC`,
		c.GetDSN())
	assert.NotContains(t, c.RedactedDSN(), "secret")
	assert.Contains(t, c.RedactedDSN(), "password=******")

	c.Postgres.Password = ""
	assert.NotContains(t, c.GetDSN(), "password=")
	assert.Equal(t, c.GetDSN(), c.RedactedDSN())
}

func TestValidateDatabaseConfigReportsAll(t *testing.T) {
	c := GetDefaultDatabaseConfig()
	c.Type = DatabaseTypePostgreSQL
	c.Postgres.Host = ""
	c.Postgres.Port = 0
	c.Postgres.SSLMode = "sometimes"

	err := c.ValidateConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host cannot be empty")
	assert.Contains(t, err.Error(), "port must be between 1 and 65535")
	assert.Contains(t, err.Error(), `ssl_mode "sometimes"`)

	assert.NoError(t, GetDefaultDatabaseConfig().ValidateConfig())
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:               "8080",
		Env:                "development",
		DBDriver:           DriverPostgres,
		DBPassword:         "password",
		DBSSLMode:          "disable",
		PageSize:           2,
		TracingSampleRatio: 1,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"sqlite without path", func(c *Config) { c.DBDriver = DriverSQLite; c.DBSQLitePath = "" }, true},
		{"sqlite with path", func(c *Config) { c.DBDriver = DriverSQLite; c.DBSQLitePath = "blog.db" }, false},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, true},
		{"sample ratio above one", func(c *Config) { c.TracingSampleRatio = 1.5 }, true},
		{"production default password", func(c *Config) { c.Env = "production" }, true},
		{"production strong password", func(c *Config) { c.Env = "production"; c.DBPassword = "s3cure-and-long" }, false},
		{"production sqlite ignores db password", func(c *Config) {
			c.Env = "prod"
			c.DBDriver = DriverSQLite
			c.DBSQLitePath = "blog.db"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_DefaultsAndNormalization(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("DB_SQLITE_PATH", ":memory:")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("SITE_URL", " https://blog.example/ ")

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, c.DBDriver)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "https://blog.example", c.SiteURL)
	assert.Equal(t, 2, c.PageSize)
	assert.Equal(t, "8375", c.Port)
	assert.False(t, c.IsProduction())
}

func TestLoadConfig_PageSizeFromEnv(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("PAGE_SIZE", "10")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, c.PageSize)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	defer viper.Reset()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RATE_LIMIT_WRITES=7\n"), 0o600))
	t.Chdir(dir)

	t.Setenv("APP_ENV", "test")
	// Registers cleanup, then clears the variable so .env can supply it.
	t.Setenv("RATE_LIMIT_WRITES", "")
	require.NoError(t, os.Unsetenv("RATE_LIMIT_WRITES"))

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 7, c.RateLimitWrites)
}

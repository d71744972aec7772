package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfig_Validate(t *testing.T) {
	base := Config{
		Port:       "8460",
		Env:        "development",
		JWTSecret:  "secure-secret-at-least-32-chars-long",
		JWTTTL:     30 * time.Minute,
		DBPassword: "secure-password",
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid development", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"zero token ttl", func(c *Config) { c.JWTTTL = 0 }, true},
		{"production with default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"production with short secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, true},
		{"production with weak db password", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}, true},
		{"valid production", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("JWT_TTL")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("JWT_TTL", "45m")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, c.JWTTTL)
	assert.Equal(t, "development", c.Env)
}

func TestLoadConfig_FromFile(t *testing.T) {
	defer viper.Reset()

	dir := t.TempDir()
	raw, err := yaml.Marshal(map[string]any{
		"PORT":      "9999",
		"DB_NAME":   "inkwell_test",
		"SMTP_HOST": "smtp.example.com",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), raw, 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9999", c.Port)
	assert.Equal(t, "inkwell_test", c.DBName)
	assert.Equal(t, "smtp.example.com", c.SMTPHost)
}

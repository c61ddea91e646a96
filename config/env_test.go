package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "PORT", "BACKEND_TIMEOUT", "ALLOW_GUEST", "REDIS_URL", "REDIS_ADDR", "DATABASE_URL", "DB_HOST", "SMTP_HOST"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 5*time.Second, cfg.OrderPollInterval)
	assert.True(t, cfg.AllowGuest)
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.DatabaseEnabled())
	assert.False(t, cfg.SMTPEnabled())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("APP_PORT", "")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("ORDER_POLL_INTERVAL", "-1s")
	t.Setenv("ALLOW_GUEST", "false")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("APP_ENV", "production")

	cfg := LoadConfig()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 5*time.Second, cfg.OrderPollInterval)
	assert.False(t, cfg.AllowGuest)
	assert.True(t, cfg.RedisEnabled())
	assert.True(t, cfg.IsProduction())
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "shop", DBSSLMode: "disable"}
	assert.Contains(t, cfg.DSN(), "db")

	cfg.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", cfg.DSN())
}

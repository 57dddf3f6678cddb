package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("AI_TIMEOUT", "")
	t.Setenv("REDIS_DB", "")

	cfg := Load()

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 120*time.Second, cfg.AITimeout)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, "@every 15m", cfg.AttemptExpirySchedule)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_TTL", "forever")
	t.Setenv("REDIS_DB", "two")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 0, cfg.RedisDB)
}

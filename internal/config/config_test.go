package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, "admin@devrush.com", cfg.AdminEmail)
	assert.Equal(t, "admin123", cfg.AdminPassword)
	assert.True(t, cfg.VerifyPasswords)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("VERIFY_PASSWORDS", "false")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.False(t, cfg.VerifyPasswords)
}

func TestParse_InvalidValue(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Parse()
	assert.Error(t, err)
}

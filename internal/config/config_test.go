package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:4000", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Minute, cfg.Checkout.SessionTTL)
	assert.Equal(t, 24*time.Hour, cfg.Countries.CacheTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.RedisAddr())
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Server.Port = 0
	cfg.Backend.BaseURL = ""
	cfg.Checkout.SessionTTL = 0

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "backend.base_url")
	assert.Contains(t, err.Error(), "checkout.session_ttl")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CHECKOUT_INSTANCE_ID", "checkout-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "checkout-test", cfg.InstanceID)
}

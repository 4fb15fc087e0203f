package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	t.Setenv("CHECKOUT_TOTAL_TOLERANCE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 0.01, cfg.Checkout.TotalTolerance)
	assert.Equal(t, 3, cfg.Cart.MaxRetries)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, 2*time.Minute, cfg.Checkout.FinalizeRecoveryGrace)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("CART_MAX_RETRIES", "5")
	t.Setenv("IDEMPOTENCY_TTL", "1h")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "cache:6380", cfg.Redis.Addr())
	assert.Equal(t, 5, cfg.Cart.MaxRetries)
	assert.Equal(t, time.Hour, cfg.Redis.IdempotencyTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestParseHelpers_FallBackOnGarbage(t *testing.T) {
	assert.Equal(t, 7, parseInt("seven", 7))
	assert.Equal(t, 0.5, parseFloat("-1", 0.5))
	assert.Equal(t, time.Second, parseDuration("soon", time.Second))
	assert.Empty(t, parseSlice(""))
}

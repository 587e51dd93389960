package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	require.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	require.False(t, cfg.App.IsProduction())

	require.Equal(t, 7, cfg.Auth.TokenTTLDays)
	require.Equal(t, 12, cfg.Auth.BcryptCost)
	require.Equal(t, 60, cfg.Auth.ResetTokenTTLMinutes)

	// No insecure fallback: an unset secret stays empty and fails at token
	// issue time instead.
	require.Empty(t, cfg.Auth.JWTSecret)

	require.Equal(t, 5*time.Minute, cfg.Content.CacheTTL())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("AUTH_TOKEN_TTL_DAYS", "14")
	t.Setenv("CONTENT_CACHE_TTL_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	require.True(t, cfg.App.IsProduction())
	require.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	require.Equal(t, "from-env", cfg.Auth.JWTSecret)
	require.Equal(t, 14, cfg.Auth.TokenTTLDays)
	require.Equal(t, time.Duration(0), cfg.Content.CacheTTL())
}

func TestLoad_MalformedIntFallsBack(t *testing.T) {
	t.Setenv("AUTH_BCRYPT_COST", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 12, cfg.Auth.BcryptCost)
}

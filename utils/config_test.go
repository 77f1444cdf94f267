package utils_test

import (
	"testing"
	"time"

	"authdemo/utils"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "SESSION_SECRET", "REDIS_URL", "DATABASE_URL", "SENDGRID_API_KEY", "NOTIFY_FROM", "LOGIN_IP_LIMIT", "LOGIN_MAX_FAILURES", "LOGIN_LOCKOUT", "TRUST_PROXY"} {
		t.Setenv(key, "")
	}
	t.Setenv("APP_ENV", "production")

	cfg, loadedDotenv, err := utils.LoadConfig()
	require.NoError(t, err)
	require.False(t, loadedDotenv)
	require.True(t, cfg.IsProduction())
	require.Equal(t, ":8080", cfg.Addr())
	require.Equal(t, 30, cfg.LoginIPLimit)
	require.Equal(t, 5, cfg.LoginMaxFailures)
	require.Equal(t, 15*time.Minute, cfg.LoginLockout)
	require.Empty(t, cfg.SessionSecret)
	require.Empty(t, cfg.RedisURL)
	require.False(t, cfg.TrustProxy)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("PORT", "9000")
	t.Setenv("LOGIN_IP_LIMIT", "0")
	t.Setenv("LOGIN_MAX_FAILURES", "3")
	t.Setenv("LOGIN_LOCKOUT", "90s")
	t.Setenv("TRUST_PROXY", "true")

	cfg, _, err := utils.LoadConfig()
	require.NoError(t, err)
	require.False(t, cfg.IsProduction())
	require.Equal(t, ":9000", cfg.Addr())
	require.Equal(t, 0, cfg.LoginIPLimit)
	require.Equal(t, 3, cfg.LoginMaxFailures)
	require.Equal(t, 90*time.Second, cfg.LoginLockout)
	require.True(t, cfg.TrustProxy)
}

func TestLoadConfigLockoutOnlyMattersWithLimiter(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOGIN_MAX_FAILURES", "0")
	t.Setenv("LOGIN_LOCKOUT", "0s")

	cfg, _, err := utils.LoadConfig()
	require.NoError(t, err)
	require.Zero(t, cfg.LoginMaxFailures)
	require.Zero(t, cfg.LoginLockout)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "Non numeric limit", key: "LOGIN_IP_LIMIT", value: "lots"},
		{name: "Negative failures", key: "LOGIN_MAX_FAILURES", value: "-1"},
		{name: "Bad duration", key: "LOGIN_LOCKOUT", value: "forever"},
		{name: "Zero lockout with failure limit", key: "LOGIN_LOCKOUT", value: "0s"},
		{name: "Bad trust proxy flag", key: "TRUST_PROXY", value: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", "production")
			t.Setenv(tt.key, tt.value)
			_, _, err := utils.LoadConfig()
			require.Error(t, err)
		})
	}
}

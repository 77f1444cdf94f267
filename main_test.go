package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"authdemo/models"
	"authdemo/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *utils.Config {
	return &utils.Config{
		Environment:      "test",
		Port:             "0",
		NotifyFrom:       "donotreply@example.com",
		LoginIPLimit:     30,
		LoginMaxFailures: 5,
		LoginLockout:     15 * time.Minute,
	}
}

func TestNewAppWithoutIntegrations(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "demo@example.com")
}

func TestNewAppWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisURL = "redis://" + mr.Addr()

	a, err := newApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()
	require.Len(t, a.closers, 1)
}

func TestNewAppRejectsBadRedisURL(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURL = "not a url"

	_, err := newApp(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}

func TestNewAppRejectsShortSecret(t *testing.T) {
	cfg := testConfig()
	cfg.SessionSecret = "short"

	_, err := newApp(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}

func TestDecodeSessionCommand(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("SESSION_SECRET", "")

	value, err := utils.JSONCodec{}.Encode(models.Identity{ID: "1", Email: "demo@example.com", Name: "Demo User"}, time.Hour)
	require.NoError(t, err)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"decode-session", value})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	require.Contains(t, out.String(), `"email": "demo@example.com"`)
	require.Contains(t, out.String(), `"name": "Demo User"`)

	rootCmd.SetArgs([]string{"decode-session", "garbage"})
	require.ErrorIs(t, rootCmd.ExecuteContext(context.Background()), utils.ErrInvalidSession)
}

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadAppliesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TECHBRIDGE_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, DefaultPolicy(), cfg.Policy)
	require.Equal(t, 5*time.Minute, cfg.DashboardCacheTTL)
	require.Equal(t, time.Minute, cfg.QuizSubmitRateWindow)
	require.Equal(t, "techbridge", cfg.EventChannelBase)
	require.False(t, cfg.SeedEnabled)
}

func TestLoadReadsPolicyOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TECHBRIDGE_JWT_SECRET", "secret")
	t.Setenv("TECHBRIDGE_POLICY_QUIZ_MAX_ATTEMPTS", "5")
	t.Setenv("TECHBRIDGE_POLICY_MAX_LATE_DAYS", "3")
	t.Setenv("TECHBRIDGE_APP_PORT", ":9000")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Policy.QuizMaxAttempts)
	require.Equal(t, 3, cfg.Policy.MaxLateDays)
	require.Equal(t, ":9000", cfg.HTTPAddress())
}

func TestLoadRejectsInvalidInput(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load()
	require.ErrorContains(t, err, "jwt secret")

	t.Setenv("TECHBRIDGE_JWT_SECRET", "secret")
	t.Setenv("TECHBRIDGE_POLICY_QUIZ_PASSING_SCORE", "140")

	_, err = Load()
	require.ErrorContains(t, err, "passing_score")

	t.Setenv("TECHBRIDGE_POLICY_QUIZ_PASSING_SCORE", "60")
	t.Setenv("TECHBRIDGE_DASHBOARD_CACHE_TTL", "soon")
	_, err = Load()
	require.ErrorContains(t, err, "dashboard cache ttl")
}

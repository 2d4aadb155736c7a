package rconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/rconfig"
)

func clearEnv(t *testing.T) {
	t.Helper()
	vars := []string{
		"RASK_REGISTRY_SOURCE", "RASK_RESOLUTION_CACHE",
		"RASK_BENCH_FLOOR_NANOS", "RASK_LINT_SET", "RASK_COLOR",
	}
	for _, v := range vars {
		old, had := os.LookupEnv(v)
		os.Unsetenv(v)
		t.Cleanup(func() {
			if had {
				os.Setenv(v, old)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := rconfig.Load("", rconfig.FlagOverrides{})
	require.NoError(t, err)
	assert.Equal(t, "recommended", cfg.LintDefaultSet)
	assert.Equal(t, "auto", cfg.ColorMode)
	assert.Equal(t, int64(100_000_000), cfg.BenchFloorNanos)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	os.Setenv("RASK_LINT_SET", "strict")
	os.Setenv("RASK_COLOR", "never")

	cfg, err := rconfig.Load("", rconfig.FlagOverrides{})
	require.NoError(t, err)
	assert.Equal(t, "strict", cfg.LintDefaultSet)
	assert.Equal(t, "never", cfg.ColorMode)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	os.Setenv("RASK_COLOR", "never")

	cfg, err := rconfig.Load("", rconfig.FlagOverrides{ColorMode: "always"})
	require.NoError(t, err)
	assert.Equal(t, "always", cfg.ColorMode)
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envPath := filepath.Join(dir, "rask.env")
	require.NoError(t, os.WriteFile(envPath, []byte("RASK_LINT_SET=from-dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("RASK_LINT_SET") })

	cfg, err := rconfig.Load(envPath, rconfig.FlagOverrides{})
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.LintDefaultSet)
}

func TestLoadMissingDotEnvIsNotAnError(t *testing.T) {
	clearEnv(t)
	cfg, err := rconfig.Load(filepath.Join(t.TempDir(), "missing.env"), rconfig.FlagOverrides{})
	require.NoError(t, err)
	assert.Equal(t, "recommended", cfg.LintDefaultSet)
}

func TestNewLoggerRespectsDebugLevel(t *testing.T) {
	infoLogger := rconfig.NewLogger(false)
	require.NotNil(t, infoLogger)
	assert.False(t, infoLogger.Enabled(nil, -4)) // slog.LevelDebug

	debugLogger := rconfig.NewLogger(true)
	require.NotNil(t, debugLogger)
	assert.True(t, debugLogger.Enabled(nil, -4))
}

// Package rconfig implements §2a's configuration loading and the
// process-wide logger that cmd/rask's root command builds and writes
// to; the compiler phases take no logger. It generalizes the teacher's env-var-only internal/config package
// (LoadConfig reading MORFX_* variables with hardcoded fallbacks) into
// a four-tier precedence chain: CLI flags > RASK_* environment
// variables (optionally loaded from a .env/rask.env file via godotenv)
// > ~/.rask/config.yaml > compiled-in defaults.
package rconfig

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every value a rask invocation can tune, mirroring the
// teacher's flat Config struct shape (internal/config/config.go) rather
// than a nested per-subsystem tree — there is one process, one config.
type Config struct {
	RegistrySource  string `yaml:"registry_source"`
	ResolutionCache string `yaml:"resolution_cache"`
	BenchFloorNanos int64  `yaml:"bench_floor_nanos"`
	LintDefaultSet  string `yaml:"lint_default_set"`
	ColorMode       string `yaml:"color_mode"` // "auto", "always", "never"
	JSONOutput      bool   `yaml:"-"`          // CLI-flag only, never persisted
}

// Defaults returns the compiled-in bottom tier of the precedence chain.
func Defaults() Config {
	return Config{
		RegistrySource:  "https://registry.rask-lang.dev/",
		ResolutionCache: defaultCachePath(),
		BenchFloorNanos: 100_000_000, // 100ms, §4.13's calibration floor
		LintDefaultSet:  "recommended",
		ColorMode:       "auto",
	}
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rask-cache.db"
	}
	return filepath.Join(home, ".rask", "cache.db")
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rask", "config.yaml")
}

// FlagOverrides carries whichever CLI flags the caller actually set;
// zero-value fields mean "not set" and fall through to the next tier.
// cmd/rask's root command sets only JSONOutput (from `--json`); no CLI
// flag is bound to the other fields.
type FlagOverrides struct {
	RegistrySource  string
	ResolutionCache string
	LintDefaultSet  string
	ColorMode       string
	JSONOutput      *bool
}

// Load resolves a Config by layering, in increasing precedence:
// defaults, ~/.rask/config.yaml, RASK_*-prefixed environment variables
// (after loading envFile into the process environment if it exists —
// a no-op, not an error, when envFile is absent), then flags.
func Load(envFile string, flags FlagOverrides) (Config, error) {
	cfg := Defaults()

	if path := userConfigPath(); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	if envFile != "" {
		_ = godotenv.Load(envFile) // missing .env is not an error
	}
	applyEnv(&cfg)
	applyFlags(&cfg, flags)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("RASK_REGISTRY_SOURCE"); ok {
		cfg.RegistrySource = v
	}
	if v, ok := os.LookupEnv("RASK_RESOLUTION_CACHE"); ok {
		cfg.ResolutionCache = v
	}
	if v, ok := os.LookupEnv("RASK_BENCH_FLOOR_NANOS"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.BenchFloorNanos = n
		}
	}
	if v, ok := os.LookupEnv("RASK_LINT_SET"); ok {
		cfg.LintDefaultSet = v
	}
	if v, ok := os.LookupEnv("RASK_COLOR"); ok {
		cfg.ColorMode = v
	}
}

func applyFlags(cfg *Config, f FlagOverrides) {
	if f.RegistrySource != "" {
		cfg.RegistrySource = f.RegistrySource
	}
	if f.ResolutionCache != "" {
		cfg.ResolutionCache = f.ResolutionCache
	}
	if f.LintDefaultSet != "" {
		cfg.LintDefaultSet = f.LintDefaultSet
	}
	if f.ColorMode != "" {
		cfg.ColorMode = f.ColorMode
	}
	if f.JSONOutput != nil {
		cfg.JSONOutput = *f.JSONOutput
	}
}

package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration.
type Config struct {
	// SampleMaxChars caps the size of a single ingested content sample.
	// The engine core imposes no limit; the ops layer rejects larger
	// samples so callers cannot feed multi-megabyte text into the regex
	// accumulators.
	SampleMaxChars int `json:"sample_max_chars" env:"HALO_SAMPLE_MAX_CHARS"`

	// WatchDebounceMs is the quiet period the spool watcher waits after a
	// write burst before ingesting appended lines.
	WatchDebounceMs int `json:"watch_debounce_ms,omitempty" env:"HALO_WATCH_DEBOUNCE_MS"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized. 0 means the sql.DB
	// default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" env:"HALO_DB_MAX_OPEN_CONNS"`

	// DBMaxIdleConns limits idle database connections. 0 means default.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" env:"HALO_DB_MAX_IDLE_CONNS"`

	// DisabledTools is a list of MCP tool names to exclude from
	// registration. Unknown names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty" env:"HALO_DISABLED_TOOLS" envSeparator:","`

	// BaseDir is the directory Load read from. Not part of the file; kept so
	// downstream layers can locate sibling resources (pattern library, spool).
	BaseDir string `json:"-" env:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SampleMaxChars:  20000,
		WatchDebounceMs: 200,
	}
}

// Load loads configuration from baseDir/config.json with environment
// overrides applied last (HALO_* variables win over the file). Returns the
// defaults if the file doesn't exist. The baseDir parameter allows tests to
// use t.TempDir() instead of ~/.halo.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.BaseDir = baseDir
	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs. Overlay values take precedence
// for scalars; slices are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.SampleMaxChars = overlay.SampleMaxChars
	if result.SampleMaxChars == 0 {
		result.SampleMaxChars = base.SampleMaxChars
	}

	result.WatchDebounceMs = overlay.WatchDebounceMs
	if result.WatchDebounceMs == 0 {
		result.WatchDebounceMs = base.WatchDebounceMs
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices and removes duplicates and blanks.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

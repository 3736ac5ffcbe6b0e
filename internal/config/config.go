package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jameslz/rlzap/internal/errors"
)

// ProjectFileName is the per-directory configuration file.
const ProjectFileName = ".rlzap.yaml"

// Config represents the complete rlzap configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Build   BuildConfig   `yaml:"build" json:"build"`
	Query   QueryConfig   `yaml:"query" json:"query"`
	Input   InputConfig   `yaml:"input" json:"input"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// BuildConfig configures index construction.
type BuildConfig struct {
	// MinMatch is the shortest run the greedy matcher turns into a copy phrase.
	MinMatch int `yaml:"min_match" json:"min_match"`

	// MaxCandidates bounds the reference positions tried per seed.
	MaxCandidates int `yaml:"max_candidates" json:"max_candidates"`

	// Codec is the literal payload codec used when writing index files:
	// "none", "snappy" or "zstd".
	Codec string `yaml:"codec" json:"codec"`

	// Workers bounds how many targets are built, or ranges verified, at once.
	Workers int `yaml:"workers" json:"workers"`
}

// QueryConfig configures the block cache used by query commands.
type QueryConfig struct {
	BlockSize   int `yaml:"block_size" json:"block_size"`
	CacheBlocks int `yaml:"cache_blocks" json:"cache_blocks"`
}

// InputConfig configures how sequence files are read.
type InputConfig struct {
	// Format is "auto", "text" or "binary".
	Format string `yaml:"format" json:"format"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	File      string `yaml:"file" json:"file"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	// Textfile is a Prometheus textfile-collector path written on exit.
	// Empty disables export.
	Textfile string `yaml:"textfile" json:"textfile"`
}

// NewConfig returns a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Build: BuildConfig{
			MinMatch:      16,
			MaxCandidates: 32,
			Codec:         "zstd",
			Workers:       runtime.NumCPU(),
		},
		Query: QueryConfig{
			BlockSize:   4096,
			CacheBlocks: 256,
		},
		Input: InputConfig{
			Format: "auto",
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/rlzap/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/rlzap/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rlzap", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "rlzap", "config.yaml")
	}
	return filepath.Join(home, ".config", "rlzap", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration for the working directory dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/rlzap/config.yaml)
//  3. explicit, when set, otherwise .rlzap.yaml in dir
//  4. Environment variables (RLZAP_*)
//
// A missing explicit file is an error; missing implicit files are not.
func Load(dir, explicit string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	switch {
	case explicit != "":
		if !fileExists(explicit) {
			return nil, errors.New(errors.ErrCodeConfigNotFound, "config file not found: "+explicit, nil).
				WithSuggestion("Run 'rlzap config init' to create one")
		}
		if err := cfg.loadYAML(explicit); err != nil {
			return nil, err
		}
	case fileExists(filepath.Join(dir, ProjectFileName)):
		if err := cfg.loadYAML(filepath.Join(dir, ProjectFileName)); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.ConfigError("failed to read config file "+path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return errors.ConfigError("failed to parse config file "+path, err).
			WithDetail("path", path)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Build.MinMatch != 0 {
		c.Build.MinMatch = other.Build.MinMatch
	}
	if other.Build.MaxCandidates != 0 {
		c.Build.MaxCandidates = other.Build.MaxCandidates
	}
	if other.Build.Codec != "" {
		c.Build.Codec = other.Build.Codec
	}
	if other.Build.Workers != 0 {
		c.Build.Workers = other.Build.Workers
	}

	if other.Query.BlockSize != 0 {
		c.Query.BlockSize = other.Query.BlockSize
	}
	if other.Query.CacheBlocks != 0 {
		c.Query.CacheBlocks = other.Query.CacheBlocks
	}

	if other.Input.Format != "" {
		c.Input.Format = other.Input.Format
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}

	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}
}

// applyEnvOverrides applies RLZAP_* variables. Malformed integers are
// reported rather than ignored.
func (c *Config) applyEnvOverrides() error {
	ints := []struct {
		env string
		dst *int
	}{
		{"RLZAP_MIN_MATCH", &c.Build.MinMatch},
		{"RLZAP_MAX_CANDIDATES", &c.Build.MaxCandidates},
		{"RLZAP_WORKERS", &c.Build.Workers},
		{"RLZAP_BLOCK_SIZE", &c.Query.BlockSize},
		{"RLZAP_CACHE_BLOCKS", &c.Query.CacheBlocks},
	}
	for _, v := range ints {
		s := os.Getenv(v.env)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return errors.ConfigError(fmt.Sprintf("%s must be an integer, got %q", v.env, s), err)
		}
		*v.dst = n
	}

	if v := os.Getenv("RLZAP_CODEC"); v != "" {
		c.Build.Codec = v
	}
	if v := os.Getenv("RLZAP_INPUT_FORMAT"); v != "" {
		c.Input.Format = v
	}
	if v := os.Getenv("RLZAP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("RLZAP_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("RLZAP_METRICS_FILE"); v != "" {
		c.Metrics.Textfile = v
	}
	return nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	// min_match of 1 cannot seed: a seed hashes min_match-1 deltas.
	if c.Build.MinMatch < 2 {
		return invalid("build.min_match must be at least 2, got %d", c.Build.MinMatch)
	}
	if c.Build.MaxCandidates < 1 {
		return invalid("build.max_candidates must be positive, got %d", c.Build.MaxCandidates)
	}
	if c.Build.Workers < 1 {
		return invalid("build.workers must be positive, got %d", c.Build.Workers)
	}
	validCodecs := map[string]bool{"none": true, "snappy": true, "zstd": true}
	if !validCodecs[strings.ToLower(c.Build.Codec)] {
		return invalid("build.codec must be 'none', 'snappy' or 'zstd', got %s", c.Build.Codec)
	}

	if c.Query.BlockSize < 1 {
		return invalid("query.block_size must be positive, got %d", c.Query.BlockSize)
	}
	if c.Query.CacheBlocks < 1 {
		return invalid("query.cache_blocks must be positive, got %d", c.Query.CacheBlocks)
	}

	validFormats := map[string]bool{"auto": true, "text": true, "binary": true}
	if !validFormats[strings.ToLower(c.Input.Format)] {
		return invalid("input.format must be 'auto', 'text' or 'binary', got %s", c.Input.Format)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return invalid("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxFiles < 0 {
		return invalid("logging.max_size_mb and logging.max_files must be non-negative")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.Newf(errors.ErrCodeConfigInvalid, format, args...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// JSON returns the configuration as indented JSON.
func (c *Config) JSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

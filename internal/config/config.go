// Package config loads and persists the jellymatch configuration file and
// translates it into the typed configs of the client and matching layers.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Nomadcxx/jellymatch/internal/circuit"
	"github.com/Nomadcxx/jellymatch/internal/match"
	"github.com/Nomadcxx/jellymatch/internal/tmdb"
)

type Config struct {
	TMDB     TMDBConfig     `mapstructure:"tmdb"`
	Client   ClientConfig   `mapstructure:"client"`
	Matching MatchingConfig `mapstructure:"matching"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// TMDBConfig contains catalog API access settings
type TMDBConfig struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	Language string `mapstructure:"language"`
}

// ClientConfig contains rate limiting, concurrency, retry, and circuit
// breaker settings for the resilient client
type ClientConfig struct {
	RatePerSecond    float64              `mapstructure:"rate_per_second"`
	Burst            int                  `mapstructure:"burst"`
	ConcurrencyLimit int                  `mapstructure:"concurrency_limit"`
	MaxRetries       int                  `mapstructure:"max_retries"`
	RetryBaseDelayMS int                  `mapstructure:"retry_base_delay_ms"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	WindowSize            int `mapstructure:"window_size"`
	ErrorThresholdPercent int `mapstructure:"error_threshold_percent"`
	MinSamples            int `mapstructure:"min_samples"`
	CooldownSeconds       int `mapstructure:"cooldown_seconds"`
	ProbeSuccesses        int `mapstructure:"probe_successes"`
}

// MatchingConfig contains matching engine thresholds
type MatchingConfig struct {
	MinConfidence       float64 `mapstructure:"min_confidence"`
	MaxFallbackAttempts int     `mapstructure:"max_fallback_attempts"`
	UseYearHints        bool    `mapstructure:"use_year_hints"`
	GenerateVariants    bool    `mapstructure:"generate_variants"`
	CacheResults        bool    `mapstructure:"cache_results"`
	TopK                int     `mapstructure:"top_k"`
	EarlyExitConfidence float64 `mapstructure:"early_exit_confidence"`
}

// CacheConfig contains persistent result cache settings
type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Path     string `mapstructure:"path"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			APIKey:   "",
			BaseURL:  "https://api.themoviedb.org/3",
			Language: "en-US",
		},
		Client: ClientConfig{
			RatePerSecond:    35,
			Burst:            35,
			ConcurrencyLimit: 4,
			MaxRetries:       3,
			RetryBaseDelayMS: 500,
			CircuitBreaker: CircuitBreakerConfig{
				WindowSize:            20,
				ErrorThresholdPercent: 50,
				MinSamples:            10,
				CooldownSeconds:       30,
				ProbeSuccesses:        3,
			},
		},
		Matching: MatchingConfig{
			MinConfidence:       0.7,
			MaxFallbackAttempts: 3,
			UseYearHints:        true,
			GenerateVariants:    true,
			CacheResults:        true,
			TopK:                5,
			EarlyExitConfidence: 0.9,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Path:     "",
			TTLHours: 168,
		},
		Server: ServerConfig{
			ListenAddr: ":8780",
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

// ConfigPath returns the configuration file location.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "jellymatch", "config.toml"), nil
}

// DataDir returns the default directory for the persistent cache.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "jellymatch"), nil
}

func ConfigExists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load loads configuration from file or returns defaults. Environment
// variables with the JELLYMATCH_ prefix override file values, e.g.
// JELLYMATCH_TMDB_API_KEY.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from an explicit path.
func LoadFrom(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetEnvPrefix("JELLYMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	if cfg.Cache.Path == "" {
		dataDir, err := DataDir()
		if err != nil {
			return nil, err
		}
		cfg.Cache.Path = filepath.Join(dataDir, "match-cache.db")
	}
	return cfg, nil
}

// Save saves configuration to file
func (c *Config) Save() error {
	configFile, err := ConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}

	return os.WriteFile(configFile, []byte(c.ToTOML()), 0644)
}

// ResolveClientConfig translates the file representation into the
// resilient client's typed config.
func (c *Config) ResolveClientConfig() tmdb.Config {
	return tmdb.Config{
		RatePerSecond:    c.Client.RatePerSecond,
		Burst:            c.Client.Burst,
		ConcurrencyLimit: c.Client.ConcurrencyLimit,
		MaxRetries:       c.Client.MaxRetries,
		RetryBaseDelay:   time.Duration(c.Client.RetryBaseDelayMS) * time.Millisecond,
		Circuit: circuit.Config{
			WindowSize:            c.Client.CircuitBreaker.WindowSize,
			ErrorThresholdPercent: float64(c.Client.CircuitBreaker.ErrorThresholdPercent),
			MinSamples:            c.Client.CircuitBreaker.MinSamples,
			Cooldown:              time.Duration(c.Client.CircuitBreaker.CooldownSeconds) * time.Second,
			ProbeSuccesses:        c.Client.CircuitBreaker.ProbeSuccesses,
		},
	}
}

// ResolveMatchConfig translates the file representation into the matching
// engine's typed config.
func (c *Config) ResolveMatchConfig() match.Config {
	return match.Config{
		MinConfidence:       c.Matching.MinConfidence,
		MaxFallbackAttempts: c.Matching.MaxFallbackAttempts,
		UseYearHints:        c.Matching.UseYearHints,
		GenerateVariants:    c.Matching.GenerateVariants,
		CacheResults:        c.Matching.CacheResults,
		TopK:                c.Matching.TopK,
		EarlyExitConfidence: c.Matching.EarlyExitConfidence,
	}
}

// CacheTTL returns the persistent cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

func (c *Config) ToTOML() string {
	return fmt.Sprintf(`# JellyMatch Configuration
# Generated by: jellymatch config init

# ============================================================================
# CATALOG API
# API key from: https://www.themoviedb.org/settings/api
# ============================================================================
[tmdb]
api_key = "%s"
base_url = "%s"
language = "%s"

# ============================================================================
# CLIENT LIMITS
# Rate limiting, concurrency, and retry behavior against the catalog API
# ============================================================================
[client]
rate_per_second = %v
burst = %d
concurrency_limit = %d
max_retries = %d
retry_base_delay_ms = %d

[client.circuit_breaker]
window_size = %d
error_threshold_percent = %d
min_samples = %d
cooldown_seconds = %d
probe_successes = %d

# ============================================================================
# MATCHING
# Confidence thresholds and fallback behavior
# ============================================================================
[matching]
min_confidence = %v
max_fallback_attempts = %d
use_year_hints = %v
generate_variants = %v
cache_results = %v
top_k = %d
early_exit_confidence = %v

# ============================================================================
# PERSISTENT CACHE
# ============================================================================
[cache]
enabled = %v
path = "%s"
ttl_hours = %d

# ============================================================================
# HTTP SERVER
# ============================================================================
[server]
listen_addr = "%s"

# ============================================================================
# LOGGING
# ============================================================================
[logging]
level = "%s"
file = "%s"
max_size_mb = %d
max_backups = %d
`,
		c.TMDB.APIKey, c.TMDB.BaseURL, c.TMDB.Language,
		c.Client.RatePerSecond, c.Client.Burst, c.Client.ConcurrencyLimit,
		c.Client.MaxRetries, c.Client.RetryBaseDelayMS,
		c.Client.CircuitBreaker.WindowSize, c.Client.CircuitBreaker.ErrorThresholdPercent,
		c.Client.CircuitBreaker.MinSamples, c.Client.CircuitBreaker.CooldownSeconds,
		c.Client.CircuitBreaker.ProbeSuccesses,
		c.Matching.MinConfidence, c.Matching.MaxFallbackAttempts,
		c.Matching.UseYearHints, c.Matching.GenerateVariants, c.Matching.CacheResults,
		c.Matching.TopK, c.Matching.EarlyExitConfidence,
		c.Cache.Enabled, c.Cache.Path, c.Cache.TTLHours,
		c.Server.ListenAddr,
		c.Logging.Level, c.Logging.File, c.Logging.MaxSizeMB, c.Logging.MaxBackups,
	)
}

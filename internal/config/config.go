// Package config handles TOML-based configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"folio/internal/cache"
	"folio/internal/httputil"
	"folio/internal/provider"
)

// Config holds all application configuration.
type Config struct {
	Listen             string             `toml:"listen"`
	WorksDir           string             `toml:"works_dir"`
	CacheTTL           time.Duration      `toml:"cache_ttl"`
	CacheMaxEntries    int                `toml:"cache_max_entries"`
	CacheMaxEntryBytes int                `toml:"cache_max_entry_bytes"`
	CacheSweepInterval time.Duration      `toml:"cache_sweep_interval"`
	RequestTimeout     time.Duration      `toml:"request_timeout"`
	BackoffStep        time.Duration      `toml:"backoff_step"`
	RateLimit          float64            `toml:"rate_limit"`
	RateBurst          int                `toml:"rate_burst"`
	Debug              bool               `toml:"debug"`
	Endpoints          provider.Endpoints `toml:"endpoints"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Listen:             ":8080",
		WorksDir:           "content/works",
		CacheTTL:           cache.DefaultTTL,
		CacheMaxEntries:    cache.DefaultMaxEntries,
		CacheMaxEntryBytes: 256 << 10,
		CacheSweepInterval: time.Minute,
		RequestTimeout:     provider.DefaultTimeout,
		BackoffStep:        provider.DefaultBackoffStep,
		RateLimit:          10,
		RateBurst:          20,
		Endpoints:          provider.DefaultEndpoints(),
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "folio"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "folio"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path over the defaults. Keys missing from
// the file keep their default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if c.WorksDir == "" {
		return fmt.Errorf("works_dir cannot be empty")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %s", c.CacheTTL)
	}
	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("cache_max_entries cannot be negative, got %d", c.CacheMaxEntries)
	}
	if c.CacheMaxEntryBytes < 0 {
		return fmt.Errorf("cache_max_entry_bytes cannot be negative, got %d", c.CacheMaxEntryBytes)
	}
	if c.CacheSweepInterval < 0 {
		return fmt.Errorf("cache_sweep_interval cannot be negative, got %s", c.CacheSweepInterval)
	}
	if c.RequestTimeout <= 0 || c.RequestTimeout > time.Minute {
		return fmt.Errorf("request_timeout must be in (0, 1m], got %s", c.RequestTimeout)
	}
	if c.BackoffStep < 0 || c.BackoffStep > 10*time.Second {
		return fmt.Errorf("backoff_step must be in [0, 10s], got %s", c.BackoffStep)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative, got %g", c.RateLimit)
	}
	if c.RateBurst < 0 {
		return fmt.Errorf("rate_burst cannot be negative, got %d", c.RateBurst)
	}

	endpoints := map[string]string{
		"twitter_oembed":   c.Endpoints.TwitterOEmbed,
		"niconico_oembed":  c.Endpoints.NiconicoOEmbed,
		"niconico_player":  c.Endpoints.NiconicoPlayer,
		"bilibili_player":  c.Endpoints.BilibiliPlayer,
		"instagram_graph":  c.Endpoints.InstagramGraph,
		"instagram_legacy": c.Endpoints.InstagramLegacy,
	}
	for key, u := range endpoints {
		if err := httputil.ValidateURL(u); err != nil {
			return fmt.Errorf("endpoints.%s: %w", key, err)
		}
	}

	return nil
}

// ExpandWorksDir resolves ~ in the works directory path.
func (c *Config) ExpandWorksDir() (string, error) {
	dir := c.WorksDir
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	return filepath.Abs(dir)
}

// CacheOptions returns the cache settings.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		TTL:           c.CacheTTL,
		MaxEntries:    c.CacheMaxEntries,
		MaxEntryBytes: c.CacheMaxEntryBytes,
	}
}

// ProviderOptions returns the provider transport settings.
func (c *Config) ProviderOptions() provider.Options {
	return provider.Options{
		Client:    httputil.NewClient(4 * c.RequestTimeout),
		Endpoints: c.Endpoints,
		Timeout:   c.RequestTimeout,
		Step:      c.BackoffStep,
		RateLimit: c.RateLimit,
		RateBurst: c.RateBurst,
	}
}

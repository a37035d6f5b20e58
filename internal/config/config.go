// Package config loads and saves the unitecon TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all unitecon configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Advisor    AdvisorConfig    `toml:"advisor"`
	Defaults   DefaultsOverride `toml:"defaults"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Stage          string `toml:"stage"`
	BusinessModel  string `toml:"business_model,omitempty"`
	Locale         string `toml:"locale"`
	CurrencySymbol string `toml:"currency_symbol"`
	Store          string `toml:"store"`
}

// AdvisorConfig holds settings for the recommendations service.
type AdvisorConfig struct {
	APIKey      string `toml:"api_key,omitempty"`
	BaseURL     string `toml:"base_url,omitempty"`
	Model       string `toml:"model,omitempty"`
	TimeoutSec  int    `toml:"timeout_sec"`
	RedisAddr   string `toml:"redis_addr,omitempty"`
	CacheTTLSec int    `toml:"cache_ttl_sec"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Stage:          "pre_seed",
			Locale:         "en",
			CurrencySymbol: "₽",
			Store:          "memory",
		},
		Advisor: AdvisorConfig{
			TimeoutSec:  10,
			CacheTTLSec: 3600,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "unitecon")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "unitecon")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// GetAdvisorAPIKey returns the API key from env var or config, in that order.
func GetAdvisorAPIKey(cfg Config) string {
	if key := os.Getenv("GIGACHAT_API_KEY"); key != "" {
		return key
	}
	return cfg.Advisor.APIKey
}

// AdvisorTimeout returns the live advisor request timeout.
func (c Config) AdvisorTimeout() time.Duration {
	if c.Advisor.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Advisor.TimeoutSec) * time.Second
}

// CacheTTL returns how long advisor responses are cached.
func (c Config) CacheTTL() time.Duration {
	if c.Advisor.CacheTTLSec <= 0 {
		return time.Hour
	}
	return time.Duration(c.Advisor.CacheTTLSec) * time.Second
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

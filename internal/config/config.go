// Package config loads CLI settings from a TOML file, a .env file and
// WAU_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/wau-ai/wau-cli/internal/i18n"
	"github.com/wau-ai/wau-cli/internal/telemetry"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIURL    = "WAU_API_URL"
	EnvLang      = "WAU_LANG"
	EnvLogLevel  = "WAU_LOG_LEVEL"
	EnvLogFormat = "WAU_LOG_FORMAT"
	EnvConfig    = "WAU_CONFIG"

	EnvPollDeadline = "WAU_POLL_DEADLINE"
)

// Config is the full CLI configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	Breaker BreakerConfig `toml:"breaker"`
	Poll    PollConfig    `toml:"poll"`
	Log     LogConfig     `toml:"log"`
	UI      UIConfig      `toml:"ui"`
}

// APIConfig configures the registry API client.
type APIConfig struct {
	URL     string        `toml:"url"`
	Timeout time.Duration `toml:"timeout"`
	// RatePerSecond limits outgoing requests; 0 disables the limiter.
	RatePerSecond float64 `toml:"rate_per_second"`
	Burst         int     `toml:"burst"`
}

// BreakerConfig configures the circuit breaker around registry calls.
type BreakerConfig struct {
	MaxFailures uint32        `toml:"max_failures"`
	Timeout     time.Duration `toml:"timeout"`
}

// PollConfig configures status polling.
type PollConfig struct {
	Interval      time.Duration `toml:"interval"`
	RetryInterval time.Duration `toml:"retry_interval"`
	// Deadline bounds a whole polling run; 0 disables it.
	Deadline time.Duration `toml:"deadline"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type UIConfig struct {
	Language string `toml:"language"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:     "http://127.0.0.1:8000",
			Timeout: 30 * time.Second,
			Burst:   1,
		},
		Breaker: BreakerConfig{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Poll: PollConfig{
			Interval:      1500 * time.Millisecond,
			RetryInterval: 3000 * time.Millisecond,
			Deadline:      15 * time.Minute,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		UI: UIConfig{
			Language: string(i18n.English),
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".wau", "config.toml")
	}
	return filepath.Join(dir, "wau", "config.toml")
}

// ResolvePath picks the config file: the explicit path, then WAU_CONFIG,
// then DefaultPath.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return DefaultPath()
}

// LoadDotEnv loads .env files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the TOML file at path on top of Default and applies the
// environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from WAU_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		c.API.URL = v
	}
	if v, ok := lookup(EnvLang); ok && v != "" {
		c.UI.Language = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Log.Format = v
	}
	if v, ok := lookup(EnvPollDeadline); ok && v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPollDeadline, err)
		}
		c.Poll.Deadline = d
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.url %q: must be an http(s) URL", c.API.URL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.API.RatePerSecond < 0 {
		return fmt.Errorf("api.rate_per_second must not be negative")
	}
	if c.Breaker.Timeout < 0 {
		return fmt.Errorf("breaker.timeout must not be negative")
	}
	if c.Poll.Interval <= 0 || c.Poll.RetryInterval <= 0 {
		return fmt.Errorf("poll.interval and poll.retry_interval must be positive")
	}
	if c.Poll.Deadline < 0 {
		return fmt.Errorf("poll.deadline must not be negative")
	}
	if _, err := telemetry.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	if f := strings.ToLower(c.Log.Format); f != "" && f != "text" && f != "json" {
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}
	if _, ok := i18n.ParseLang(c.UI.Language); !ok {
		return fmt.Errorf("unsupported ui.language %q", c.UI.Language)
	}
	return nil
}

// parseDuration accepts Go durations ("90s") or bare seconds ("90").
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

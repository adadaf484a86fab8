package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://127.0.0.1:8000", cfg.API.URL)
	assert.Equal(t, 1500*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, 3000*time.Millisecond, cfg.Poll.RetryInterval)
	assert.Equal(t, 15*time.Minute, cfg.Poll.Deadline)
	assert.Equal(t, "en", cfg.UI.Language)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().API, cfg.API)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "config.toml", `
[api]
url = "https://registry.example.com"
timeout = "10s"
rate_per_second = 2.5
burst = 3

[poll]
interval = "500ms"
deadline = "0s"

[ui]
language = "zh"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://registry.example.com", cfg.API.URL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2.5, cfg.API.RatePerSecond)
	assert.Equal(t, 3, cfg.API.Burst)
	assert.Equal(t, 500*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, 3000*time.Millisecond, cfg.Poll.RetryInterval)
	assert.Equal(t, time.Duration(0), cfg.Poll.Deadline)
	assert.Equal(t, "zh", cfg.UI.Language)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeFile(t, "config.toml", "[api\nurl=")
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.toml", "[api]\nurl = \"https://file.example.com\"\n")
	t.Setenv(EnvAPIURL, "https://env.example.com")
	t.Setenv(EnvLang, "zh")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.API.URL)
	assert.Equal(t, "zh", cfg.UI.Language)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvLogLevel:     "debug",
		EnvLogFormat:    "json",
		EnvPollDeadline: "90",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 90*time.Second, cfg.Poll.Deadline)

	env[EnvPollDeadline] = "soon"
	assert.Error(t, cfg.ApplyEnv(lookup))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"ftp url", func(c *Config) { c.API.URL = "ftp://x" }, "invalid api.url"},
		{"no host", func(c *Config) { c.API.URL = "http://" }, "invalid api.url"},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout"},
		{"negative rate", func(c *Config) { c.API.RatePerSecond = -1 }, "rate_per_second"},
		{"negative deadline", func(c *Config) { c.Poll.Deadline = -time.Second }, "poll.deadline"},
		{"zero interval", func(c *Config) { c.Poll.Interval = 0 }, "poll.interval"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad language", func(c *Config) { c.UI.Language = "fr" }, "ui.language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "explicit.toml", ResolvePath("explicit.toml"))

	t.Setenv(EnvConfig, "/tmp/from-env.toml")
	assert.Equal(t, "/tmp/from-env.toml", ResolvePath(""))

	t.Setenv(EnvConfig, "")
	assert.Equal(t, DefaultPath(), ResolvePath(""))
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "WAU_TEST_DOTENV=from-file\nWAU_TEST_EXISTING=from-file\n")
	t.Setenv("WAU_TEST_EXISTING", "from-env")
	t.Setenv("WAU_TEST_DOTENV", "")
	os.Unsetenv("WAU_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("WAU_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("WAU_TEST_EXISTING"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://afdian.com", cfg.Afdian.BaseURL)
	assert.Equal(t, DefaultUserAgent, cfg.Afdian.UserAgent)
	assert.Equal(t, "9adgq", cfg.Output.Directory)
	assert.Equal(t, "finished.txt", cfg.Output.ProgressFile)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Append)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AFDSCRAPER_ACCOUNT", "reader@example.com")
	t.Setenv("AFDSCRAPER_PASSWORD", "secret")
	t.Setenv("AFDSCRAPER_ALBUM_ID", "album-1")
	t.Setenv("AFDSCRAPER_OUTPUT_DIR", "/tmp/export")
	t.Setenv("AFDSCRAPER_TIMEOUT", "45s")
	t.Setenv("AFDSCRAPER_REQUESTS_PER_MINUTE", "20")
	t.Setenv("AFDSCRAPER_LOG_LEVEL", "debug")
	t.Setenv("AFDSCRAPER_LOG_APPEND", "true")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "reader@example.com", cfg.Afdian.Account)
	assert.Equal(t, "secret", cfg.Afdian.Password)
	assert.Equal(t, "album-1", cfg.Afdian.AlbumID)
	assert.Equal(t, "/tmp/export", cfg.Output.Directory)
	assert.Equal(t, 45*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 20, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Append)
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"timeout", "AFDSCRAPER_TIMEOUT"},
		{"requests per minute", "AFDSCRAPER_REQUESTS_PER_MINUTE"},
		{"log append", "AFDSCRAPER_LOG_APPEND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, "not-a-number")
			err := DefaultConfig().LoadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
afdian:
  account: reader@example.com
  album_id: album-42
output:
  directory: exported
http:
  timeout: 10s
rate_limit:
  requests_per_minute: 0
logging:
  level: warn
  file: afd_crawler.log
  append: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "reader@example.com", cfg.Afdian.Account)
	assert.Equal(t, "album-42", cfg.Afdian.AlbumID)
	assert.Equal(t, "exported", cfg.Output.Directory)
	// Unset keys keep their defaults.
	assert.Equal(t, "finished.txt", cfg.Output.ProgressFile)
	assert.Equal(t, "https://afdian.com", cfg.Afdian.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 0, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "afd_crawler.log", cfg.Logging.File)
	assert.True(t, cfg.Logging.Append)
}

func TestLoadFromFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		err := DefaultConfig().LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("afdian: [unclosed"), 0644))
		err := DefaultConfig().LoadFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty base url", func(c *Config) { c.Afdian.BaseURL = "" }, "base URL is required"},
		{"relative base url", func(c *Config) { c.Afdian.BaseURL = "afdian.com" }, "not an absolute URL"},
		{"empty output", func(c *Config) { c.Output.Directory = "" }, "output directory is required"},
		{"empty progress file", func(c *Config) { c.Output.ProgressFile = "" }, "progress file is required"},
		{"negative timeout", func(c *Config) { c.HTTP.Timeout = -time.Second }, "timeout cannot be negative"},
		{"negative rate", func(c *Config) { c.RateLimit.RequestsPerMinute = -1 }, "cannot be negative"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "invalid log level"},
		{"zero timeout allowed", func(c *Config) { c.HTTP.Timeout = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.Directory = ""
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output directory is required")
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"album-id":            "album-7",
		"output":              "out",
		"timeout":             5 * time.Second,
		"requests-per-minute": 12,
		"log-level":           "error",
		"account":             "",
	})

	assert.Equal(t, "album-7", cfg.Afdian.AlbumID)
	assert.Equal(t, "out", cfg.Output.Directory)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 12, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Empty(t, cfg.Afdian.Account, "empty flag values must not override")
}

func TestSaveAndMasked(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Afdian.Account = "reader@example.com"
	cfg.Afdian.Password = "secret"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, cfg, loaded)

	masked := cfg.Masked()
	assert.Equal(t, "********", masked.Afdian.Password)
	assert.Equal(t, "secret", cfg.Afdian.Password)

	data, err := yaml.Marshal(masked)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("afdian:\n  album_id: from-file\n  user_id: file-user\n"), 0644))

	t.Setenv("AFDSCRAPER_ALBUM_ID", "from-env")

	cfg, err := Load(path, map[string]interface{}{"user-id": "flag-user"})
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Afdian.AlbumID)
	assert.Equal(t, "flag-user", cfg.Afdian.UserID)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AFDSCRAPER_LOG_LEVEL", "chatty")

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the afdian exporter
type Config struct {
	// Afdian account and target album
	Afdian AfdianConfig `yaml:"afdian" json:"afdian"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// HTTP client settings
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// AfdianConfig holds site-specific configuration
type AfdianConfig struct {
	BaseURL   string `yaml:"base_url" json:"base_url"`
	Account   string `yaml:"account" json:"account"`
	Password  string `yaml:"password" json:"password"`
	AlbumID   string `yaml:"album_id" json:"album_id"`
	UserID    string `yaml:"user_id" json:"user_id"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// OutputConfig holds output locations
type OutputConfig struct {
	Directory    string `yaml:"directory" json:"directory"`
	ProgressFile string `yaml:"progress_file" json:"progress_file"`
}

// HTTPConfig holds HTTP client configuration
type HTTPConfig struct {
	// Timeout of zero disables the client timeout.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerMinute of zero disables pacing.
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Append bool   `yaml:"append" json:"append"`
}

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_13_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/81.0.4044.122 Safari/537.36"

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Afdian: AfdianConfig{
			BaseURL:   "https://afdian.com",
			UserAgent: DefaultUserAgent,
		},
		Output: OutputConfig{
			Directory:    "9adgq",
			ProgressFile: "finished.txt",
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			File:   "",
			Append: false,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("AFDSCRAPER_BASE_URL"); v != "" {
		c.Afdian.BaseURL = v
	}
	if v := os.Getenv("AFDSCRAPER_ACCOUNT"); v != "" {
		c.Afdian.Account = v
	}
	if v := os.Getenv("AFDSCRAPER_PASSWORD"); v != "" {
		c.Afdian.Password = v
	}
	if v := os.Getenv("AFDSCRAPER_ALBUM_ID"); v != "" {
		c.Afdian.AlbumID = v
	}
	if v := os.Getenv("AFDSCRAPER_USER_ID"); v != "" {
		c.Afdian.UserID = v
	}
	if v := os.Getenv("AFDSCRAPER_USER_AGENT"); v != "" {
		c.Afdian.UserAgent = v
	}

	if v := os.Getenv("AFDSCRAPER_OUTPUT_DIR"); v != "" {
		c.Output.Directory = v
	}
	if v := os.Getenv("AFDSCRAPER_PROGRESS_FILE"); v != "" {
		c.Output.ProgressFile = v
	}

	if v := os.Getenv("AFDSCRAPER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid AFDSCRAPER_TIMEOUT %q: %w", v, err)
		}
		c.HTTP.Timeout = d
	}

	if v := os.Getenv("AFDSCRAPER_REQUESTS_PER_MINUTE"); v != "" {
		rpm, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AFDSCRAPER_REQUESTS_PER_MINUTE %q: %w", v, err)
		}
		c.RateLimit.RequestsPerMinute = rpm
	}

	if v := os.Getenv("AFDSCRAPER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("AFDSCRAPER_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("AFDSCRAPER_LOG_APPEND"); v != "" {
		appendLog, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AFDSCRAPER_LOG_APPEND %q: %w", v, err)
		}
		c.Logging.Append = appendLog
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile searches for a config file in the standard locations and
// returns the first one found, or "".
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".afdscraper.yaml",
		".afdscraper.yml",
		filepath.Join(home, ".config", "afdscraper", "config.yaml"),
		filepath.Join(home, ".config", "afdscraper", "config.yml"),
		filepath.Join(home, ".afdscraper.yaml"),
		filepath.Join(home, ".afdscraper.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. Credentials and album id are
// not required here; commands that need them check on their own.
func (c *Config) Validate() error {
	var errs []error

	if c.Afdian.BaseURL == "" {
		errs = append(errs, errors.New("afdian base URL is required"))
	} else if u, err := url.Parse(c.Afdian.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("afdian base URL %q is not an absolute URL", c.Afdian.BaseURL))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.ProgressFile == "" {
		errs = append(errs, errors.New("progress file is required"))
	}

	if c.HTTP.Timeout < 0 {
		errs = append(errs, errors.New("http timeout cannot be negative"))
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Masked returns a copy of the configuration with the password hidden
func (c *Config) Masked() Config {
	masked := *c
	if masked.Afdian.Password != "" {
		masked.Afdian.Password = "********"
	}
	return masked
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["account"].(string); ok && v != "" {
		c.Afdian.Account = v
	}
	if v, ok := flags["album-id"].(string); ok && v != "" {
		c.Afdian.AlbumID = v
	}
	if v, ok := flags["user-id"].(string); ok && v != "" {
		c.Afdian.UserID = v
	}
	if v, ok := flags["base-url"].(string); ok && v != "" {
		c.Afdian.BaseURL = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.Directory = v
	}
	if v, ok := flags["progress-file"].(string); ok && v != "" {
		c.Output.ProgressFile = v
	}
	if v, ok := flags["timeout"].(time.Duration); ok && v >= 0 {
		c.HTTP.Timeout = v
	}
	if v, ok := flags["requests-per-minute"].(int); ok && v >= 0 {
		c.RateLimit.RequestsPerMinute = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["log-file"].(string); ok && v != "" {
		c.Logging.File = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".afdscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config is the root configuration for thub, stored in ~/.thub/config.yaml.
// Environment variables prefixed with THUB_ override the file.
type Config struct {
	API     APIConfig    `mapstructure:"api"`
	Log     LogConfig    `mapstructure:"log"`
	Limits  LimitsConfig `mapstructure:"limits"`
	DataDir string       `mapstructure:"data_dir"`
}

// APIConfig describes the marketplace backend.
type APIConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	// TokenURL enables refreshing expired sessions. Empty disables refresh.
	TokenURL      string `mapstructure:"token_url"`
	DeviceAuthURL string `mapstructure:"device_auth_url"`
	ClientID      string `mapstructure:"client_id"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LimitsConfig caps entries per collection; 0 disables a cap.
type LimitsConfig struct {
	Education     int `mapstructure:"education"`
	Qualification int `mapstructure:"qualification"`
}

const (
	DefaultBaseURL = "http://localhost:8000/api"
	DefaultDirName = ".thub"
)

// configTemplate is the annotated config written on first run.
const configTemplate = `# thub configuration - ~/.thub/config.yaml
#
# Every setting is optional. Environment variables override this file:
# THUB_API_BASE_URL, THUB_LOG_LEVEL, THUB_LIMITS_EDUCATION, ...

api:
  # Base URL of the marketplace REST API.
  base_url: http://localhost:8000/api
  # Per-request timeout.
  timeout: 15s
  # Client-side throttle for pushes with many operations.
  requests_per_second: 5
  # OAuth2 token endpoint. When set, expired sessions are refreshed and
  # 'thub login' can use the device code flow (with device_auth_url).
  token_url: ""
  device_auth_url: ""
  client_id: thub-cli

log:
  # debug, info, warn or error. Use debug to see every request.
  level: warn
  # console or json.
  format: console

limits:
  # Maximum entries the profile form accepts; 0 means no limit.
  education: 3
  qualification: 5

# Where drafts and the session token are kept. Defaults to ~/.thub.
data_dir: ""
`

// defaultDir returns ~/.thub.
func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

// Load reads the config file at path (~/.thub/config.yaml when empty),
// creating it with annotated defaults on first run. A .env file in the
// working directory is loaded first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	home, err := defaultDir()
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = filepath.Join(home, "config.yaml")
	}

	v := viper.New()
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.requests_per_second", 5)
	v.SetDefault("api.token_url", "")
	v.SetDefault("api.device_auth_url", "")
	v.SetDefault("api.client_id", "thub-cli")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("limits.education", 3)
	v.SetDefault("limits.qualification", 5)
	v.SetDefault("data_dir", "")

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("THUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	switch {
	case cfg.DataDir == "":
		cfg.DataDir = home
	case strings.HasPrefix(cfg.DataDir, "~/"):
		cfg.DataDir = filepath.Join(filepath.Dir(home), cfg.DataDir[2:])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings a command cannot work without.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid config: api.base_url %q must be an http(s) URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("invalid config: api.timeout must be positive")
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid config: api.requests_per_second must not be negative")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid config: log.level %q: %w", c.Log.Level, err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("invalid config: log.format must be console or json, got %q", c.Log.Format)
	}
	if c.Limits.Education < 0 || c.Limits.Qualification < 0 {
		return fmt.Errorf("invalid config: limits must not be negative")
	}
	return nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

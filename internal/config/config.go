package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Web     WebConfig     `mapstructure:"web"`
	Session SessionConfig `mapstructure:"session"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

// APIConfig holds the remote API configuration
type APIConfig struct {
	// BaseURL has no default: the client refuses to start without one.
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// WebConfig holds the local web UI server configuration
type WebConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// SessionConfig holds token persistence configuration
type SessionConfig struct {
	TokenPath string `mapstructure:"token_path"`
}

// CacheConfig holds the month-scoped query cache configuration
type CacheConfig struct {
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVars(v)

	// The config file is optional; env vars alone are enough to run.
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configPath); !os.IsNotExist(statErr) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Web defaults: the UI binds to loopback, it serves one user's session
	v.SetDefault("web.host", "127.0.0.1")
	v.SetDefault("web.port", 8787)
	v.SetDefault("web.read_timeout", 15*time.Second)
	v.SetDefault("web.write_timeout", 30*time.Second)

	// API defaults (base_url deliberately has none)
	v.SetDefault("api.timeout", 30*time.Second)

	// Cache defaults
	v.SetDefault("cache.size", 128)
	v.SetDefault("cache.ttl", 5*time.Minute)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "console")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("api.base_url", "HAMKHARJ_API_BASE_URL")
	v.BindEnv("session.token_path", "HAMKHARJ_TOKEN_PATH")
	v.BindEnv("web.host", "HAMKHARJ_WEB_HOST")
	v.BindEnv("web.port", "HAMKHARJ_WEB_PORT")
	v.BindEnv("logger.level", "HAMKHARJ_LOG_LEVEL")
}

// normalize applies the startup-time cleanups the rest of the code relies on.
func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")

	if c.Session.TokenPath == "" {
		c.Session.TokenPath = defaultTokenPath()
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required (set HAMKHARJ_API_BASE_URL)")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port must be between 1 and 65535, got %d", c.Web.Port)
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache.size must be positive, got %d", c.Cache.Size)
	}
	return nil
}

// Address returns the host:port the web UI listens on
func (c *WebConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func defaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".hamkharj-token"
	}
	return filepath.Join(dir, "hamkharj", "token")
}

// Package config loads the coinwatch configuration from an optional YAML file,
// a .env file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the whole configuration.
type Config struct {
	Gateway struct {
		BaseURL           string        `yaml:"base_url" validate:"required,url"`
		VsCurrency        string        `yaml:"vs_currency" validate:"required,alpha"`
		APIKey            string        `yaml:"api_key"`
		Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
		RequestsPerMinute int           `yaml:"requests_per_minute" validate:"gte=0"`
		CacheDir          string        `yaml:"cache_dir"`
		CacheTTL          time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	} `yaml:"gateway"`

	State struct {
		Kind       string `yaml:"kind" validate:"oneof=file redis sqlite memory"`
		Name       string `yaml:"name" validate:"required"`
		Path       string `yaml:"path" validate:"required_if=Kind file"`
		RedisURL   string `yaml:"redis_url" validate:"required_if=Kind redis"`
		SQLitePath string `yaml:"sqlite_path" validate:"required_if=Kind sqlite"`
	} `yaml:"state"`

	Refresh struct {
		Interval time.Duration `yaml:"interval" validate:"gt=0"`
	} `yaml:"refresh"`

	Server struct {
		Addr string `yaml:"addr" validate:"required"`
	} `yaml:"server"`

	View struct {
		PageSize    int `yaml:"page_size" validate:"gt=0"`
		SearchLimit int `yaml:"search_limit" validate:"gt=0"`
	} `yaml:"view"`

	Logging struct {
		Level string `yaml:"level" validate:"oneof=trace debug info warn warning error"`
	} `yaml:"logging"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	var cfg Config
	cfg.Gateway.BaseURL = "https://api.coingecko.com/api/v3"
	cfg.Gateway.VsCurrency = "usd"
	cfg.Gateway.Timeout = 30 * time.Second
	cfg.Gateway.RequestsPerMinute = 10
	cfg.Gateway.CacheTTL = 5 * time.Minute
	cfg.State.Kind = "file"
	cfg.State.Name = "cryptoState"
	cfg.State.Path = defaultStatePath()
	cfg.Refresh.Interval = 60 * time.Second
	cfg.Server.Addr = ":8080"
	cfg.View.PageSize = 10
	cfg.View.SearchLimit = 50
	cfg.Logging.Level = "info"
	return &cfg
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "coinwatch.json"
	}
	return filepath.Join(dir, "coinwatch", "state.json")
}

// Load returns the default configuration, overridden by the YAML file at
// path if not empty, then by the environment. A .env file in the working
// directory is loaded into the environment first, if present.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config %q: %w", path, err)
		}
	}

	_ = godotenv.Load() // .env is optional
	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// overrideWithEnv applies the COINWATCH_* variables, and COINGECKO_API_KEY.
func overrideWithEnv(cfg *Config) {
	cfg.Gateway.BaseURL = getEnv("COINWATCH_BASE_URL", cfg.Gateway.BaseURL)
	cfg.Gateway.VsCurrency = getEnv("COINWATCH_VS_CURRENCY", cfg.Gateway.VsCurrency)
	cfg.Gateway.APIKey = getEnv("COINGECKO_API_KEY", cfg.Gateway.APIKey)
	cfg.Gateway.Timeout = getEnvDuration("COINWATCH_TIMEOUT", cfg.Gateway.Timeout)
	cfg.Gateway.RequestsPerMinute = getEnvInt("COINWATCH_REQUESTS_PER_MINUTE", cfg.Gateway.RequestsPerMinute)
	cfg.Gateway.CacheDir = getEnv("COINWATCH_CACHE_DIR", cfg.Gateway.CacheDir)
	cfg.Gateway.CacheTTL = getEnvDuration("COINWATCH_CACHE_TTL", cfg.Gateway.CacheTTL)
	cfg.State.Kind = getEnv("COINWATCH_STATE_KIND", cfg.State.Kind)
	cfg.State.Name = getEnv("COINWATCH_STATE_NAME", cfg.State.Name)
	cfg.State.Path = getEnv("COINWATCH_STATE_PATH", cfg.State.Path)
	cfg.State.RedisURL = getEnv("COINWATCH_REDIS_URL", cfg.State.RedisURL)
	cfg.State.SQLitePath = getEnv("COINWATCH_SQLITE_PATH", cfg.State.SQLitePath)
	cfg.Refresh.Interval = getEnvDuration("COINWATCH_REFRESH_INTERVAL", cfg.Refresh.Interval)
	cfg.Server.Addr = getEnv("COINWATCH_ADDR", cfg.Server.Addr)
	cfg.View.PageSize = getEnvInt("COINWATCH_PAGE_SIZE", cfg.View.PageSize)
	cfg.View.SearchLimit = getEnvInt("COINWATCH_SEARCH_LIMIT", cfg.View.SearchLimit)
	cfg.Logging.Level = strings.ToLower(getEnv("COINWATCH_LOG_LEVEL", cfg.Logging.Level))
}

var validate = validator.New()

// Validate checks every field, and reports all invalid ones.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("%s: failed on %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.Join(errs...)
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvDuration returns the environment variable as a duration or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// Package config loads server configuration from the environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Log       LogConfig       `mapstructure:"log"`
	Search    SearchConfig    `mapstructure:"search"`
	Upload    UploadConfig    `mapstructure:"upload"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Password  PasswordConfig  `mapstructure:"password"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds the PostgreSQL connection URL.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds the search cache connection. An empty URL disables caching.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// LLMConfig holds the Gemini credentials and model override.
type LLMConfig struct {
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// LogConfig selects the zap level and encoding.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SearchConfig tunes candidate search.
type SearchConfig struct {
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	LookupConcurrency int           `mapstructure:"lookup_concurrency"`
}

// UploadConfig limits resume uploads.
type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

// RateLimitConfig sets the per-client request limits. Endpoint-specific
// limits are built in; these are the fallbacks.
type RateLimitConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	DefaultLimit  int           `mapstructure:"default_limit"`
	DefaultWindow time.Duration `mapstructure:"default_window"`
	Whitelist     []string      `mapstructure:"whitelist"`
	Blacklist     []string      `mapstructure:"blacklist"`
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"server.port":               "PORT",
	"server.allowed_origins":    "ALLOWED_ORIGINS",
	"database.url":              "DATABASE_URL",
	"redis.url":                 "REDIS_URL",
	"llm.api_key":               "GEMINI_API_KEY",
	"llm.model":                 "GEMINI_MODEL",
	"llm.requests_per_minute":   "GEMINI_REQUESTS_PER_MINUTE",
	"log.level":                 "LOG_LEVEL",
	"log.format":                "LOG_FORMAT",
	"search.cache_ttl":          "SEARCH_CACHE_TTL",
	"search.lookup_concurrency": "SEARCH_LOOKUP_CONCURRENCY",
	"upload.max_bytes":          "UPLOAD_MAX_BYTES",
	"rate_limit.enabled":        "RATE_LIMIT_ENABLED",
	"rate_limit.default_limit":  "RATE_LIMIT_DEFAULT_LIMIT",
	"rate_limit.default_window": "RATE_LIMIT_DEFAULT_WINDOW",
	"rate_limit.whitelist":      "RATE_LIMIT_WHITELIST",
	"rate_limit.blacklist":      "RATE_LIMIT_BLACKLIST",
	"jwt.secret":                "JWT_SECRET",
	"jwt.expiration_hours":      "JWT_EXPIRATION_HOURS",
	"password.bcrypt_cost":      "BCRYPT_COST",
	"password.pepper":           "PASSWORD_PEPPER",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.requests_per_minute", 60)
	v.SetDefault("search.cache_ttl", 5*time.Minute)
	v.SetDefault("search.lookup_concurrency", 8)
	v.SetDefault("upload.max_bytes", 10<<20)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_limit", 1000)
	v.SetDefault("rate_limit.default_window", time.Minute)
	v.SetDefault("jwt.expiration_hours", 168)
	v.SetDefault("password.bcrypt_cost", 12)
}

// Load reads configuration from path (if non-empty) or ./config.yaml (if
// present), then applies environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges. Required settings are checked by ValidateServe.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: port out of range: %d", c.Server.Port)
	}
	if c.Search.CacheTTL < 0 {
		return fmt.Errorf("config error: search cache_ttl must be non-negative")
	}
	if c.Search.LookupConcurrency < 1 {
		return fmt.Errorf("config error: search lookup_concurrency must be at least 1")
	}
	if c.Upload.MaxBytes < 1 {
		return fmt.Errorf("config error: upload max_bytes must be positive")
	}
	if c.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("config error: llm requests_per_minute must be non-negative")
	}
	if c.RateLimit.Enabled && (c.RateLimit.DefaultLimit < 1 || c.RateLimit.DefaultWindow <= 0) {
		return fmt.Errorf("config error: rate_limit default_limit and default_window must be positive")
	}
	return nil
}

// ValidateServe checks everything the HTTP server needs to start.
func (c *Config) ValidateServe() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	if err := c.JWT.normalize(); err != nil {
		return err
	}
	return c.Password.normalize()
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5*time.Minute, cfg.Search.CacheTTL)
	assert.Equal(t, 8, cfg.Search.LookupConcurrency)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, 168, cfg.JWT.ExpirationHours)
	assert.Equal(t, 12, cfg.Password.BcryptCost)
	assert.Empty(t, cfg.Redis.URL)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 1000, cfg.RateLimit.DefaultLimit)
	assert.Equal(t, time.Minute, cfg.RateLimit.DefaultWindow)
	assert.Equal(t, 60, cfg.LLM.RequestsPerMinute)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/screener")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("SEARCH_CACHE_TTL", "30s")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1,10.0.0.2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/screener", cfg.Database.URL)
	assert.Equal(t, "key", cfg.LLM.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Search.CacheTTL)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.RateLimit.Whitelist)
	assert.NoError(t, cfg.ValidateServe())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	content := `
server:
  port: 7000
log:
  level: debug
  format: json
search:
  lookup_concurrency: 2
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 2, cfg.Search.LookupConcurrency)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
		want string
	}{
		{"port", "PORT", "70000", "port out of range"},
		{"concurrency", "SEARCH_LOOKUP_CONCURRENCY", "0", "lookup_concurrency"},
		{"upload", "UPLOAD_MAX_BYTES", "0", "max_bytes"},
		{"llm rpm", "GEMINI_REQUESTS_PER_MINUTE", "-1", "requests_per_minute"},
		{"rate limit", "RATE_LIMIT_DEFAULT_LIMIT", "0", "rate_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.env, tt.val)
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateServe(t *testing.T) {
	base := Config{
		Database: DatabaseConfig{URL: "postgres://x"},
		LLM:      LLMConfig{APIKey: "k"},
		JWT:      JWTConfig{Secret: "s", ExpirationHours: 24},
		Password: PasswordConfig{BcryptCost: 12},
	}
	require.NoError(t, base.ValidateServe())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"no database", func(c *Config) { c.Database.URL = "" }, "DATABASE_URL"},
		{"no api key", func(c *Config) { c.LLM.APIKey = "" }, "GEMINI_API_KEY"},
		{"no secret", func(c *Config) { c.JWT.Secret = "" }, "JWT_SECRET"},
		{"zero expiration", func(c *Config) { c.JWT.ExpirationHours = 0 }, "JWT_EXPIRATION_HOURS"},
		{"weak bcrypt", func(c *Config) { c.Password.BcryptCost = 4 }, "bcrypt cost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.ValidateServe()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10, Pepper: "pepper"}

	hash, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, cfg.VerifyPassword("correct horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong horse", hash))

	noPepper := &PasswordConfig{BcryptCost: 10}
	assert.False(t, noPepper.VerifyPassword("correct horse", hash))
}

func TestJWTConfig_Expiration(t *testing.T) {
	cfg := JWTConfig{Secret: "s", ExpirationHours: 48}
	assert.Equal(t, 48*time.Hour, cfg.Expiration())
}

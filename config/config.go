package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting for the service. It is built once at
// startup and passed down explicitly; nothing reads viper after Load returns.
type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Token     TokenRetention  `mapstructure:"token"`
}

// JWTConfig controls token signing and lifetimes.
type JWTConfig struct {
	SecretKey           string `mapstructure:"secret_key"`
	AccessExpiryMinutes int    `mapstructure:"access_expiry_minutes"`
	RefreshExpiryDays   int    `mapstructure:"refresh_expiry_days"`
}

// AccessTTL returns the access token lifetime.
func (c JWTConfig) AccessTTL() time.Duration {
	return time.Duration(c.AccessExpiryMinutes) * time.Minute
}

// RefreshTTL returns the refresh token lifetime.
func (c JWTConfig) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshExpiryDays) * 24 * time.Hour
}

// RateLimitConfig bounds login attempts per origin IP.
type RateLimitConfig struct {
	LoginMaxAttempts   int `mapstructure:"login_max_attempts"`
	LoginWindowSeconds int `mapstructure:"login_window_seconds"`
}

// ChatConfig bounds chat message throughput per user.
type ChatConfig struct {
	RateLimitPerMinute int64 `mapstructure:"rate_limit_per_minute"`
	DailyMessageQuota  int64 `mapstructure:"daily_message_quota"`
}

// TokenRetention controls how long expired refresh tokens are kept before the
// maintenance sweep deletes them.
type TokenRetention struct {
	RetentionDays int `mapstructure:"retention_days"`
}

// Load reads config.yml from the given path, applies environment overrides and
// defaults, and returns the resulting configuration.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetDefault("server.port", "8080")
	v.SetDefault("jwt.access_expiry_minutes", 30)
	v.SetDefault("jwt.refresh_expiry_days", 7)
	v.SetDefault("rate_limit.login_max_attempts", 5)
	v.SetDefault("rate_limit.login_window_seconds", 900)
	v.SetDefault("chat.rate_limit_per_minute", 20)
	v.SetDefault("chat.daily_message_quota", 100)
	v.SetDefault("token.retention_days", 30)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if cfg.JWT.SecretKey == "" {
		return nil, fmt.Errorf("jwt.secret_key must be set")
	}

	return cfg, nil
}

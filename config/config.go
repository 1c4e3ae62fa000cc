// Package config loads gateway configuration with viper: an optional
// config.yaml plus MDGW_-prefixed environment variables, env winning.
// The gateway runs with zero configuration; everything has a default
// and missing provider credentials simply leave that provider inert.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Stream    StreamConfig    `mapstructure:"stream"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
}

// CacheConfig selects the cache backend and per-category TTLs.
// Backend is "memory" or "redis".
type CacheConfig struct {
	Backend string      `mapstructure:"backend" validate:"oneof=memory redis"`
	Redis   RedisConfig `mapstructure:"redis"`
	TTL     TTLConfig   `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type TTLConfig struct {
	Quote        time.Duration `mapstructure:"quote"`
	Historical   time.Duration `mapstructure:"historical"`
	Fundamentals time.Duration `mapstructure:"fundamentals"`
	News         time.Duration `mapstructure:"news"`
}

type ProvidersConfig struct {
	Schwab  SchwabConfig  `mapstructure:"schwab"`
	Factset FactsetConfig `mapstructure:"factset"`
}

type SchwabConfig struct {
	APIKey     string `mapstructure:"api_key"`
	APISecret  string `mapstructure:"api_secret"`
	TOTPSecret string `mapstructure:"totp_secret"`
	BaseURL    string `mapstructure:"base_url"`
}

type FactsetConfig struct {
	Username string `mapstructure:"username"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

// CatalogConfig points at the optional instrument database. An empty
// path means the built-in static catalog.
type CatalogConfig struct {
	SQLitePath string `mapstructure:"sqlite_path"`
}

type StreamConfig struct {
	PushInterval time.Duration `mapstructure:"push_interval"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from an optional file (path may name a
// directory holding config.yaml, or be empty for the working
// directory) and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("MDGW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Env-only operation is fine; only a malformed file is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.key_prefix", "mdgw:")
	v.SetDefault("cache.ttl.quote", 60*time.Second)
	v.SetDefault("cache.ttl.historical", 5*time.Minute)
	v.SetDefault("cache.ttl.fundamentals", time.Hour)
	v.SetDefault("cache.ttl.news", 5*time.Minute)

	v.SetDefault("catalog.sqlite_path", "")
	v.SetDefault("stream.push_interval", 5*time.Second)
	v.SetDefault("logging.level", "info")
}

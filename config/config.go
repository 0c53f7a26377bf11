// Package config loads coordinator settings from a YAML file with environment
// overrides, validates them, and watches the file for changes.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/zoobzio/lens"
	"github.com/zoobzio/lens/cache"
)

// Environment variables that override file values.
const (
	EnvBaseURL  = "LENS_BASE_URL"
	EnvAPIKey   = "LENS_API_KEY"
	EnvLogLevel = "LENS_LOG_LEVEL"
)

// Cache kinds.
const (
	CacheMemory = "memory"
	CacheLRU    = "lru"
	CacheRedis  = "redis"
)

// DefaultBaseURL is the public API gateway.
const DefaultBaseURL = "https://gateway.marvel.com"

// Config holds everything needed to run a coordinator against the search API.
type Config struct {
	BaseURL      string        `yaml:"base_url" validate:"required,url"`
	APIKey       string        `yaml:"api_key" validate:"required"`
	Debounce     time.Duration `yaml:"debounce" validate:"gte=0"`
	Limits       []int         `yaml:"limits" validate:"required,min=1,dive,gt=0"`
	DefaultLimit int           `yaml:"default_limit" validate:"gt=0"`
	ClampPages   bool          `yaml:"clamp_pages"`
	Timeout      time.Duration `yaml:"timeout" validate:"gte=0"`
	LogLevel     string        `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Cache        CacheConfig   `yaml:"cache"`
}

// CacheConfig selects and sizes the response store.
type CacheConfig struct {
	Kind  string      `yaml:"kind" validate:"oneof=memory lru redis"`
	Size  int         `yaml:"size" validate:"gte=0"`
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig holds the connection settings for a shared Redis store.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"gte=0"`
	TTL      time.Duration `yaml:"ttl" validate:"gte=0"`
	Prefix   string        `yaml:"prefix"`
}

// Default returns the configuration used for anything a file leaves out.
// It has no API key, so it does not validate on its own.
func Default() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		Debounce:     lens.DefaultDebounce,
		Limits:       slices.Clone(lens.DefaultLimits),
		DefaultLimit: lens.DefaultLimit,
		LogLevel:     zerolog.LevelInfoValue,
		Cache: CacheConfig{
			Kind: CacheMemory,
		},
	}
}

// LookupFunc reads an environment variable.
type LookupFunc func(key string) (string, bool)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateConfig, Config{})
	return v
}

// validateConfig checks rules spanning several fields.
func validateConfig(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)

	if len(cfg.Limits) > 0 && !slices.Contains(cfg.Limits, cfg.DefaultLimit) {
		sl.ReportError(cfg.DefaultLimit, "default_limit", "DefaultLimit", "in_limits", "")
	}
	switch cfg.Cache.Kind {
	case CacheLRU:
		if cfg.Cache.Size <= 0 {
			sl.ReportError(cfg.Cache.Size, "cache.size", "Size", "lru_size", "")
		}
	case CacheRedis:
		if cfg.Cache.Redis.Addr == "" {
			sl.ReportError(cfg.Cache.Redis.Addr, "cache.redis.addr", "Addr", "required", "")
		}
	}
}

// Validate reports every rule cfg breaks.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.StructNamespace(), fe.Tag())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Level returns the zerolog level for LogLevel, defaulting to info.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return level
}

// Load reads the YAML file at path over Default(), applies environment
// overrides and validates the result. An empty path loads defaults and the
// environment only.
func Load(path string) (*Config, error) {
	return LoadWith(path, os.LookupEnv)
}

// LoadWith is Load with an explicit environment lookup.
func LoadWith(path string, lookup LookupFunc) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	return Parse(data, lookup)
}

// Parse decodes YAML over Default(), applies environment overrides and
// validates the result.
func Parse(data []byte, lookup LookupFunc) (*Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if lookup != nil {
		applyEnv(&cfg, lookup)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, lookup LookupFunc) {
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := lookup(EnvAPIKey); ok && v != "" {
		cfg.APIKey = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
}

// NewCache builds the response store cfg selects.
func (c Config) NewCache(ctx context.Context, logger zerolog.Logger) (cache.Cache[[]byte], error) {
	switch c.Cache.Kind {
	case CacheLRU:
		store, err := cache.NewLRU[[]byte](c.Cache.Size)
		if err != nil {
			return nil, err
		}
		return store, nil
	case CacheRedis:
		store, err := cache.NewRedis(ctx, &cache.RedisConfig{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
			CacheTTL: c.Cache.Redis.TTL,
			Prefix:   c.Cache.Redis.Prefix,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return cache.NewMemory[[]byte](), nil
	}
}

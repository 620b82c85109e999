package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "POSBOK"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	Store    StoreConfig
	Session  SessionConfig
	Redis    RedisConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Upstream.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Session.validate(); err != nil {
		return nil, err
	}
	if cfg.Session.Backend == SessionBackendRedis && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("session backend %q requires redis url or address", SessionBackendRedis)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POSBOK_APP_ENV" default:"development"`
	Port         string `envconfig:"POSBOK_APP_PORT" default:"4000"`
	LogLevel     string `envconfig:"POSBOK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POSBOK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// UpstreamConfig points at the remote POSBOK business API.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"POSBOK_API_BASE_URL" default:"https://api.posbok.com/api"`
	Timeout time.Duration `envconfig:"POSBOK_API_TIMEOUT" default:"15s"`
}

func (u UpstreamConfig) validate() error {
	parsed, err := url.Parse(u.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing upstream base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("upstream base url must be http(s), got %q", u.BaseURL)
	}
	if u.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive")
	}
	return nil
}

// StoreConfig selects the storefront the daemon boots against.
type StoreConfig struct {
	DefaultSlug string `envconfig:"POSBOK_DEFAULT_STORE_SLUG" default:"development-business-inc"`
}

// SessionConfig controls where the anonymous session identity is persisted.
type SessionConfig struct {
	Backend string `envconfig:"POSBOK_SESSION_BACKEND" default:"file"`
	// Dir overrides the identity file location; empty means the user
	// config dir.
	Dir string `envconfig:"POSBOK_SESSION_DIR"`
}

func (s SessionConfig) validate() error {
	switch s.Backend {
	case SessionBackendFile, SessionBackendRedis:
		return nil
	default:
		return fmt.Errorf("session backend must be %q or %q, got %q", SessionBackendFile, SessionBackendRedis, s.Backend)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"POSBOK_REDIS_URL"`
	Address      string        `envconfig:"POSBOK_REDIS_ADDR"`
	Password     string        `envconfig:"POSBOK_REDIS_PASSWORD"`
	DB           int           `envconfig:"POSBOK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POSBOK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POSBOK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POSBOK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POSBOK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POSBOK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"POSBOK_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

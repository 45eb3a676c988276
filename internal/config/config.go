package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"Ubermelon/internal/catalog"
)

const EnvPrefix = "UBERMELON"

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App     AppConfig
	Session SessionConfig
	Catalog CatalogConfig
	Metrics MetricsConfig
	Login   LoginConfig
}

type AppConfig struct {
	Env       string `envconfig:"ENV" default:"dev"`
	Port      string `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	SecretKey string `envconfig:"SECRET_KEY" required:"true"`

	// TrustProxy honours X-Forwarded-For and friends. Enable only behind a
	// proxy that overwrites them.
	TrustProxy bool `envconfig:"TRUST_PROXY" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

type SessionConfig struct {
	Backend      string        `envconfig:"SESSION_BACKEND" default:"memory"`
	TTL          time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	CookieSecure bool          `envconfig:"COOKIE_SECURE" default:"false"`
	RedisURL     string        `envconfig:"REDIS_URL"`
}

type CatalogConfig struct {
	Source      string `envconfig:"CATALOG_SOURCE" default:"builtin"`
	CSVPath     string `envconfig:"CATALOG_CSV"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
}

func (c CatalogConfig) SourceConfig() catalog.SourceConfig {
	return catalog.SourceConfig{Kind: c.Source, CSVPath: c.CSVPath, DatabaseURL: c.DatabaseURL}
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
	Token   string `envconfig:"METRICS_TOKEN"`
}

type LoginConfig struct {
	RatePerMinute int `envconfig:"LOGIN_RATE_PER_MIN" default:"5"`
}

// Load reads UBERMELON_* variables. Nested structs share the prefix, so the
// secret is UBERMELON_SECRET_KEY, not UBERMELON_APP_SECRET_KEY.
func Load() (*Config, error) {
	var cfg Config
	for _, part := range []any{&cfg.App, &cfg.Session, &cfg.Catalog, &cfg.Metrics, &cfg.Login} {
		if err := envconfig.Process(EnvPrefix, part); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.App.SecretKey == "" {
		errs = append(errs, errors.New("UBERMELON_SECRET_KEY is required"))
	}

	switch c.Session.Backend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.Session.RedisURL == "" {
			errs = append(errs, errors.New("UBERMELON_REDIS_URL is required for the redis session backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session backend %q", c.Session.Backend))
	}

	if c.Session.TTL <= 0 {
		errs = append(errs, fmt.Errorf("session ttl must be positive, got %s", c.Session.TTL))
	}
	if c.Login.RatePerMinute < 1 {
		errs = append(errs, fmt.Errorf("login rate must be at least 1, got %d", c.Login.RatePerMinute))
	}
	if c.Metrics.Enabled && c.Metrics.Token == "" {
		errs = append(errs, errors.New("UBERMELON_METRICS_TOKEN is required when metrics are enabled"))
	}

	return errors.Join(errs...)
}

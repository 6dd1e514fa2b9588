package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
)

const (
	devAccessSecret  = "dev_access_secret_change_me"
	devRefreshSecret = "dev_refresh_secret_change_me"
)

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the postgres connection URL.
func (d DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

type Config struct {
	Port            string
	GinMode         string
	Environment     string
	AllowOrigins    []string
	LogLevel        string
	LogFormat       string
	BcryptCost      int
	SeedSystemRoles bool
	RabbitMQURL     string
	OTLPEndpoint    string

	DB        DBConfig
	JWT       JWTConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

// Load reads configs/.env when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:            envStr("PORT", "8080"),
		GinMode:         envStr("GIN_MODE", "debug"),
		Environment:     envStr("APP_ENV", "development"),
		AllowOrigins:    envList("ALLOW_ORIGIN", []string{"http://localhost:5173"}),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		LogFormat:       envStr("LOG_FORMAT", "json"),
		BcryptCost:      envInt("BCRYPT_COST", 10),
		SeedSystemRoles: envBool("SEED_SYSTEM_ROLES", false),
		RabbitMQURL:     envStr("RABBITMQ_URL", ""),
		OTLPEndpoint:    envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		DB: DBConfig{
			Host:     envStr("DB_HOST", "localhost"),
			Port:     envStr("DB_PORT", "5432"),
			User:     envStr("DB_USER", "postgres"),
			Password: envStr("DB_PASSWORD", "postgres"),
			Name:     envStr("DB_NAME", "postgres"),
			SSLMode:  envStr("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			AccessSecret:  envStr("JWT_ACCESS_SECRET", ""),
			RefreshSecret: envStr("JWT_REFRESH_SECRET", ""),
			AccessTTL:     envDur("JWT_ACCESS_EXPIRES", 24*time.Hour),
			RefreshTTL:    envDur("JWT_REFRESH_EXPIRES", 7*24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     envStr("REDIS_ADDR", ""),
			Password: envStr("REDIS_PASSWORD", ""),
			DB:       envInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:        envBool("RATE_LIMIT_ENABLED", true),
			Capacity:       envInt("RATE_LIMIT_CAPACITY", 10),
			RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
			RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
			TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
			Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		},
	}

	if cfg.RateLimit.Capacity < 1 {
		cfg.RateLimit.Capacity = 1
	}
	if cfg.RateLimit.RefillTokens < 1 {
		cfg.RateLimit.RefillTokens = 1
	}
	if minTTL := 5 * cfg.RateLimit.RefillInterval; cfg.RateLimit.TTL < minTTL {
		cfg.RateLimit.TTL = minTTL
	}

	if err := cfg.resolveSecrets(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// resolveSecrets refuses to start a release build without both signing secrets and falls back
// to fixed development secrets otherwise.
func (c *Config) resolveSecrets() error {
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		if c.IsRelease() {
			return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required in release mode")
		}
		if c.JWT.AccessSecret == "" {
			c.JWT.AccessSecret = devAccessSecret
		}
		if c.JWT.RefreshSecret == "" {
			c.JWT.RefreshSecret = devRefreshSecret
		}
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	return nil
}

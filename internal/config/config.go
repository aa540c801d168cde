// Package config loads process configuration from defaults, an optional file and the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/govalues/money"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type IdempotencyConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type LedgerConfig struct {
	Currency string `mapstructure:"currency"`
}

type DevConfig struct {
	Seed bool `mapstructure:"seed"`
}

type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	HTTP        HTTPConfig        `mapstructure:"http"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Log         LogConfig         `mapstructure:"log"`
	Ledger      LedgerConfig      `mapstructure:"ledger"`
	Dev         DevConfig         `mapstructure:"dev"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	CORS        CORSConfig        `mapstructure:"cors"`
}

// env binds each key to the variable name operators already use.
var env = map[string]string{
	"http.addr":            "HTTP_ADDR",
	"database.url":         "DATABASE_URL",
	"redis.addr":           "REDIS_ADDR",
	"redis.password":       "REDIS_PASSWORD",
	"redis.db":             "REDIS_DB",
	"idempotency.ttl":      "IDEMPOTENCY_TTL",
	"log.level":            "LOG_LEVEL",
	"log.format":           "LOG_FORMAT",
	"ledger.currency":      "LEDGER_CURRENCY",
	"dev.seed":             "DEV_SEED",
	"jwt.secret":           "JWT_HS256_SECRET",
	"jwt.issuer":           "JWT_ISSUER",
	"jwt.audience":         "JWT_AUDIENCE",
	"cors.allowed_origins": "CORS_ALLOWED_ORIGINS",
}

// Load reads configuration. A file is read only when CONFIG_FILE is set; environment
// variables override file values, which override defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("database.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("idempotency.ttl", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("ledger.currency", "BRL")
	v.SetDefault("dev.seed", false)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("jwt.audience", "")
	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Ledger.Currency = strings.ToUpper(strings.TrimSpace(c.Ledger.Currency))
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects values the process cannot start with.
func (c Config) Validate() error {
	if _, err := money.ParseCurr(c.Ledger.Currency); err != nil {
		return fmt.Errorf("ledger.currency %q: %w", c.Ledger.Currency, err)
	}
	if c.Idempotency.TTL <= 0 {
		return fmt.Errorf("idempotency.ttl must be positive, got %s", c.Idempotency.TTL)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}
	return nil
}

// MemoryBacked reports whether no database is configured.
func (c Config) MemoryBacked() bool { return strings.TrimSpace(c.Database.URL) == "" }

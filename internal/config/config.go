package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"

	envcfg "github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppEnv     string
	ServerAddr string
	LogLevel   string

	DBDriver    string
	DatabaseURL string

	JWTSecret     []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	KafkaBrokers []string

	RedisAddr      string
	RedisPassword  string
	AuthRateLimit  int
	AuthRateWindow time.Duration

	CORSOrigins []string
}

// LoadDotEnv reads .env when present; a missing file only produces a notice.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		slog.Info("dotenv_not_loaded", "reason", "using process environment", "error", err)
	}
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:     envcfg.EnvDefault("APP_ENV", EnvDevelopment),
		ServerAddr: envcfg.EnvDefault("SERVER_ADDR", ":8080"),
		LogLevel:   envcfg.EnvDefault("LOG_LEVEL", "info"),

		DBDriver:    envcfg.EnvDefault("DB_DRIVER", DriverPostgres),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:     []byte(os.Getenv("JWT_SECRET")),
		RefreshSecret: []byte(os.Getenv("REFRESH_SECRET")),
		AccessTTL:     envcfg.EnvDurationDefault("ACCESS_TOKEN_TTL", tokens.DefaultAccessTTL),
		RefreshTTL:    envcfg.EnvDurationDefault("REFRESH_TOKEN_TTL", tokens.DefaultRefreshTTL),

		KafkaBrokers: envcfg.CSV(os.Getenv("KAFKA_BROKERS")),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		AuthRateLimit:  envcfg.EnvIntDefault("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: envcfg.EnvDurationDefault("AUTH_RATE_WINDOW", time.Minute),

		CORSOrigins: envcfg.CSV(os.Getenv("CORS_ORIGINS")),
	}

	if cfg.DatabaseURL == "" && cfg.DBDriver == DriverPostgres {
		cfg.DatabaseURL = postgresDSNFromParts()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := envcfg.RequireNonEmptyBytes(c.JWTSecret, "JWT_SECRET"); err != nil {
		return err
	}
	if err := envcfg.RequireNonEmptyBytes(c.RefreshSecret, "REFRESH_SECRET"); err != nil {
		return err
	}
	if string(c.JWTSecret) == string(c.RefreshSecret) {
		return errors.New("JWT_SECRET and REFRESH_SECRET must differ")
	}
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if err := envcfg.RequireNonEmpty(c.DatabaseURL, "DATABASE_URL"); err != nil {
		return err
	}
	return nil
}

func (c *Config) Production() bool {
	return c.AppEnv == EnvProduction
}

// postgresDSNFromParts builds a DSN from DB_HOST, DB_PORT, DB_USER,
// DB_PASSWORD and DB_NAME. It returns "" when DB_HOST is unset.
func postgresDSNFromParts() string {
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD")),
		Host:     host + ":" + envcfg.EnvDefault("DB_PORT", "5432"),
		Path:     "/" + os.Getenv("DB_NAME"),
		RawQuery: "sslmode=" + envcfg.EnvDefault("DB_SSLMODE", "disable"),
	}
	return u.String()
}

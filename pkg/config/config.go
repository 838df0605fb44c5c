package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often a pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	Redis RedisConfig

	Session SessionConfig

	Limits LimitsConfig

	Telemetry TelemetryConfig

	// AllowedOrigins is a comma-separated allowlist for browser callers. Example:
	//   https://app.example.com,http://localhost:5173
	AllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type RedisConfig struct {
	// Addr empty means the in-process cache is used.
	Addr            string
	Password        string
	DB              int
	CacheTTLSeconds int

	// MaxMemoryEntries caps the in-process cache.
	MaxMemoryEntries int
}

type SessionConfig struct {
	Secret   string
	Audience string
}

// LimitsConfig bounds the work a single request may ask the calculator for.
type LimitsConfig struct {
	MaxInstallments    int
	MaxInterimPayments int
}

type TelemetryConfig struct {
	OTELEndpoint    string
	OTELServiceName string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "paymentplan"),
			User:     env("DB_USER", "paymentplan"),
			Password: env("DB_PASSWORD", "paymentplan"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:             os.Getenv("REDIS_ADDR"),
			Password:         os.Getenv("REDIS_PASSWORD"),
			DB:               envInt("REDIS_DB", 0),
			CacheTTLSeconds:  envInt("CACHE_TTL_SECONDS", 3600),
			MaxMemoryEntries: envInt("CACHE_MAX_ENTRIES", 10000),
		},
		Session: SessionConfig{
			Secret:   os.Getenv("SESSION_SECRET"),
			Audience: os.Getenv("SESSION_AUDIENCE"),
		},
		Limits: LimitsConfig{
			MaxInstallments:    envInt("MAX_INSTALLMENTS", 600),
			MaxInterimPayments: envInt("MAX_INTERIM_PAYMENTS", 120),
		},
		Telemetry: TelemetryConfig{
			OTELEndpoint:    os.Getenv("OTEL_ENDPOINT"),
			OTELServiceName: env("OTEL_SERVICE_NAME", "paymentplan"),
		},

		AllowedOrigins: envList("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173"),
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// Server captures gateway-level configuration.
type Server struct {
	Addr              string
	MetricsAddr       string
	Issuer            string
	LoginURL          string
	SessionSigningKey string
	NonceSigningKey   string
	NonceTTL          time.Duration
	MinimalCapability string
	LogLevel          slog.Level

	RedisURL     string
	PostgresDSN  string
	KafkaBrokers []string
	KafkaTopic   string
}

// FromEnv builds a Server config from environment variables so main stays
// lean. Unset backends (Redis, Postgres, Kafka) fall back to in-memory
// implementations.
func FromEnv() Server {
	cfg := Server{
		Addr:              envOr("OIDC_GATEWAY_ADDR", ":8080"),
		MetricsAddr:       envOr("OIDC_GATEWAY_METRICS_ADDR", ":9090"),
		Issuer:            envOr("OIDC_GATEWAY_ISSUER", "http://localhost:8080"),
		LoginURL:          envOr("OIDC_GATEWAY_LOGIN_URL", "http://localhost:8080/login"),
		SessionSigningKey: envOr("SESSION_SIGNING_KEY", "dev-secret-key-change-in-production"),
		NonceSigningKey:   envOr("NONCE_SIGNING_KEY", "dev-nonce-key-change-in-production"),
		NonceTTL:          10 * time.Minute,
		MinimalCapability: envOr("OIDC_MINIMAL_CAPABILITY", "use_openid_connect"),
		LogLevel:          slog.LevelInfo,

		RedisURL:    os.Getenv("REDIS_URL"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		KafkaTopic:  envOr("KAFKA_AUDIT_TOPIC", "gateway.audit.compliance"),
	}
	if os.Getenv("LOG_LEVEL") == "debug" {
		cfg.LogLevel = slog.LevelDebug
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

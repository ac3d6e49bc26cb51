package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Backends left unconfigured
// fall back to in-memory stores so the portal runs without infrastructure.
type Server struct {
	Addr          string
	JWTSigningKey string
	Postgres      PostgresConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
}

// PostgresConfig holds the profile store connection settings.
type PostgresConfig struct {
	URL string
}

// RedisConfig holds connection settings for the state stores.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the audit publisher settings.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CHALAK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("CHALAK_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; override in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	auditTopic := os.Getenv("CHALAK_AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "chalak.audit.v1"
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		Postgres: PostgresConfig{
			URL: os.Getenv("CHALAK_POSTGRES_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("CHALAK_REDIS_URL"),
			PoolSize:     envInt("CHALAK_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("CHALAK_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("CHALAK_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("CHALAK_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("CHALAK_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("CHALAK_KAFKA_BROKERS")),
			AuditTopic: auditTopic,
		},
	}
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil {
			return v
		}
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

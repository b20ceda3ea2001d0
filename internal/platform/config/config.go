package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server needs from the environment so main
// stays lean.
type Config struct {
	Addr        string
	DatabaseURL string
	LogLevel    string

	// AdminToken guards the bulk reveal endpoint. There is deliberately no
	// default: an empty token disables the endpoint entirely. A real
	// identity/policy layer is the integrator's responsibility.
	AdminToken string

	Redis RedisConfig
	Kafka KafkaConfig

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
}

// RedisConfig configures the optional stats cache. Empty URL means disabled.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional audit sink. Empty Brokers means disabled.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:              envOr("SEVA_ADDR", ":5000"),
		DatabaseURL:       os.Getenv("SEVA_DATABASE_URL"),
		LogLevel:          envOr("SEVA_LOG_LEVEL", "info"),
		AdminToken:        os.Getenv("SEVA_ADMIN_TOKEN"),
		DBMaxOpenConns:    envIntOr("SEVA_DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:    envIntOr("SEVA_DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: envDurationOr("SEVA_DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}

	cfg.Redis = RedisConfig{
		URL:          os.Getenv("SEVA_REDIS_URL"),
		PoolSize:     envIntOr("SEVA_REDIS_POOL_SIZE", 10),
		MinIdleConns: envIntOr("SEVA_REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  envDurationOr("SEVA_REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  envDurationOr("SEVA_REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: envDurationOr("SEVA_REDIS_WRITE_TIMEOUT", 3*time.Second),
	}

	if brokers := os.Getenv("SEVA_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka = KafkaConfig{
			Brokers: strings.Split(brokers, ","),
			Topic:   envOr("SEVA_KAFKA_AUDIT_TOPIC", "seva.audit"),
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

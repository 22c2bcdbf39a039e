package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Every field has a working
// default so the service runs with an empty environment; unparsable values
// fall back to the default rather than failing startup.
type Server struct {
	Addr          string
	JWTSigningKey string
	SessionTTL    time.Duration
	SecureCookies bool
	// AllowedOrigins are the browser origins permitted to send credentials.
	AllowedOrigins []string

	LogLevel  string
	LogFormat string

	Ledger Ledger
	Admin  SeedAdmin

	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
}

// Ledger holds the reward policy constants.
type Ledger struct {
	Cooldown     time.Duration
	Award        int
	HistoryLimit int
}

// SeedAdmin is the administrator ensured at startup.
type SeedAdmin struct {
	Email    string
	Password string
	Name     string
}

// RedisConfig configures the optional cooldown index backend.
// Addrs selects a cluster, or a sentinel set when MasterName is also set;
// otherwise URL names a single node. Neither keeps the index in memory.
type RedisConfig struct {
	URL          string
	Addrs        []string
	MasterName   string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the optional audit event store.
type PostgresConfig struct {
	URL string
}

// KafkaConfig configures the optional audit event stream.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

const (
	DefaultAddr          = ":5000"
	DefaultSessionTTL    = 7 * 24 * time.Hour
	DefaultCooldown      = 5 * time.Minute
	DefaultAward         = 10
	DefaultHistoryLimit  = 20
	DefaultAdminEmail    = "admin@smartcity.test"
	DefaultAdminPassword = "admin123"
	DefaultAdminName     = "City Admin"
	DefaultAuditTopic    = "smartbin.audit"
	DefaultAllowedOrigin = "http://localhost:5173"
	devSigningKey        = "dev-secret-key-change-in-production"
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:           stringOr("SMARTBIN_ADDR", DefaultAddr),
		JWTSigningKey:  stringOr("JWT_SECRET", devSigningKey),
		SessionTTL:     durationOr("SESSION_TTL", DefaultSessionTTL),
		SecureCookies:  boolOr("SECURE_COOKIES", false),
		AllowedOrigins: listOrDefault("CORS_ORIGINS", DefaultAllowedOrigin),
		LogLevel:       stringOr("LOG_LEVEL", "info"),
		LogFormat:      stringOr("LOG_FORMAT", "json"),
		Ledger: Ledger{
			Cooldown:     durationOr("SCAN_COOLDOWN", DefaultCooldown),
			Award:        positiveIntOr("SCAN_AWARD", DefaultAward),
			HistoryLimit: positiveIntOr("SCAN_HISTORY_LIMIT", DefaultHistoryLimit),
		},
		Admin: SeedAdmin{
			Email:    stringOr("ADMIN_EMAIL", DefaultAdminEmail),
			Password: stringOr("ADMIN_PASSWORD", DefaultAdminPassword),
			Name:     stringOr("ADMIN_NAME", DefaultAdminName),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			Addrs:        listOr("REDIS_ADDRS"),
			MasterName:   os.Getenv("REDIS_MASTER_NAME"),
			PoolSize:     positiveIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: positiveIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Kafka: KafkaConfig{
			Brokers:    listOr("KAFKA_BROKERS"),
			AuditTopic: stringOr("KAFKA_AUDIT_TOPIC", DefaultAuditTopic),
		},
	}
}

func stringOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func positiveIntOr(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func boolOr(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func listOrDefault(key string, fallback ...string) []string {
	if out := listOr(key); len(out) > 0 {
		return out
	}
	return fallback
}

func listOr(key string) []string {
	var out []string
	for part := range strings.SplitSeq(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

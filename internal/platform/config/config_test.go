package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"SMARTBIN_ADDR", "JWT_SECRET", "SESSION_TTL", "SCAN_COOLDOWN",
		"SCAN_AWARD", "SCAN_HISTORY_LIMIT", "REDIS_URL", "REDIS_ADDRS", "DATABASE_URL", "KAFKA_BROKERS", "CORS_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.Ledger.Cooldown)
	assert.Equal(t, 10, cfg.Ledger.Award)
	assert.Equal(t, 20, cfg.Ledger.HistoryLimit)
	assert.Equal(t, "admin@smartcity.test", cfg.Admin.Email)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Redis.Addrs)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.NotEmpty(t, cfg.JWTSigningKey)
	assert.Equal(t, []string{DefaultAllowedOrigin}, cfg.AllowedOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SMARTBIN_ADDR", ":9000")
	t.Setenv("SCAN_COOLDOWN", "90s")
	t.Setenv("SCAN_AWARD", "25")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("SECURE_COOKIES", "true")
	t.Setenv("CORS_ORIGINS", "https://bins.example.org")
	t.Setenv("REDIS_ADDRS", "s1:26379,s2:26379")
	t.Setenv("REDIS_MASTER_NAME", "primary")

	cfg := FromEnv()

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 90*time.Second, cfg.Ledger.Cooldown)
	assert.Equal(t, 25, cfg.Ledger.Award)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, []string{"https://bins.example.org"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"s1:26379", "s2:26379"}, cfg.Redis.Addrs)
	assert.Equal(t, "primary", cfg.Redis.MasterName)
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SCAN_COOLDOWN", "soon")
	t.Setenv("SCAN_AWARD", "-3")
	t.Setenv("SCAN_HISTORY_LIMIT", "many")
	t.Setenv("SECURE_COOKIES", "maybe")

	cfg := FromEnv()

	assert.Equal(t, DefaultCooldown, cfg.Ledger.Cooldown)
	assert.Equal(t, DefaultAward, cfg.Ledger.Award)
	assert.Equal(t, DefaultHistoryLimit, cfg.Ledger.HistoryLimit)
	assert.False(t, cfg.SecureCookies)
}

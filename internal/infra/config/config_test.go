package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"APP_ENV", "HTTP_ADDR", "STORAGE_MODE", "MONGO_URI", "MONGO_DB", "KAFKA_BROKERS",
	"KAFKA_TOPIC_PREFIX", "AUDIT_TOPIC", "IDEMPOTENCY_BACKEND", "REDIS_ADDR",
	"REDIS_PASSWORD", "IDEMP_TTL", "OUTBOX_POLL_INTERVAL", "RETRY_BACKOFF",
	"WRITE_RETRIES", "DEFAULT_CURRENCY", "FIXTURES_PATH",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "dev", cfg.Env)
	require.True(t, cfg.Dev())
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, StorageMemory, cfg.StorageMode)
	require.Equal(t, IdempotencyMemory, cfg.IdempotencyBackend)
	require.Equal(t, 5, cfg.WriteRetries)
	require.Equal(t, "USD", cfg.DefaultCurrency)
	require.Equal(t, 168*time.Hour, cfg.IdempotencyTTL)
	require.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	require.Empty(t, cfg.KafkaBrokers)
}

func TestLoadMongoMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_MODE", "mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("WRITE_RETRIES", "8")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, IdempotencyMongo, cfg.IdempotencyBackend)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 8, cfg.WriteRetries)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"mongo without uri", map[string]string{"STORAGE_MODE": "mongo"}},
		{"unknown storage", map[string]string{"STORAGE_MODE": "sqlite"}},
		{"mongo idempotency on memory", map[string]string{"IDEMPOTENCY_BACKEND": "mongo"}},
		{"unknown idempotency", map[string]string{"IDEMPOTENCY_BACKEND": "etcd"}},
		{"zero retries", map[string]string{"WRITE_RETRIES": "0"}},
		{"bad retries", map[string]string{"WRITE_RETRIES": "many"}},
		{"bad ttl", map[string]string{"IDEMP_TTL": "week"}},
		{"bad backoff", map[string]string{"RETRY_BACKOFF": "1s,soon"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("AUDIT_TOPIC")
	t.Setenv("HTTP_ADDR", ":9999")
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("AUDIT_TOPIC=audit.v1\nHTTP_ADDR=:1111\n"), 0o600))

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	t.Cleanup(func() { os.Unsetenv("AUDIT_TOPIC") })

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "audit.v1", cfg.AuditTopic)
	require.Equal(t, ":9999", cfg.HTTPAddr)
}

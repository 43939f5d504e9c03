package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"

	IdempotencyMemory = "memory"
	IdempotencyMongo  = "mongo"
	IdempotencyRedis  = "redis"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                string
	HTTPAddr           string
	StorageMode        string
	MongoURI           string
	MongoDB            string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	AuditTopic         string
	IdempotencyBackend string
	RedisAddr          string
	RedisPassword      string
	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	WriteRetries       int
	DefaultCurrency    string
	FixturesPath       string
}

// LoadDotEnv merges the given .env files (".env" when none) into the process
// environment. Variables already set win. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:                getEnv("APP_ENV", "dev"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		StorageMode:        strings.ToLower(getEnv("STORAGE_MODE", StorageMemory)),
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDB:            getEnv("MONGO_DB", "staybook"),
		KafkaTopicPrefix:   getEnv("KAFKA_TOPIC_PREFIX", ""),
		AuditTopic:         getEnv("AUDIT_TOPIC", ""),
		IdempotencyBackend: strings.ToLower(os.Getenv("IDEMPOTENCY_BACKEND")),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		DefaultCurrency:    strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")),
		FixturesPath:       os.Getenv("FIXTURES_PATH"),
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	idempotencyTTL, err := parseDurationEnv("IDEMP_TTL", 168*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.IdempotencyTTL = idempotencyTTL

	poll, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.OutboxPollInterval = poll

	retries, err := parseIntEnv("WRITE_RETRIES", 5)
	if err != nil {
		return Config{}, err
	}
	if retries < 1 {
		return Config{}, fmt.Errorf("WRITE_RETRIES must be at least 1, got %d", retries)
	}
	cfg.WriteRetries = retries

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	switch cfg.StorageMode {
	case StorageMemory:
	case StorageMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when STORAGE_MODE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_MODE %q", cfg.StorageMode)
	}

	if cfg.IdempotencyBackend == "" {
		cfg.IdempotencyBackend = cfg.StorageMode
	}
	switch cfg.IdempotencyBackend {
	case IdempotencyMemory, IdempotencyRedis:
	case IdempotencyMongo:
		if cfg.StorageMode != StorageMongo {
			return Config{}, fmt.Errorf("IDEMPOTENCY_BACKEND=mongo requires STORAGE_MODE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("unknown IDEMPOTENCY_BACKEND %q", cfg.IdempotencyBackend)
	}
	return cfg, nil
}

// Dev reports whether the process runs in a developer environment.
func (c Config) Dev() bool {
	return c.Env == "dev" || c.Env == "local"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	pstrings "idres/pkg/platform/strings"
)

// Store backends for the identity configuration.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Event backends for change notifications.
const (
	EventsNone  = "none"
	EventsNATS  = "nats"
	EventsKafka = "kafka"
)

// Config is the server configuration, read once at startup.
type Config struct {
	HTTPAddr        string        // IDRES_HTTP_ADDR (default ":8080")
	LogLevel        string        // IDRES_LOG_LEVEL (default "info")
	LogFormat       string        // IDRES_LOG_FORMAT (json|text, default "json")
	ShutdownTimeout time.Duration // IDRES_SHUTDOWN_TIMEOUT (default 10s)

	Store     StoreConfig
	Redis     RedisConfig
	Events    EventsConfig
	Auth      AuthConfig
	Profile   ProfileConfig
	Export    ExportConfig
	RateLimit RateLimitConfig
	EnvFile   string // IDRES_ENV_FILE (default ".env")
}

// StoreConfig selects where the identity configuration is persisted.
type StoreConfig struct {
	Kind        string // IDRES_STORE (memory|file|redis|postgres)
	Path        string // IDRES_STORE_PATH (file store, default "idres-config.json")
	DatabaseURL string // IDRES_DATABASE_URL (postgres store)
}

// RedisConfig configures the shared go-redis client.
type RedisConfig struct {
	URL          string        // IDRES_REDIS_URL
	PoolSize     int           // IDRES_REDIS_POOL_SIZE (default 10)
	MinIdleConns int           // IDRES_REDIS_MIN_IDLE (default 2)
	DialTimeout  time.Duration // IDRES_REDIS_DIAL_TIMEOUT (default 5s)
	ReadTimeout  time.Duration // IDRES_REDIS_READ_TIMEOUT (default 3s)
	WriteTimeout time.Duration // IDRES_REDIS_WRITE_TIMEOUT (default 3s)
}

// EventsConfig selects the change-notification transport.
type EventsConfig struct {
	Kind         string   // IDRES_EVENTS (none|nats|kafka)
	NATSURL      string   // IDRES_NATS_URL
	KafkaBrokers []string // IDRES_KAFKA_BROKERS (comma separated)
	KafkaTopic   string   // IDRES_KAFKA_TOPIC (default "idres.config")
}

// AuthConfig guards the HTTP API. Empty values disable the guard.
type AuthConfig struct {
	JWTSigningKey string // IDRES_JWT_SIGNING_KEY
	JWTIssuer     string // IDRES_JWT_ISSUER (default "idres")
	AdminToken    string // IDRES_ADMIN_TOKEN (required for workspace writes when set)
}

// ProfileConfig points at the Segment Profile API.
type ProfileConfig struct {
	BaseURL string        // IDRES_PROFILE_API_URL (default "https://profiles.segment.com")
	Timeout time.Duration // IDRES_PROFILE_TIMEOUT (default 10s)
}

// ExportConfig configures export uploads.
type ExportConfig struct {
	S3Bucket   string // IDRES_EXPORT_S3_BUCKET (enables S3 exports when set)
	S3Region   string // IDRES_EXPORT_S3_REGION (default "us-east-1")
	S3Endpoint string // IDRES_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	S3Prefix   string // IDRES_EXPORT_S3_PREFIX (default "exports/")
}

// RateLimitConfig throttles upstream-bound endpoints. Zero disables a class.
// Counters live in Redis when IDRES_REDIS_URL is set.
type RateLimitConfig struct {
	Profile int           // IDRES_RATE_LIMIT_PROFILE (default 120 per window)
	Export  int           // IDRES_RATE_LIMIT_EXPORT (default 10 per window)
	Window  time.Duration // IDRES_RATE_LIMIT_WINDOW (default 1m)
}

// Load builds a Config from environment variables so main stays lean.
func Load() (*Config, error) {
	c := &Config{
		HTTPAddr:  envOrDefault("IDRES_HTTP_ADDR", ":8080"),
		LogLevel:  envOrDefault("IDRES_LOG_LEVEL", "info"),
		LogFormat: envOrDefault("IDRES_LOG_FORMAT", "json"),
		EnvFile:   envOrDefault("IDRES_ENV_FILE", ".env"),
		Store: StoreConfig{
			Kind:        envOrDefault("IDRES_STORE", StoreMemory),
			Path:        envOrDefault("IDRES_STORE_PATH", "idres-config.json"),
			DatabaseURL: os.Getenv("IDRES_DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("IDRES_REDIS_URL"),
		},
		Events: EventsConfig{
			Kind:         envOrDefault("IDRES_EVENTS", EventsNone),
			NATSURL:      os.Getenv("IDRES_NATS_URL"),
			KafkaBrokers: pstrings.SplitList(os.Getenv("IDRES_KAFKA_BROKERS")),
			KafkaTopic:   envOrDefault("IDRES_KAFKA_TOPIC", "idres.config"),
		},
		Auth: AuthConfig{
			JWTSigningKey: os.Getenv("IDRES_JWT_SIGNING_KEY"),
			JWTIssuer:     envOrDefault("IDRES_JWT_ISSUER", "idres"),
			AdminToken:    os.Getenv("IDRES_ADMIN_TOKEN"),
		},
		Profile: ProfileConfig{
			BaseURL: envOrDefault("IDRES_PROFILE_API_URL", "https://profiles.segment.com"),
		},
		Export: ExportConfig{
			S3Bucket:   os.Getenv("IDRES_EXPORT_S3_BUCKET"),
			S3Region:   envOrDefault("IDRES_EXPORT_S3_REGION", "us-east-1"),
			S3Endpoint: os.Getenv("IDRES_EXPORT_S3_ENDPOINT"),
			S3Prefix:   envOrDefault("IDRES_EXPORT_S3_PREFIX", "exports/"),
		},
	}

	var err error
	if c.ShutdownTimeout, err = durationEnv("IDRES_SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if c.Profile.Timeout, err = durationEnv("IDRES_PROFILE_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if c.Redis.DialTimeout, err = durationEnv("IDRES_REDIS_DIAL_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if c.Redis.ReadTimeout, err = durationEnv("IDRES_REDIS_READ_TIMEOUT", "3s"); err != nil {
		return nil, err
	}
	if c.Redis.WriteTimeout, err = durationEnv("IDRES_REDIS_WRITE_TIMEOUT", "3s"); err != nil {
		return nil, err
	}
	if c.RateLimit.Window, err = durationEnv("IDRES_RATE_LIMIT_WINDOW", "1m"); err != nil {
		return nil, err
	}
	if c.RateLimit.Profile, err = intEnv("IDRES_RATE_LIMIT_PROFILE", 120); err != nil {
		return nil, err
	}
	if c.RateLimit.Export, err = intEnv("IDRES_RATE_LIMIT_EXPORT", 10); err != nil {
		return nil, err
	}
	if c.Redis.PoolSize, err = intEnv("IDRES_REDIS_POOL_SIZE", 10); err != nil {
		return nil, err
	}
	if c.Redis.MinIdleConns, err = intEnv("IDRES_REDIS_MIN_IDLE", 2); err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	switch c.Store.Kind {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("IDRES_REDIS_URL is required when IDRES_STORE=redis")
		}
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("IDRES_DATABASE_URL is required when IDRES_STORE=postgres")
		}
	default:
		return fmt.Errorf("IDRES_STORE: unknown store %q", c.Store.Kind)
	}

	switch c.Events.Kind {
	case EventsNone:
	case EventsNATS:
		if c.Events.NATSURL == "" {
			return fmt.Errorf("IDRES_NATS_URL is required when IDRES_EVENTS=nats")
		}
	case EventsKafka:
		if len(c.Events.KafkaBrokers) == 0 {
			return fmt.Errorf("IDRES_KAFKA_BROKERS is required when IDRES_EVENTS=kafka")
		}
	default:
		return fmt.Errorf("IDRES_EVENTS: unknown backend %q", c.Events.Kind)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

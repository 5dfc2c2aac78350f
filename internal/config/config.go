package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/utafrali/reputation/pkg/config"
	"github.com/utafrali/reputation/pkg/logger"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds all configuration for the reputation service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort              int `env:"REPUTATION_HTTP_PORT" envDefault:"8080"`
	RequestTimeoutSeconds int `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`

	// Storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"reputation"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"reputation_secret"`
	PostgresDB   string `env:"REPUTATION_DB_NAME" envDefault:"reputation_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis (metrics cache, event idempotency). Empty host disables it.
	RedisHost              string `env:"REDIS_HOST"`
	RedisPort              int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword          string `env:"REDIS_PASSWORD"`
	RedisDB                int    `env:"REDIS_DB" envDefault:"0"`
	RedisPoolSize          int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MetricsCacheTTLSeconds int    `env:"METRICS_CACHE_TTL_SECONDS" envDefault:"3600"`
	IdempotencyTTLHours    int    `env:"EVENT_IDEMPOTENCY_TTL_HOURS" envDefault:"24"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Elasticsearch. Empty URL falls back to in-process search.
	ElasticsearchURL   string `env:"ELASTICSEARCH_URL"`
	ElasticsearchIndex string `env:"ELASTICSEARCH_INDEX" envDefault:"reputation_reviews"`

	// Remote sentiment analysis. Empty URL keeps the built-in lexicon.
	SentimentAPIURL string `env:"SENTIMENT_API_URL"`

	// Auth. Empty secret leaves mutating routes unauthenticated.
	JWTSecret        string   `env:"JWT_SECRET"`
	SourceAdminRoles []string `env:"SOURCE_ADMIN_ROLES" envDefault:"admin" envSeparator:","`

	// Encrypts source API keys and credentials in postgres. Empty stores them in plain text.
	SourceSecretKey string `env:"SOURCE_SECRET_KEY"`

	// Rate limiting. Zero RPS disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"100"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load reputation config: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP port: %d", c.HTTPPort))
	}
	if _, ok := logger.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel))
	}

	switch c.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if c.PostgresHost == "" {
			errs = append(errs, errors.New("POSTGRES_HOST is required for the postgres backend"))
		}
		if c.PostgresUser == "" {
			errs = append(errs, errors.New("POSTGRES_USER is required for the postgres backend"))
		}
		if c.PostgresPort < 1 || c.PostgresPort > 65535 {
			errs = append(errs, fmt.Errorf("invalid POSTGRES_PORT: %d", c.PostgresPort))
		}
		if c.DBMinConns > c.DBMaxConns {
			errs = append(errs, fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be one of %s, %s; got %q", StorageMemory, StoragePostgres, c.StorageBackend))
	}

	if c.RedisHost != "" && (c.RedisPort < 1 || c.RedisPort > 65535) {
		errs = append(errs, fmt.Errorf("invalid REDIS_PORT: %d", c.RedisPort))
	}
	if c.MetricsCacheTTLSeconds < 0 {
		errs = append(errs, fmt.Errorf("METRICS_CACHE_TTL_SECONDS must not be negative, got %d", c.MetricsCacheTTLSeconds))
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set"))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %f", c.RateLimitRPS))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", c.RateLimitBurst))
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate))
	}
	if c.Environment == "production" && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.Environment == "production" && c.UsePostgres() && c.SourceSecretKey == "" {
		errs = append(errs, errors.New("SOURCE_SECRET_KEY is required in production with the postgres backend"))
	}
	return errors.Join(errs...)
}

// UsePostgres reports whether the postgres backend is selected.
func (c *Config) UsePostgres() bool {
	return strings.EqualFold(c.StorageBackend, StoragePostgres)
}

// MetricsCacheTTL is the lifetime of cached metrics records.
func (c *Config) MetricsCacheTTL() time.Duration {
	return time.Duration(c.MetricsCacheTTLSeconds) * time.Second
}

// IdempotencyTTL is how long processed event IDs are remembered.
func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempotencyTTLHours) * time.Hour
}

// RequestTimeout bounds a single API request.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

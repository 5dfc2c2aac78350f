package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	cacheredis "github.com/utafrali/reputation/internal/cache/redis"
	"github.com/utafrali/reputation/internal/config"
	"github.com/utafrali/reputation/internal/event"
	handler "github.com/utafrali/reputation/internal/handler/http"
	"github.com/utafrali/reputation/internal/repository"
	"github.com/utafrali/reputation/internal/repository/memory"
	"github.com/utafrali/reputation/internal/repository/postgres"
	"github.com/utafrali/reputation/internal/search"
	"github.com/utafrali/reputation/internal/sentiment"
	"github.com/utafrali/reputation/internal/service"
	"github.com/utafrali/reputation/migrations"
	"github.com/utafrali/reputation/pkg/database"
	"github.com/utafrali/reputation/pkg/health"
	"github.com/utafrali/reputation/pkg/httpclient"
	pkgkafka "github.com/utafrali/reputation/pkg/kafka"
	"github.com/utafrali/reputation/pkg/middleware"
	"github.com/utafrali/reputation/pkg/tracing"
)

const serviceName = "reputation"

// App wires together all dependencies and runs the reputation service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *goredis.Client
	producer       *pkgkafka.Producer
	ingestion      *pkgkafka.Consumer
	rateLimiter    *middleware.RateLimiter
	httpServer     *http.Server
	service        *service.ReputationService
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
// Optional infrastructure (Redis, Kafka, Elasticsearch, the remote
// sentiment API) is only connected when configured.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler()

	store, err := a.initStore(ctx, healthHandler)
	if err != nil {
		a.closeInfra()
		return nil, err
	}

	deps := service.Dependencies{
		Store:    store,
		Analyzer: a.initAnalyzer(),
		Logger:   logger,
	}

	var idempotency pkgkafka.IdempotencyStore = pkgkafka.NewMemoryIdempotencyStore(cfg.IdempotencyTTL())
	if cfg.RedisHost != "" {
		client, err := database.NewRedisClient(ctx, database.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			PoolSize: cfg.RedisPoolSize,
		}, logger)
		if err != nil {
			a.closeInfra()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
		metricsCache := cacheredis.NewMetricsCache(client, cfg.MetricsCacheTTL())
		deps.Cache = metricsCache
		idempotency = cacheredis.NewIdempotencyStore(client, cfg.IdempotencyTTL())
		healthHandler.RegisterNonCritical("redis", metricsCache.Ping)
	}

	if cfg.ElasticsearchURL != "" {
		engine, err := search.New(ctx, cfg.ElasticsearchURL, cfg.ElasticsearchIndex, logger)
		if err != nil {
			logger.Warn("elasticsearch unavailable, falling back to in-process search",
				slog.String("url", cfg.ElasticsearchURL),
				slog.String("error", err.Error()),
			)
		} else {
			deps.Search = engine
			healthHandler.RegisterNonCritical("elasticsearch", engine.Ping)
			logger.Info("connected to Elasticsearch",
				slog.String("url", cfg.ElasticsearchURL),
				slog.String("index", cfg.ElasticsearchIndex),
			)
		}
	}

	if cfg.KafkaEnabled {
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		if err := pingKafkaWithRetry(ctx, producer, logger); err != nil {
			logger.Warn("kafka producer ping failed after retries, continuing in degraded mode",
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
		}
		a.producer = producer
		deps.Events = event.NewProducer(producer, logger)
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
	}

	a.service = service.NewReputationService(deps)

	if cfg.KafkaEnabled {
		consumerHandler := event.NewConsumerHandler(a.service, logger)
		a.ingestion = event.NewIngestionConsumer(cfg.KafkaBrokers, consumerHandler, idempotency, logger)
	}

	routerCfg := handler.RouterConfig{
		ServiceName:    serviceName,
		Service:        a.service,
		Health:         healthHandler,
		Logger:         logger,
		CORS:           middleware.DefaultCORSConfig(),
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		RequestTimeout: cfg.RequestTimeout(),
	}
	routerCfg.CORS.AllowedOrigins = cfg.CORSAllowedOrigins
	if cfg.JWTSecret != "" {
		routerCfg.TokenValidator = middleware.HMACValidator(cfg.JWTSecret)
		routerCfg.SourceAdminRoles = cfg.SourceAdminRoles
	} else {
		logger.Warn("JWT_SECRET not set, mutating routes are unauthenticated")
	}
	if cfg.RateLimitRPS > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
		routerCfg.RateLimiter = a.rateLimiter
	}

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler.NewRouter(routerCfg),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// initStore builds the configured storage backend.
func (a *App) initStore(ctx context.Context, healthHandler *health.Handler) (repository.Store, error) {
	cfg := a.cfg
	if !cfg.UsePostgres() {
		a.logger.Info("using in-memory storage")
		return memory.New(), nil
	}

	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
	if err != nil {
		return repository.Store{}, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
		a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
		return repository.Store{}, fmt.Errorf("run migrations: %w", err)
	}
	a.logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, a.logger)
	}

	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	var sealer *postgres.Sealer
	if cfg.SourceSecretKey != "" {
		sealer, err = postgres.NewSealer(cfg.SourceSecretKey)
		if err != nil {
			return repository.Store{}, fmt.Errorf("init source sealer: %w", err)
		}
	} else {
		a.logger.Warn("SOURCE_SECRET_KEY not set, source secrets are stored in plain text")
	}
	return postgres.NewStore(pool, sealer), nil
}

// initAnalyzer returns the remote analyzer guarded by a circuit breaker when
// SENTIMENT_API_URL is set, else the lexicon analyzer.
func (a *App) initAnalyzer() sentiment.Analyzer {
	lexicon := sentiment.NewLexiconAnalyzer()
	if a.cfg.SentimentAPIURL == "" {
		return lexicon
	}

	client := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("sentiment-api"),
		a.logger,
	)
	a.logger.Info("remote sentiment analysis enabled", slog.String("url", a.cfg.SentimentAPIURL))
	return sentiment.NewRemoteAnalyzer(client, a.cfg.SentimentAPIURL, lexicon, a.logger)
}

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and the ingestion consumer, then blocks until
// the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	// Start HTTP server.
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Start Kafka ingestion consumer.
	if a.ingestion != nil {
		go func() {
			if err := a.ingestion.Start(ctx); err != nil {
				errCh <- fmt.Errorf("review ingestion consumer: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.logger.Error("component failed, shutting down", slog.String("error", err.Error()))
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka consumer, then producer
// 4. Redis client and PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.ingestion != nil {
		if err := a.ingestion.Close(); err != nil {
			a.logger.Error("review ingestion consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	errs = append(errs, a.closeInfra()...)

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeInfra releases the producer and the storage connections.
func (a *App) closeInfra() []error {
	var errs []error
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.producer = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.redis = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return errs
}

// pingKafkaWithRetry attempts to ping the Kafka producer with exponential
// backoff (3 attempts, 1s/2s/4s with ±25% jitter).
func pingKafkaWithRetry(ctx context.Context, producer *pkgkafka.Producer, logger *slog.Logger) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if err := producer.Ping(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if attempt < 2 {
			base := time.Duration(1<<uint(attempt)) * time.Second
			jitter := time.Duration(float64(base) * 0.25 * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter
			wait := base + jitter
			logger.Warn("kafka producer ping failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", 3),
				slog.Duration("backoff", wait),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return fmt.Errorf("kafka ping: context canceled during retry: %w", ctx.Err())
			case <-time.After(wait):
			}
		}
	}
	return fmt.Errorf("kafka producer ping failed after 3 attempts: %w", lastErr)
}

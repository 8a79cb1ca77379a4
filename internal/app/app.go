package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/Piyushkr001/revix/internal/config"
	"github.com/Piyushkr001/revix/internal/event"
	handler "github.com/Piyushkr001/revix/internal/handler/http"
	"github.com/Piyushkr001/revix/internal/identity"
	"github.com/Piyushkr001/revix/internal/repository/postgres"
	redisrepo "github.com/Piyushkr001/revix/internal/repository/redis"
	"github.com/Piyushkr001/revix/internal/service"
	"github.com/Piyushkr001/revix/migrations"
	"github.com/Piyushkr001/revix/pkg/database"
	"github.com/Piyushkr001/revix/pkg/health"
	"github.com/Piyushkr001/revix/pkg/httpclient"
	pkgkafka "github.com/Piyushkr001/revix/pkg/kafka"
	"github.com/Piyushkr001/revix/pkg/middleware"
	"github.com/Piyushkr001/revix/pkg/tracing"
)

const (
	serviceName    = "revix-api"
	serviceVersion = "0.1.0"

	profileBreakerName = "identity-profile"
	profileBurst       = 5
)

// App wires together all dependencies and runs the revix API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize PostgreSQL connection pool.
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

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(registry, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Initialize Redis client.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("host", cfg.RedisHost),
		slog.Int("port", cfg.RedisPort),
	)

	// Initialize Kafka producer. Events are optional; without brokers they
	// are dropped.
	var (
		producer *pkgkafka.Producer
		events   service.EventPublisher = event.Noop{}
	)
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(
			pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers),
			pkgkafka.NewProducerMetrics(registry),
			logger,
		)
		events = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Identity: local token verification plus an optional profile lookup.
	verifier := identity.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	var source identity.ProfileSource
	if cfg.ProfileURL != "" {
		var doer httpclient.Doer = httpclient.New(httpclient.DefaultConfig())
		doer = httpclient.NewCircuitBreakerClient(doer,
			httpclient.DefaultCircuitBreakerConfig(profileBreakerName),
			httpclient.NewBreakerMetrics(registry),
			logger,
		)
		if cfg.ProfileRPS > 0 {
			doer = httpclient.NewRateLimitedClient(doer, cfg.ProfileRPS, profileBurst)
		}
		source = identity.NewHTTPProfileSource(doer, cfg.ProfileURL, cfg.ProfileAPIKey)
		logger.Info("identity profile lookup enabled", slog.String("url", cfg.ProfileURL))
	}
	resolver := identity.NewResolver(source, redisrepo.NewProfileCache(rdb), cfg.ProfileCacheTTL, logger)

	// Build the dependency graph.
	analysisRepo := postgres.NewAnalysisRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	supportRepo := postgres.NewSupportRepository(pool)
	metrics := service.NewMetrics(registry)

	services := handler.Services{
		Analyses: service.NewAnalysisService(analysisRepo, events, metrics, logger),
		Insights: service.NewInsightsService(analysisRepo, logger),
		Reports:  service.NewReportService(analysisRepo, reportRepo, events, metrics, logger),
		Users:    service.NewUserService(userRepo, resolver, events, logger),
		Settings: service.NewSettingsService(userRepo, settingsRepo, resolver, logger),
		Support:  service.NewSupportService(supportRepo, userRepo, resolver, events, logger),
	}

	var limiter middleware.Limiter
	if cfg.AnalysisRateLimitPerMinute > 0 {
		limiter = redisrepo.NewFixedWindowLimiter(rdb, cfg.AnalysisRateLimitPerMinute, time.Minute)
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if producer != nil {
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
	}

	// HTTP router.
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	router := handler.NewRouter(
		handler.RouterConfig{
			CORS:              cors,
			PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
			RequestTimeout:    handler.DefaultRequestTimeout,
		},
		services,
		handler.Deps{
			Verifier:        verifier,
			AnalysisLimiter: limiter,
			Health:          healthHandler,
			Registry:        registry,
			Logger:          logger,
		},
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		rdb:            rdb,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. Redis client
// 5. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests.
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 3. Close Kafka producer.
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 4. Close Redis client.
	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 5. Close PostgreSQL pool.
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/bot"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/config"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/event"
	handler "github.com/metalofmeat1/telegram-bot-for-selling/internal/handler/http"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/repository/postgres"
	redisrepo "github.com/metalofmeat1/telegram-bot-for-selling/internal/repository/redis"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/sender/telegram"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/service"
	"github.com/metalofmeat1/telegram-bot-for-selling/migrations"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/database"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/health"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/httpclient"
	pkgkafka "github.com/metalofmeat1/telegram-bot-for-selling/pkg/kafka"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/tracing"
)

const (
	// webhookQueueSize bounds updates accepted over HTTP but not yet picked up
	// by a worker.
	webhookQueueSize = 256

	// drainTimeout bounds how long shutdown waits for in-flight updates.
	drainTimeout = 10 * time.Second
)

// App wires together all dependencies and runs the storefront bot.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	api            *tgbotapi.BotAPI
	dispatcher     *bot.Dispatcher
	queue          *bot.WebhookQueue
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
	dispatchDone   chan error
}

// releaser collects the teardown of resources acquired so far.
type releaser []func()

func (r *releaser) add(f func()) { *r = append(*r, f) }

// run tears down in reverse acquisition order.
func (r releaser) run() {
	for i := len(r) - 1; i >= 0; i-- {
		r[i]()
	}
}

// NewApp creates a new application instance, initializing all dependencies.
// On failure everything acquired before the failing step is released.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var release releaser
	defer func() {
		if err != nil {
			release.run()
		}
	}()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    handler.ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	release.add(func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer shutdownCancel()
		_ = tracerShutdown(shutdownCtx)
	})

	// Initialize PostgreSQL connection pool.
	pgCfg := cfg.PostgresConfig()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	release.add(pool.Close)
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "storefront")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Initialize Redis for update de-duplication.
	redisClient, err := database.NewRedisClient(ctx, cfg.RedisConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	release.add(func() { _ = redisClient.Close() })
	logger.Info("connected to Redis", slog.String("addr", cfg.RedisConfig().Addr()))

	// Initialize Kafka producer when event publishing is enabled.
	var (
		producer  *pkgkafka.Producer
		publisher service.ConfirmationPublisher
	)
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		release.add(func() { _ = producer.Close() })
		publisher = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Bot API client behind retries and a circuit breaker.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.APITimeout + time.Duration(cfg.PollTimeoutSecs)*time.Second
	breaker := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("telegram"),
		logger,
	)
	api, err := tgbotapi.NewBotAPIWithClient(cfg.TelegramToken, tgbotapi.APIEndpoint, breaker.Doer())
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	logger.Info("authorized on telegram", slog.String("bot", api.Self.UserName))
	sink := telegram.NewSink(api, cfg.SendRatePerSecond, cfg.PlaceholderImage, logger)

	// Build the dependency graph.
	catalogRepo := postgres.NewCatalogRepository(pool)
	cartRepo := postgres.NewCartRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	staffRepo := postgres.NewStaffRepository(pool)
	dedup := redisrepo.NewUpdateDeduplicator(redisClient, cfg.UpdateDedupTTL)

	menuService := service.NewMenuService(catalogRepo, cartRepo, logger)
	shopService := service.NewShopService(userRepo, cartRepo, logger)
	staffService := service.NewStaffService(staffRepo, sink, logger)
	checkoutService := service.NewCheckoutService(userRepo, cartRepo, staffRepo, menuService, sink, publisher, logger)

	// Seed reference data and the initial admins.
	if err := service.NewBootstrapper(catalogRepo, staffService, logger).Seed(ctx, cfg.BootstrapAdminIDs); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	dispatcher := bot.NewDispatcher(bot.Services{
		Menu:     menuService,
		Shop:     shopService,
		Checkout: checkoutService,
		Staff:    staffService,
	}, sink, dedup, bot.Config{
		Workers:       cfg.UpdateWorkers,
		UpdateTimeout: cfg.APITimeout,
	}, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	if producer != nil {
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
	}

	// HTTP router. The webhook route only exists in webhook mode.
	var (
		queue   *bot.WebhookQueue
		webhook *handler.WebhookHandler
	)
	if cfg.TelegramMode == config.ModeWebhook {
		queue = bot.NewWebhookQueue(webhookQueueSize)
		webhook = handler.NewWebhookHandler(queue, cfg.WebhookSecret, logger)
	}
	router := handler.NewRouter(webhook, healthHandler, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		producer:       producer,
		api:            api,
		dispatcher:     dispatcher,
		queue:          queue,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// updates registers or clears the webhook and returns the update stream for
// the configured mode.
func (a *App) updates(ctx context.Context) (<-chan tgbotapi.Update, error) {
	if a.queue != nil {
		wh, err := tgbotapi.NewWebhook(a.cfg.WebhookURL + a.cfg.WebhookPath())
		if err != nil {
			return nil, fmt.Errorf("build webhook config: %w", err)
		}
		wh.AllowedUpdates = bot.AllowedUpdates
		if _, err := a.api.Request(wh); err != nil {
			return nil, fmt.Errorf("set webhook: %w", err)
		}
		a.logger.Info("webhook registered", slog.String("url", a.cfg.WebhookURL))
		return a.queue.Updates(), nil
	}

	if _, err := a.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return nil, fmt.Errorf("delete webhook: %w", err)
	}
	a.logger.Info("long polling started", slog.Int("timeout_seconds", a.cfg.PollTimeoutSecs))
	return bot.Poll(ctx, a.api, a.cfg.PollTimeoutSecs), nil
}

// Run starts the HTTP server and the update dispatcher and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	updates, err := a.updates(ctx)
	if err != nil {
		return errors.Join(err, a.Shutdown())
	}

	// The dispatcher stops when the update stream closes, so in-flight
	// updates survive the cancellation of ctx.
	a.dispatchDone = make(chan error, 1)
	go func() {
		a.dispatchDone <- a.dispatcher.Run(context.WithoutCancel(ctx), updates)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (stop accepting webhook updates)
// 2. Update dispatcher (finish in-flight updates)
// 3. Tracer (flush pending spans)
// 4. Kafka producer
// 5. Redis client
// 6. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Close the update stream and wait for workers. In polling mode the
	// stream closes once the pending long poll returns.
	if a.queue != nil {
		a.queue.Close()
	}
	if a.dispatchDone != nil {
		select {
		case err := <-a.dispatchDone:
			if err != nil {
				errs = append(errs, err)
			}
		case <-time.After(drainTimeout):
			a.logger.Warn("update dispatcher did not drain in time")
		}
	}

	// 3. Flush pending spans after the drain so update spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 4. Close Kafka producer.
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 5. Close Redis client.
	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 6. Close PostgreSQL pool.
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/erp/puntoventa/internal/application/catalog"
	financeapp "github.com/erp/puntoventa/internal/application/finance"
	partnerapp "github.com/erp/puntoventa/internal/application/partner"
	posapp "github.com/erp/puntoventa/internal/application/pos"
	sequenceapp "github.com/erp/puntoventa/internal/application/sequence"
	"github.com/erp/puntoventa/internal/domain/sequence"
	"github.com/erp/puntoventa/internal/domain/shared"
	"github.com/erp/puntoventa/internal/infrastructure/cache"
	"github.com/erp/puntoventa/internal/infrastructure/config"
	"github.com/erp/puntoventa/internal/infrastructure/event"
	"github.com/erp/puntoventa/internal/infrastructure/logger"
	"github.com/erp/puntoventa/internal/infrastructure/persistence"
	"github.com/erp/puntoventa/internal/infrastructure/telemetry"
	"github.com/erp/puntoventa/internal/interfaces/http/handler"
	"github.com/erp/puntoventa/internal/interfaces/http/middleware"
	"github.com/erp/puntoventa/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/erp/puntoventa/docs"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Punto de Venta API
//	@version		1.0
//	@description	Point of sale backend: orders, lines, taxes, payments and document sequences.

//	@contact.name	API Support
//	@contact.url	https://github.com/erp/puntoventa

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	TenantHeader
//	@in							header
//	@name						X-Tenant-ID
//	@description				Tenant UUID. Optional outside production, where a development tenant is assumed.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The OTLP log bridge must exist before the logger so every entry
	// reaches the collector
	bootLog := zap.NewNop()
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}

	var extraCores []zapcore.Core
	if loggerProvider.IsEnabled() {
		extraCores = append(extraCores, telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: loggerProvider,
			Level:          logger.ParseLevel(cfg.Log.Level),
		}))
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, extraCores...)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting punto de venta",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Profiling.Enabled,
		ServerAddress:   cfg.Profiling.ServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		ProfileTypes:    cfg.Profiling.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log).RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DefaultDBMetricsConfig(), log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(ctx)
		defer dbMetrics.Stop()
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			log.Fatal("Failed to migrate database schema", zap.Error(err))
		}
		log.Info("Database schema migrated")
	}

	// Redis only backs the optional counter and idempotency backends.
	// Kept as the interface so an unset client stays a nil interface.
	var redisClient redis.UniversalClient
	if cfg.Sequence.Backend == "redis" || cfg.Event.IdempotencyBackend == "redis" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr()))
		}
		redisClient = client
		defer func() {
			if err := client.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	location, err := cfg.Sequence.Location()
	if err != nil {
		log.Fatal("Invalid sequence timezone", zap.String("timezone", cfg.Sequence.Timezone), zap.Error(err))
	}

	counter, err := cache.NewCounter(cfg.Sequence, redisClient, log)
	if err != nil {
		log.Fatal("Failed to initialize sequence counter", zap.Error(err))
	}
	scope := persistence.NewGormTransactionScope(db.DB, counter)

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	taxRepo := persistence.NewGormTaxRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	sequenceRepo := persistence.NewGormSequenceRepository(db.DB)

	// Initialize services
	orderService := posapp.NewOrderService(scope, orderRepo, productRepo, taxRepo, customerRepo, location, log)
	paymentService := financeapp.NewPaymentService(scope, paymentRepo, orderRepo, log, financeapp.NewOrderPaidHook(log))
	sequenceService := sequenceapp.NewSequenceService(scope, sequenceRepo, log)
	if live, ok := counter.(sequence.Peeker); ok {
		sequenceService.SetLiveCounter(live)
	}
	productService := catalogapp.NewProductService(productRepo, taxRepo, orderRepo, log)
	taxService := catalogapp.NewTaxService(taxRepo, orderRepo, log)
	customerService := partnerapp.NewCustomerService(customerRepo, orderRepo, log)

	if meterProvider.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:  meterProvider.Meter("puntoventa.business"),
			Logger: log,
		})
		if err != nil {
			log.Warn("Business metrics disabled", zap.Error(err))
		} else {
			orderService.SetMetrics(businessMetrics)
			paymentService.SetMetrics(businessMetrics)
			sequenceService.SetMetrics(businessMetrics)
		}
	}

	// Event bus: catalog and partner changes flow into open orders
	idempotencyStore, err := cache.NewIdempotencyStore(cfg.Event, redisClient, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	eventBus := event.NewInMemoryEventBus(log)
	eventHandlers := event.WrapHandlersWithIdempotency([]shared.EventHandler{
		posapp.NewCustomerUpdatedHandler(orderRepo, log),
		posapp.NewProductPricingHandler(orderRepo, taxRepo, log),
		posapp.NewTaxAmountHandler(orderRepo, log),
	}, idempotencyStore, log, event.WithIdempotencyConfig(shared.IdempotencyConfig{
		TTL:     cfg.Event.IdempotencyTTL,
		Enabled: true,
	}))
	for _, h := range eventHandlers {
		eventBus.Subscribe(h)
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	orderService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	sequenceService.SetEventPublisher(eventBus)
	productService.SetEventPublisher(eventBus)
	taxService.SetEventPublisher(eventBus)
	customerService.SetEventPublisher(eventBus)

	// Readiness checks
	checks := []handler.HealthCheck{{Name: "database", Check: db.Ping}}
	if redisClient != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitRequests > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go rateLimiter.Run(ctx)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine := router.NewEngine(router.EngineConfig{
		Logger:          log,
		ServiceName:     cfg.Telemetry.ServiceName,
		TrustedProxies:  cfg.HTTP.TrustedProxies,
		CORS:            corsConfig,
		Security:        middleware.DefaultSecurityConfig(),
		MaxBodySize:     cfg.HTTP.MaxBodySize,
		RequestTimeout:  cfg.HTTP.WriteTimeout,
		DefaultTenantID: cfg.HTTP.DefaultTenantID,
		TracingEnabled:  tracerProvider.IsEnabled(),
		MeterProvider:   meterProvider,
		RateLimiter:     rateLimiter,
		Swagger: middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		},
	}, router.Handlers{
		Orders:    handler.NewOrderHandler(orderService),
		Payments:  handler.NewPaymentHandler(paymentService),
		Sequences: handler.NewSequenceHandler(sequenceService),
		Products:  handler.NewProductHandler(productService),
		Taxes:     handler.NewTaxHandler(taxService),
		Customers: handler.NewCustomerHandler(customerService),
		System:    handler.NewSystemHandler(cfg.App.Name, version, checks...),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	stop()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus stopped with error", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Profiler stop failed", zap.Error(err))
	}

	log.Info("Server exited")
	_ = logger.Sync(log)
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		_, _ = os.Stderr.WriteString("log exporter shutdown failed: " + err.Error() + "\n")
	}
}

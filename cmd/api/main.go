package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/internal/repositories/inventoryitem"
	"github.com/Ramsey-B/fern/internal/repositories/settlementmember"
	"github.com/Ramsey-B/fern/internal/repositories/settlementskill"
	"github.com/Ramsey-B/fern/pkg/bitjita"
	"github.com/Ramsey-B/fern/pkg/catalog"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/httpclient"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/pagescript"
	"github.com/Ramsey-B/fern/pkg/poller"
	"github.com/Ramsey-B/fern/pkg/redis"
	"github.com/Ramsey-B/fern/pkg/routes/health"
	"github.com/Ramsey-B/fern/pkg/routes/inventory"
	"github.com/Ramsey-B/fern/pkg/routes/member"
	"github.com/Ramsey-B/fern/pkg/routes/scrape"
	"github.com/Ramsey-B/fern/pkg/routes/skill"
	"github.com/Ramsey-B/fern/pkg/scraper"
	"github.com/Ramsey-B/fern/pkg/snapshot"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/tracing/exporters"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.SettlementID == "" {
		log.Fatal("SETTLEMENT_ID is required")
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	ctx := context.Background()

	// Tracing
	var tracerProvider *sdktrace.TracerProvider
	if cfg.TracingEnabled {
		exporter, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: cfg.TracingEndpoint,
			Protocol: cfg.TracingProtocol,
			Insecure: cfg.TracingInsecure,
		})
		if err != nil {
			logger.WithError(err).Error("Failed to create trace exporter, continuing without tracing")
		} else {
			tracerProvider = sdktrace.NewTracerProvider(
				sdktrace.WithBatcher(exporter),
				sdktrace.WithResource(sdkresource.NewSchemaless(
					attribute.String("service.name", cfg.AppName),
				)),
			)
			otel.SetTracerProvider(tracerProvider)
			tracing.SetTracer(tracerProvider.Tracer(cfg.AppName))
			logger.Infof("Tracing enabled, exporting to %s via %s", cfg.TracingEndpoint, cfg.TracingProtocol)
		}
	}

	// Database
	db, err := database.Connect(database.ConnectionConfig{
		Driver:          cfg.DatabaseDriver,
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	// Migrations
	driver, err := migratepg.WithInstance(db.Unsafe().DB, &migratepg.Config{})
	if err != nil {
		logger.WithError(err).Error("Failed to create migration driver")
		os.Exit(1)
	}
	migrations := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})
	if err := migrations.Migrate(cfg.DatabaseName, driver); err != nil {
		logger.WithError(err).Error("Failed to run migrations")
		os.Exit(1)
	}

	// Redis is optional: without it there is no distributed lock, no
	// catalog warm start, and no manual-scrape cooldown
	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, continuing without it")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// Kafka
	var producer *kafka.Producer
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		defer producer.Close()
	}
	emitter := events.NewEmitter(producer, logger)

	// Upstream clients
	httpClient := httpclient.NewClient(httpclient.Config{
		Timeout:         cfg.FetchTimeout,
		MaxIdleConns:    100,
		IdleConnTimeout: 90 * time.Second,
	}, logger)
	bitjitaClient := bitjita.NewClient(httpClient, cfg.BitjitaBaseURL, logger)

	// Catalog cache
	catalogCache := catalog.NewCache(bitjitaClient, redisClient, catalog.CacheConfig{
		TTL:      cfg.CatalogCacheTTL,
		RedisKey: cfg.CatalogRedisKey,
	}, logger)
	catalogCache.WarmStart(ctx)
	go func() {
		if err := catalogCache.Refresh(ctx); err != nil {
			logger.WithError(err).Warn("Initial catalog refresh failed")
		}
	}()

	// Repositories
	inventoryRepo := inventoryitem.NewRepository(db, logger)
	memberRepo := settlementmember.NewRepository(db, logger)
	skillRepo := settlementskill.NewRepository(db, logger)

	// Scraper + poller
	snapshotWriter := snapshot.NewWriter(cfg.SnapshotDir, logger)
	extractor := pagescript.NewExtractor(logger)
	settlementScraper := scraper.New(scraper.Config{
		SettlementID:    cfg.SettlementID,
		SnapshotEnabled: cfg.SnapshotEnabled,
	}, bitjitaClient, extractor, inventoryRepo, memberRepo, skillRepo, snapshotWriter, emitter, logger)

	var locker *redis.Locker
	if redisClient != nil {
		locker = redis.NewLocker(redisClient, cfg.PollerLockPrefix)
	}
	settlementPoller := poller.New(settlementScraper, locker, poller.Config{
		SettlementID: cfg.SettlementID,
		Interval:     cfg.ScrapeInterval,
		LockTTL:      cfg.ScrapeLockTTL,
	}, logger)
	if err := settlementPoller.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start poller")
		os.Exit(1)
	}

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second

	if cfg.TracingEnabled {
		e.Use(otelecho.Middleware(cfg.AppName))
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(middleware.Context(cfg.SettlementID))
	e.Use(middleware.Logger(logger))
	e.HTTPErrorHandler = middleware.Error(logger)

	var redisPinger health.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}
	checker := health.NewChecker(db, redisPinger, Version)
	checker.RegisterRoutes(e)

	api := e.Group("/api/v1")
	inventory.NewHandler(inventoryRepo, catalogCache, logger).Register(api.Group("/inventory"))
	member.NewHandler(memberRepo).Register(api.Group("/members"))
	skill.NewHandler(skillRepo).Register(api.Group("/skills"))
	scrape.NewHandler(settlementScraper, redisClient, cfg.ScrapeCooldown, logger).Register(api.Group("/scrape"))

	checker.SetReady(true)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil {
			logger.WithError(err).Info("HTTP server stopped")
		}
	}()

	logger.Infof("%s started on port %d, polling settlement %s every %s",
		cfg.AppName, cfg.Port, cfg.SettlementID, cfg.ScrapeInterval)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := settlementPoller.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Poller did not stop cleanly")
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server did not stop cleanly")
	}
	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Trace provider did not stop cleanly")
		}
	}

	logger.Info("Shutdown complete")
}

// Version is set at build time
var Version = "dev"

func newLogger(cfg *config.Config) (ectologger.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	zapLogger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	return zapadapter.NewZapEctoLogger(zapLogger, nil), nil
}

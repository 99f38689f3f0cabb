package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/internal/repositories/attributedef"
	"github.com/Ramsey-B/fern/internal/repositories/group"
	"github.com/Ramsey-B/fern/internal/repositories/item"
	"github.com/Ramsey-B/fern/internal/repositories/search"
	"github.com/Ramsey-B/fern/pkg/attributes"
	"github.com/Ramsey-B/fern/pkg/catalog"
	"github.com/Ramsey-B/fern/pkg/duplicates"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/importer"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/ranking"
	"github.com/Ramsey-B/fern/pkg/routes"
	"github.com/Ramsey-B/fern/pkg/startup"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/tracing/exporters"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fern: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envFile := os.Getenv("FERN_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	logger, sync, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		ServiceName: cfg.AppName,
		Exporter:    cfg.TraceExporter,
		OTLP: exporters.OTLPConfig{
			Endpoint: cfg.OTLPEndpoint,
			Protocol: cfg.OTLPProtocol,
			Insecure: cfg.OTLPInsecure,
		},
	})
	if err != nil {
		return err
	}

	db := &databaseDependency{cfg: cfg, logger: logger}
	deps := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	deps.AddDependency(db)
	deps.AddDependency(&migrationDependency{cfg: cfg, logger: logger, database: db})
	if err := deps.Start(ctx); err != nil {
		return err
	}

	producer := kafka.NewProducer(kafka.ProducerConfig{
		Enabled:      cfg.KafkaEnabled,
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaTopic,
		BatchSize:    cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: cfg.KafkaRequiredAcks,
		Compression:  cfg.KafkaCompression,
	}, logger)
	emitter := events.NewEmitter(producer, logger)

	groups := group.NewRepository(db.db, logger)
	items := item.NewRepository(db.db, logger)
	defs := attributedef.NewRepository(db.db, logger)
	candidates := search.NewRepository(db.db, logger, cfg.SearchTextConfig)

	validator := attributes.NewValidator(defs, logger, attributes.WithClosedValues(cfg.ClosedAttributeValues))
	detector := duplicates.NewDetector(items, defs, logger)
	ranker := ranking.NewRanker(candidates, ranking.Thresholds{
		MinLexical: cfg.SearchMinLexical,
		MinFuzzy:   cfg.SearchMinFuzzy,
	}, logger)

	itemService := catalog.NewItemService(items, groups, defs, validator, detector, emitter, logger)
	searchService := catalog.NewSearchService(ranker, groups, items, logger)
	imports := importer.NewImporter(groups, defs, items, validator, emitter, logger)

	health := routes.NewHealthChecker(db.db, cfg.Version)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	health.RegisterRoutes(e)
	if cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	api := e.Group("/api/v1")
	routes.NewSearchHandler(searchService).RegisterRoutes(api)
	routes.NewCatalogHandler(groups).RegisterRoutes(api)
	routes.NewItemHandler(itemService).RegisterRoutes(api)
	routes.NewAttributeHandler(defs, groups, itemService).RegisterRoutes(api)
	routes.NewImportHandler(imports, cfg.ImportMaxUploadBytes).RegisterRoutes(api)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Port).Infof("%s listening on %s", cfg.AppName, server.Addr)
		if err := e.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	health.SetReady(true)

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logger.WithError(err).Error("http server failed")
		}
	}
	health.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown failed")
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	}
	if err := deps.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Warn("failed to stop dependencies")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.WithError(err).Warn("failed to flush traces")
	}

	logger.Info("shutdown complete")
	return nil
}

func newLogger(cfg *config.Config) (ectologger.Logger, func(), error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = level

	zapLogger, err := zapCfg.Build()
	if err != nil {
		return nil, nil, err
	}

	return zapadapter.NewZapEctoLogger(zapLogger, nil), func() { _ = zapLogger.Sync() }, nil
}

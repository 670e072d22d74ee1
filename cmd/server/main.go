package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	contractapp "github.com/lotiva/backend/internal/application/contract"
	"github.com/lotiva/backend/internal/infrastructure/cache"
	"github.com/lotiva/backend/internal/infrastructure/config"
	"github.com/lotiva/backend/internal/infrastructure/document"
	"github.com/lotiva/backend/internal/infrastructure/logger"
	"github.com/lotiva/backend/internal/infrastructure/mail"
	"github.com/lotiva/backend/internal/infrastructure/persistence"
	"github.com/lotiva/backend/internal/infrastructure/printing"
	"github.com/lotiva/backend/internal/infrastructure/scheduler"
	"github.com/lotiva/backend/internal/infrastructure/storage"
	"github.com/lotiva/backend/internal/infrastructure/telemetry"
	"github.com/lotiva/backend/internal/interfaces/http/handler"
	"github.com/lotiva/backend/internal/interfaces/http/middleware"
	"github.com/lotiva/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Lotiva Contracts API
//	@version		1.0
//	@description	Geração, download e envio dos contratos de compra e venda de lotes
//	@BasePath		/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, cfg.App.Name)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Lotiva contract service",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Tracing
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Metrics
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()
	contractMetrics, err := telemetry.NewContractMetrics(mp.Meter(telemetry.MeterName))
	if err != nil {
		log.Fatal("Failed to register contract metrics", zap.Error(err))
	}

	// Log export
	lp, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		if err := lp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	log = telemetry.BridgeLogger(log, lp, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := plugin.RegisterOtelGorm(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, mp, telemetry.DBMetricsConfig{
		Enabled:            cfg.Telemetry.DBMetricsEnabled,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(context.Background())
		defer dbMetrics.Stop()
	}

	// Document assembly
	loc, err := cfg.Contract.Location()
	if err != nil {
		log.Fatal("Invalid contract configuration", zap.Error(err))
	}
	assembler, err := document.NewAssembler(document.AssemblerConfig{
		Seller:   document.Party(cfg.Contract.Seller),
		Comarca:  cfg.Contract.Comarca,
		Location: loc,
	})
	if err != nil {
		log.Fatal("Failed to build contract assembler", zap.Error(err))
	}

	// Rendering
	chrome, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Renderer.Timeout,
		RemoteURL:      cfg.Renderer.RemoteURL,
		ExecPath:       cfg.Renderer.ExecPath,
		NoSandbox:      cfg.Renderer.NoSandbox,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	retryCfg := printing.DefaultRetryConfig()
	retryCfg.MaxRetries = cfg.Renderer.MaxRetries
	retryCfg.RetryBaseDelay = cfg.Renderer.RetryBaseDelay
	retryCfg.Logger = log
	retryCfg.Metrics = contractMetrics
	renderer := printing.NewRetryingRenderer(chrome, retryCfg)
	defer func() {
		if err := renderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()

	archive, sweeper := buildArchive(cfg, log)

	// Email
	guard, err := cache.NewGuardFactory(cfg.Redis, cache.WithLogger(log)).CreateGuard()
	if err != nil {
		log.Fatal("Failed to create email send guard", zap.Error(err))
	}
	defer func() {
		_ = guard.Close()
	}()

	var mailer *mail.SMTPMailer
	if cfg.SMTP.Enabled() {
		mailer, err = mail.NewSMTPMailer(&cfg.SMTP, mail.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to configure SMTP", zap.Error(err))
		}
	} else {
		log.Warn("SMTP credentials not configured, contract emails are disabled")
	}

	deps := contractapp.Dependencies{
		Sales:     persistence.NewGormSaleRepository(db.DB),
		Contracts: persistence.NewGormContractRepository(db.DB),
		Assembler: assembler,
		Numbers:   document.NewNumberGenerator(document.WithLocation(loc)),
		Renderer:  renderer,
		Archive:   archive,
		Guard:     guard,
		Metrics:   contractMetrics,
	}
	if mailer != nil {
		deps.Mailer = mailer
	}
	contractService := contractapp.NewContractService(deps, contractapp.ServiceConfig{
		// every attempt plus backoff
		RenderTimeout: cfg.Renderer.Timeout*time.Duration(cfg.Renderer.MaxRetries+1) + 5*time.Second,
		SendGuardTTL:  cfg.Contract.SendGuardTTL,
		CompanyName:   cfg.Contract.Seller.Name,
		CompanyPhone:  cfg.Contract.Seller.Phone,
		CompanyEmail:  cfg.Contract.Seller.Email,
	}, log)

	// Archive retention
	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()
	var retention *scheduler.PeriodicScheduler
	if sweeper != nil && sweeper.RetentionPeriod() > 0 {
		retention, err = scheduler.NewPeriodicScheduler(scheduler.DefaultPeriodicConfig(),
			scheduler.NewRetentionTask(sweeper, sweeper.RetentionPeriod(), log), log)
		if err != nil {
			log.Fatal("Failed to create retention scheduler", zap.Error(err))
		}
		if err := retention.Start(rootCtx); err != nil {
			log.Fatal("Failed to start retention scheduler", zap.Error(err))
		}
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	systemHandler := handler.NewSystemHandler(version, handler.PingerFunc(func(ctx context.Context) error {
		return db.Ping()
	}))
	if mailer != nil {
		systemHandler.WithDependency("smtp", mailer)
	}
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(router.ContractRoutes(handler.NewContractHandler(contractService))).
		Register(router.SystemRoutes(systemHandler))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if retention != nil {
		if err := retention.Stop(ctx); err != nil {
			log.Error("Error stopping retention scheduler", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

// buildArchive opens the configured PDF archive. The sweeper is only set for
// the filesystem driver, which is the one that supports retention.
func buildArchive(cfg *config.Config, log *zap.Logger) (contractapp.PDFArchive, *printing.FileSystemStorage) {
	switch cfg.Storage.Driver {
	case config.StorageDriverS3:
		store, err := storage.NewS3PDFStore(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to configure S3 archive", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare S3 bucket", zap.Error(err))
		}
		log.Info("Contract PDFs archived in S3", zap.String("bucket", store.GetBucket()))
		return store, nil
	default:
		fsStore, err := printing.NewFileSystemStorage(&printing.FileSystemStorageConfig{
			BasePath:      cfg.Storage.BasePath,
			RetentionDays: cfg.Storage.RetentionDays,
			Logger:        log,
		})
		if err != nil {
			log.Fatal("Failed to prepare PDF archive directory", zap.Error(err))
		}
		log.Info("Contract PDFs archived on disk", zap.String("path", cfg.Storage.BasePath))
		return fsStore, fsStore
	}
}

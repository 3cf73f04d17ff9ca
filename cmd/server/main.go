package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	app "github.com/marketsync/backend/internal/application/integration"
	"github.com/marketsync/backend/internal/domain/integration"
	"github.com/marketsync/backend/internal/infrastructure/cache"
	"github.com/marketsync/backend/internal/infrastructure/config"
	"github.com/marketsync/backend/internal/infrastructure/logger"
	"github.com/marketsync/backend/internal/infrastructure/marketplace"
	"github.com/marketsync/backend/internal/infrastructure/persistence"
	"github.com/marketsync/backend/internal/infrastructure/scheduler"
	"github.com/marketsync/backend/internal/interfaces/http/handler"
	"github.com/marketsync/backend/internal/interfaces/http/middleware"
	"github.com/marketsync/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting marketplace sync backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	orderMappings := persistence.NewGormOrderMappingRepository(db.DB)
	productMappings := persistence.NewGormProductMappingRepository(db.DB)
	syncLogs := persistence.NewGormSyncLogRepository(db.DB)
	commerceStore := persistence.NewGormCommerceStore(db.DB)

	// Webhook dedup store: Redis, with in-memory fallback outside production
	dedupFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	dedupStore, err := dedupFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create webhook dedup store", zap.Error(err))
	}

	// Marketplace clients for every enabled marketplace
	registry := marketplace.BuildRegistry(cfg, log)
	if len(registry.Marketplaces()) == 0 {
		log.Warn("no marketplace clients registered, sync will be idle")
	}

	// Status translator with the built-in per-marketplace tables
	translator := integration.NewTranslator(nil)

	// Application services
	orderImporter := app.NewOrderImporter(
		registry, commerceStore, orderMappings, syncLogs, translator, log,
		app.OrderImporterConfig{
			CallTimeout: cfg.Sync.CallTimeout,
			PageSize:    cfg.Sync.PageSize,
		},
	)
	productExporter := app.NewProductExporter(
		registry, commerceStore, productMappings, syncLogs, log,
		app.ProductExporterConfig{
			CallTimeout:  cfg.Sync.CallTimeout,
			BatchSize:    cfg.Sync.ProductBatchSize,
			StaleAfter:   cfg.Sync.ProductStaleAfter,
			RetryBackoff: cfg.Sync.ProductRetryBackoff,
		},
	)
	webhookReconciler := app.NewWebhookReconciler(
		orderImporter, orderMappings, productMappings, commerceStore,
		syncLogs, dedupStore, translator, log,
		app.WebhookReconcilerConfig{DedupWindow: cfg.Sync.WebhookDedupWindow},
	)
	dashboardService := app.NewDashboardService(registry, orderMappings, productMappings, syncLogs, log)

	// Sync coordinator and periodic trigger
	coordinatorConfig := scheduler.CoordinatorConfigFromApp(cfg.Sync)
	executor := scheduler.NewPipelineExecutor(orderImporter, productExporter, syncLogs, log)
	coordinator, err := scheduler.NewSyncCoordinator(coordinatorConfig, executor, log)
	if err != nil {
		log.Fatal("Failed to create sync coordinator", zap.Error(err))
	}

	// The coordinator always runs so manual triggers and webhook-driven
	// work stay available; the periodic pull trigger is opt-in.
	if err := coordinator.Start(context.Background()); err != nil {
		log.Fatal("Failed to start sync coordinator", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := coordinator.Stop(stopCtx); err != nil {
			log.Error("Error stopping sync coordinator", zap.Error(err))
		}
	}()

	if cfg.Sync.Enabled {
		pullTrigger := scheduler.NewPullTrigger(coordinatorConfig, coordinator, registry, log)
		if err := pullTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start pull trigger", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := pullTrigger.Stop(stopCtx); err != nil {
				log.Error("Error stopping pull trigger", zap.Error(err))
			}
		}()

		log.Info("Scheduled sync started",
			zap.Int("workers", coordinatorConfig.Workers),
			zap.Duration("pull_interval", coordinatorConfig.PullInterval),
			zap.Duration("job_timeout", coordinatorConfig.JobTimeout),
		)
	} else {
		log.Info("Scheduled sync disabled, manual triggers and webhooks only")
	}

	// HTTP handlers
	syncHandler := handler.NewSyncHandler(coordinator, log)
	webhookHandler := handler.NewWebhookHandler(webhookReconciler, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request id, panic recovery, request logging,
	// CORS, body size limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(syncHandler).
		Register(webhookHandler).
		Register(dashboardHandler)
	r.Setup()

	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}

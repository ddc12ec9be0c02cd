package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/stocker/inventory/internal/application/inventory"
	"github.com/stocker/inventory/internal/domain/shared"
	"github.com/stocker/inventory/internal/infrastructure/cache"
	"github.com/stocker/inventory/internal/infrastructure/config"
	"github.com/stocker/inventory/internal/infrastructure/event"
	"github.com/stocker/inventory/internal/infrastructure/logger"
	"github.com/stocker/inventory/internal/infrastructure/persistence"
	"github.com/stocker/inventory/internal/infrastructure/persistence/tenant"
	"github.com/stocker/inventory/internal/infrastructure/scheduler"
	"github.com/stocker/inventory/internal/infrastructure/telemetry"
	"github.com/stocker/inventory/internal/interfaces/http/handler"
	"github.com/stocker/inventory/internal/interfaces/http/middleware"
	"github.com/stocker/inventory/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
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

	log.Info("Starting Stocker Inventory Service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracer provider (no-op when telemetry is disabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Register database tracing spans (otelgorm + slow query detection)
	dbTracingCfg := telemetry.DefaultDBTracingConfig()
	dbTracingCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracingCfg.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	dbTracing := telemetry.NewDBTracingPlugin(dbTracingCfg, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Safety net: queries that forget an explicit tenant filter get one
	// injected from the request context. Repositories still filter
	// explicitly; required=false keeps system jobs working.
	tenant.EnableAutoTenantFilter(db.DB, false)

	// Initialize repositories
	stockItemRepo := persistence.NewGormStockItemRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	reservationRepo := persistence.NewGormStockReservationRepository(db.DB)
	countRepo := persistence.NewGormStockCountRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Initialize application services
	availabilityService := inventoryapp.NewAvailabilityService(stockItemRepo, reservationRepo)
	reservationService := inventoryapp.NewReservationService(txScope, log)
	stockCountService := inventoryapp.NewStockCountService(txScope, log)
	expirationService := inventoryapp.NewReservationExpirationService(txScope, log)
	if cfg.Reservation.SweepBatchSize > 0 {
		expirationService.SetBatchSize(cfg.Reservation.SweepBatchSize)
	}

	// Initialize event bus and inject it into publishing services
	eventBus := event.NewInMemoryEventBus(log)
	reservationService.SetEventPublisher(eventBus)
	stockCountService.SetEventPublisher(eventBus)
	expirationService.SetEventPublisher(eventBus)

	// Idempotency store for at-least-once consumers (Redis, with
	// in-memory fallback for local development)
	idempotencyStore, err := cache.NewIdempotencyStore(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Integration event handlers: upstream order events create reservations
	orderCreatedHandler := inventoryapp.NewOrderCreatedHandler(reservationService, productRepo, warehouseRepo, log)
	orderCreatedHandler.SetReservationTTL(cfg.Reservation.DefaultTTL)
	dealWonHandler := inventoryapp.NewDealWonHandler(reservationService, productRepo, warehouseRepo, log)
	dealWonHandler.SetReservationTTL(cfg.Reservation.DefaultTTL)

	consumers := []shared.EventHandler{orderCreatedHandler, dealWonHandler}
	for _, consumer := range consumers {
		h := consumer
		if cfg.Event.IdempotencyEnabled {
			idempotencyConfig := shared.DefaultIdempotencyConfig()
			if cfg.Event.IdempotencyTTL > 0 {
				idempotencyConfig.TTL = cfg.Event.IdempotencyTTL
			}
			h = event.NewIdempotentHandler(h, idempotencyStore, log,
				event.WithIdempotencyConfig(idempotencyConfig))
		}
		if err := eventBus.Subscribe(h.EventType(), h); err != nil {
			log.Fatal("Failed to subscribe event handler",
				zap.String("event_type", h.EventType()),
				zap.Error(err))
		}
	}
	log.Info("Event handlers registered",
		zap.Bool("idempotency_enabled", cfg.Event.IdempotencyEnabled),
		zap.Strings("event_types", []string{
			inventoryapp.EventTypeSalesOrderCreated,
			inventoryapp.EventTypeDealWon,
		}),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Background sweep that expires overdue reservations
	if cfg.Reservation.AutoExpireEnabled {
		sweeper := scheduler.NewReservationSweeper(expirationService, log, scheduler.ReservationSweeperConfig{
			Enabled:      true,
			Interval:     cfg.Reservation.SweepInterval,
			SweepTimeout: 5 * time.Minute,
		})
		if err := sweeper.Start(context.Background()); err != nil {
			log.Fatal("Failed to start reservation sweeper", zap.Error(err))
		}
		defer func() {
			if err := sweeper.Stop(context.Background()); err != nil {
				log.Error("Error stopping reservation sweeper", zap.Error(err))
			}
		}()
		log.Info("Reservation sweeper started",
			zap.Duration("interval", cfg.Reservation.SweepInterval),
			zap.Int("batch_size", cfg.Reservation.SweepBatchSize),
		)
	}

	// Initialize HTTP handlers
	inventoryHandler := handler.NewInventoryHandler(availabilityService, stockItemRepo)
	movementHandler := handler.NewMovementHandler(movementRepo)
	reservationHandler := handler.NewReservationHandler(reservationRepo)
	stockCountHandler := handler.NewStockCountHandler(countRepo, stockCountService)
	integrationEventHandler := handler.NewIntegrationEventHandler(eventSerializer, eventBus)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - Create server spans (if telemetry enabled)
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	// 9. Tenant - Resolve tenant context from X-Tenant-ID
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.SpanErrorMarker())
	}
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Tenant resolution applies to all API routes; health and system
	// endpoints stay tenant-free
	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.SkipPaths = append(tenantConfig.SkipPaths,
		"/api/v1/system/ping",
		"/api/v1/system/info",
	)
	tenantConfig.Logger = log
	engine.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	inventoryRoutes := router.NewDomainGroup("inventory", "/inventory")
	// Availability and stock item snapshots
	inventoryRoutes.GET("/availability", inventoryHandler.GetAvailability)
	inventoryRoutes.GET("/stock-items", inventoryHandler.ListStockItems)
	inventoryRoutes.GET("/stock-items/:id", inventoryHandler.GetStockItem)
	// Immutable stock ledger
	inventoryRoutes.GET("/movements", movementHandler.List)
	inventoryRoutes.GET("/movements/number/:number", movementHandler.GetByDocumentNumber)
	inventoryRoutes.GET("/movements/:id", movementHandler.Get)
	// Reservations
	inventoryRoutes.GET("/reservations", reservationHandler.ListActive)
	inventoryRoutes.GET("/reservations/number/:number", reservationHandler.GetByNumber)
	inventoryRoutes.GET("/reservations/:id", reservationHandler.Get)
	// Stock counts
	inventoryRoutes.GET("/stock-counts", stockCountHandler.List)
	inventoryRoutes.GET("/stock-counts/:id", stockCountHandler.Get)
	inventoryRoutes.GET("/stock-counts/:id/summary", stockCountHandler.GetSummary)

	// Ingestion endpoint for broker-delivered integration events
	integrationRoutes := router.NewDomainGroup("integration", "/integration")
	integrationRoutes.POST("/events", integrationEventHandler.Ingest)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(inventoryRoutes).
		Register(integrationRoutes).
		Register(systemRoutes)
	r.Setup()

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
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
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
		payload := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}
		if stats, err := db.Stats(); err == nil {
			payload["pool"] = gin.H{
				"open":    stats.OpenConnections,
				"in_use":  stats.InUse,
				"idle":    stats.Idle,
				"max":     stats.MaxOpenConnections,
				"waiting": stats.WaitCount,
			}
		}
		c.JSON(http.StatusOK, payload)
	}
}

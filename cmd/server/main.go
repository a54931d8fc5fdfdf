package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingapp "github.com/invoiceapp/backend/internal/application/billing"
	identityapp "github.com/invoiceapp/backend/internal/application/identity"
	"github.com/invoiceapp/backend/internal/infrastructure/auth"
	"github.com/invoiceapp/backend/internal/infrastructure/cache"
	"github.com/invoiceapp/backend/internal/infrastructure/config"
	"github.com/invoiceapp/backend/internal/infrastructure/document"
	"github.com/invoiceapp/backend/internal/infrastructure/event"
	"github.com/invoiceapp/backend/internal/infrastructure/logger"
	"github.com/invoiceapp/backend/internal/infrastructure/notification"
	"github.com/invoiceapp/backend/internal/infrastructure/persistence"
	"github.com/invoiceapp/backend/internal/infrastructure/scheduler"
	"github.com/invoiceapp/backend/internal/infrastructure/telemetry"
	"github.com/invoiceapp/backend/internal/interfaces/http/handler"
	"github.com/invoiceapp/backend/internal/interfaces/http/middleware"
	"github.com/invoiceapp/backend/internal/interfaces/http/router"
)

//	@title			Invoice Backend API
//	@version		1.0
//	@description	Invoice lifecycle and financial dashboard API for freelancers and small agencies

//	@contact.name	API Support
//	@contact.email	support@invoiceapp.example.com

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Invoice Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

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

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
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

	// Statement spans ride on the same tracer provider
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:            cfg.Telemetry.Enabled && cfg.Telemetry.TraceQueries,
		SlowQueryThreshold: cfg.Telemetry.SlowQueryThreshold,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	ownerRepo := persistence.NewGormOwnerRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	sequenceRepo := persistence.NewGormNumberSequenceRepository(db.DB)
	snapshotRepo := persistence.NewGormMetricSnapshotRepository(db.DB)

	// Lifecycle events feed the activity log and invalidate the
	// dashboard stats cache
	eventBus := event.NewInMemoryEventBus(log)
	activityRecorder := billingapp.NewInvoiceActivityRecorder(log)
	eventBus.Subscribe(activityRecorder, activityRecorder.EventTypes()...)

	statsCache := cache.NewInMemoryStatsCache(cache.WithStatsCacheLogger(log))
	defer func() {
		if err := statsCache.Close(); err != nil {
			log.Error("Error closing stats cache", zap.Error(err))
		}
	}()
	cacheInvalidator := billingapp.NewDashboardCacheInvalidator(statsCache, log)
	eventBus.Subscribe(cacheInvalidator, cacheInvalidator.EventTypes()...)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Document rendering is optional: invoices are still sendable
	// without a PDF, the email just goes out without an attachment
	var documents billingapp.DocumentGenerator
	if cfg.PDF.Enabled {
		renderer, err := document.NewChromedpRenderer(&document.ChromedpConfig{
			DefaultTimeout: cfg.PDF.RenderTimeout,
			ExecPath:       cfg.PDF.ChromePath,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		defer func() {
			if err := renderer.Close(); err != nil {
				log.Error("Error closing PDF renderer", zap.Error(err))
			}
		}()
		documents = document.NewInvoiceDocumentGenerator(renderer, ownerRepo, log)
		log.Info("PDF rendering enabled", zap.Duration("timeout", cfg.PDF.RenderTimeout))
	}

	var notifier billingapp.NotificationSender
	if cfg.SMTP.Enabled {
		mailer := notification.NewSMTPMailer(cfg.SMTP, log)
		notifier = notification.NewEmailNotifier(mailer, log)
		log.Info("Email notifications enabled",
			zap.String("host", cfg.SMTP.Host),
			zap.String("from", cfg.SMTP.From),
		)
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(ownerRepo, jwtService, identityapp.DefaultAuthServiceConfig(), log)
	invoiceService := billingapp.NewInvoiceService(
		invoiceRepo, clientRepo, sequenceRepo, snapshotRepo, ownerRepo,
		documents, notifier, eventBus, cfg.App.BaseURL, log,
	)
	clientService := billingapp.NewClientService(clientRepo, invoiceRepo, log)
	dashboardService := billingapp.NewDashboardService(invoiceRepo, snapshotRepo, log,
		billingapp.WithStatsCache(statsCache))
	sweeper := billingapp.NewOverdueSweeper(invoiceRepo, snapshotRepo, clientRepo, notifier, cfg.Sweep.BatchSize, log)

	if cfg.Sweep.Enabled {
		sweepScheduler := scheduler.NewSweepScheduler(scheduler.SweepSchedulerConfig{
			Hour:          cfg.Sweep.Hour,
			Minute:        cfg.Sweep.Minute,
			CheckInterval: time.Minute,
			RunTimeout:    10 * time.Minute,
		}, sweeper, log)
		if err := sweepScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sweep scheduler", zap.Error(err))
		}
		defer func() {
			if err := sweepScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping sweep scheduler", zap.Error(err))
			}
		}()
		log.Info("Overdue sweep scheduler started",
			zap.Int("hour", cfg.Sweep.Hour),
			zap.Int("minute", cfg.Sweep.Minute),
			zap.Int("batch_size", cfg.Sweep.BatchSize),
		)
	}

	engine := newEngine(cfg, log, db)
	mountRoutes(engine, cfg, log, jwtService, routeHandlers{
		auth:      handler.NewAuthHandler(authService),
		invoices:  handler.NewInvoiceHandler(invoiceService),
		clients:   handler.NewClientHandler(clientService),
		dashboard: handler.NewDashboardHandler(dashboardService),
		pay:       handler.NewPublicPaymentHandler(invoiceService),
		system:    handler.NewSystemHandler(sweeper),
	})

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newEngine assembles the gin engine with the cross-cutting middleware
// stack: request ID, panic recovery, request logging, security headers,
// tracing, CORS, body limit, and rate limiting, in that order.
func newEngine(cfg *config.Config, log *zap.Logger, db *persistence.Database) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}

	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Deep health check outside the API prefix, hits the database
	engine.GET("/health", healthHandler(db))

	return engine
}

type routeHandlers struct {
	auth      *handler.AuthHandler
	invoices  *handler.InvoiceHandler
	clients   *handler.ClientHandler
	dashboard *handler.DashboardHandler
	pay       *handler.PublicPaymentHandler
	system    *handler.SystemHandler
}

// mountRoutes wires every domain group under /api/v1 behind JWT auth.
// The default JWT config leaves registration, login, refresh, and the
// public payment page open.
func mountRoutes(engine *gin.Engine, cfg *config.Config, log *zap.Logger, jwtService *auth.JWTService, h routeHandlers) {
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Owner and request attributes land on active spans once auth ran
	if cfg.Telemetry.Enabled {
		r.Use(middleware.TracingAttributeInjector())
	}

	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", h.auth.Register)
	authRoutes.POST("/login", h.auth.Login)
	authRoutes.POST("/refresh", h.auth.RefreshToken)
	authRoutes.GET("/me", h.auth.Me)
	authRoutes.PUT("/password", h.auth.ChangePassword)
	authRoutes.PUT("/profile", h.auth.UpdateProfile)

	invoiceRoutes := router.NewDomainGroup("invoices", "/invoices")
	invoiceRoutes.POST("", h.invoices.Create)
	invoiceRoutes.GET("", h.invoices.List)
	invoiceRoutes.GET("/:id", h.invoices.GetByID)
	invoiceRoutes.PUT("/:id", h.invoices.Update)
	invoiceRoutes.DELETE("/:id", h.invoices.Delete)
	invoiceRoutes.POST("/:id/send", h.invoices.Send)
	invoiceRoutes.POST("/:id/pay", h.invoices.MarkPaid)
	invoiceRoutes.POST("/:id/revert-payment", h.invoices.RevertPayment)
	invoiceRoutes.POST("/:id/archive", h.invoices.Archive)
	invoiceRoutes.POST("/:id/unarchive", h.invoices.Unarchive)
	invoiceRoutes.GET("/:id/pdf", h.invoices.DownloadPDF)

	clientRoutes := router.NewDomainGroup("clients", "/clients")
	clientRoutes.POST("", h.clients.Create)
	clientRoutes.GET("", h.clients.List)
	clientRoutes.POST("/import", h.clients.ImportCSV)
	clientRoutes.GET("/:id", h.clients.GetByID)
	clientRoutes.PUT("/:id", h.clients.Update)
	clientRoutes.DELETE("/:id", h.clients.Delete)

	dashboardRoutes := router.NewDomainGroup("dashboard", "/dashboard")
	dashboardRoutes.GET("/stats", h.dashboard.Stats)
	dashboardRoutes.GET("/history", h.dashboard.History)

	// Public payment page, reachable through the opaque token only
	payRoutes := router.NewDomainGroup("pay", "/pay")
	payRoutes.GET("/:token", h.pay.GetByToken)
	payRoutes.POST("/:token/confirm", h.pay.ConfirmIntent)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", h.system.GetSystemInfo)
	systemRoutes.POST("/sweep-overdue", h.system.TriggerOverdueSweep)

	r.Register(authRoutes).
		Register(invoiceRoutes).
		Register(clientRoutes).
		Register(dashboardRoutes).
		Register(payRoutes).
		Register(systemRoutes)
	r.Setup()

	// Lightweight liveness check inside the API prefix, no auth, no DB
	engine.GET("/api/v1/health", h.system.Health)
}

func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		status := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			status["status"] = "unhealthy"
			status["database"] = "error"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

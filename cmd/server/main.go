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

	syncapp "github.com/erp/optilog-connector/internal/application/sync"
	webhookapp "github.com/erp/optilog-connector/internal/application/webhook"
	"github.com/erp/optilog-connector/internal/domain/orders"
	"github.com/erp/optilog-connector/internal/domain/shared"
	"github.com/erp/optilog-connector/internal/infrastructure/cache"
	"github.com/erp/optilog-connector/internal/infrastructure/config"
	"github.com/erp/optilog-connector/internal/infrastructure/logger"
	"github.com/erp/optilog-connector/internal/infrastructure/optilog"
	"github.com/erp/optilog-connector/internal/infrastructure/persistence"
	"github.com/erp/optilog-connector/internal/infrastructure/telemetry"
	"github.com/erp/optilog-connector/internal/interfaces/http/handler"
	"github.com/erp/optilog-connector/internal/interfaces/http/middleware"
	"github.com/erp/optilog-connector/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
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

	log.Info("Starting Optilog connector",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Telemetry
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
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	// Sync journal database, with SQL logging through the zap bridge
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
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

	syncRecordRepo := persistence.NewGormSyncRecordRepository(db.DB)

	// Duplicate suppression store. Redis when enabled, with an in-memory
	// fallback so a cache outage never blocks webhook ingestion.
	var dedup shared.IdempotencyStore
	if cfg.Sync.DedupEnabled {
		redisStore, err := cache.NewRedisDedupStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, using in-memory duplicate suppression", zap.Error(err))
			dedup = cache.NewInMemoryDedupStore()
		} else {
			dedup = redisStore
		}
		defer func() {
			if err := dedup.Close(); err != nil {
				log.Error("Error closing dedup store", zap.Error(err))
			}
		}()
	}

	// Remote provider client
	apiClient, err := optilog.NewClient(&optilog.Config{
		BaseURL:  cfg.Optilog.BaseURL,
		APIKey:   cfg.Optilog.APIKey,
		Extended: cfg.Optilog.Extended,
		Timeout:  cfg.Optilog.Timeout,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize provider client", zap.Error(err))
	}

	// Field mapping
	vocabulary := orders.VocabularyStandard
	if cfg.Optilog.Extended {
		vocabulary = orders.VocabularyExtended
	}
	translator := orders.NewStatusTranslator(vocabulary)
	resolver := orders.NewCarrierResolver(
		cfg.Sync.CarrierNames,
		decimal.NewFromFloat(cfg.Sync.CarrierStdThreshold),
		decimal.NewFromFloat(cfg.Sync.CarrierExpThreshold),
		log,
	)
	orderMapper := syncapp.NewOrderMapper(syncapp.OrderMapperConfig{
		Debug:           cfg.Sync.Debug,
		StatusOverrides: cfg.Sync.StatusOverrides,
		MinOrderDate:    cfg.Sync.MinOrderDate,
		OriginRules:     cfg.Sync.OriginRules,
	}, resolver, translator, log)
	productMapper := syncapp.NewProductMapper(log)

	syncService := syncapp.NewObjectSyncService(
		apiClient,
		syncRecordRepo,
		dedup,
		cfg.Sync.DedupTTL,
		orderMapper,
		productMapper,
		log,
	)
	processor := webhookapp.NewProcessor(cfg.Optilog.APIKey, syncService, log)

	// HTTP handlers
	webhookHandler := handler.NewWebhookHandler(processor)
	syncHandler := handler.NewSyncHandler(syncRecordRepo, apiClient)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	// the webhook contract answers non-POST at the protocol level
	engine.HandleMethodNotAllowed = true

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())

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

	// Liveness endpoint outside API versioning for load balancers
	engine.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
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
	})

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(webhookHandler)
	r.Register(syncHandler)
	r.Register(systemHandler)
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

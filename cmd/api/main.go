package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/coupon-validation-engine/internal/config"
	"github.com/fairyhunter13/coupon-validation-engine/internal/handler"
	"github.com/fairyhunter13/coupon-validation-engine/internal/metrics"
	"github.com/fairyhunter13/coupon-validation-engine/internal/repository"
	"github.com/fairyhunter13/coupon-validation-engine/internal/service"
	"github.com/fairyhunter13/coupon-validation-engine/internal/validator"
	"github.com/fairyhunter13/coupon-validation-engine/pkg/cache"
	"github.com/fairyhunter13/coupon-validation-engine/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Money amounts are rendered as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), cfg.DB.ConnectRetries)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to apply schema")
		}
		log.Info().Msg("database schema applied")
	}

	// Category cache (optional)
	var redisClient *redis.Client
	var cachePinger handler.Pinger
	var categoryRepo service.CategoryRepositoryInterface = repository.NewCategoryRepository(pool)
	if cfg.Redis.Enabled {
		redisClient = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		redisCache := cache.NewRedisCache(redisClient, cfg.Redis.KeyPrefix)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, category lookups will hit the database")
		}
		categoryRepo = repository.NewCachedCategoryRepository(categoryRepo, redisCache, cfg.Redis.CategoryTTL())
		cachePinger = redisCache
	}

	// Metrics on a dedicated registry
	var recorder *metrics.Recorder
	registry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewRecorder(registry)
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Coupon Validation Engine",
		ReadTimeout:  30 * time.Second,  // Max time to read request
		WriteTimeout: 30 * time.Second,  // Max time to write response
		IdleTimeout:  120 * time.Second, // Max time for keep-alive connections
		BodyLimit:    1 * 1024 * 1024,   // 1MB body limit (explicit, prevents large payloads)
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	// Initialize validator
	validate := validator.New()

	// Initialize coupon components (layered architecture)
	couponRepo := repository.NewCouponRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	couponService := service.NewCouponService(pool, couponRepo, categoryRepo, cartRepo, recorder)
	couponHandler := handler.NewCouponHandler(couponService, validate)
	validateHandler := handler.NewValidateHandler(couponService, validate)

	// Health handler
	healthHandler := handler.NewHealthHandler(pool, cachePinger)
	app.Get("/health", healthHandler.Check)

	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	// Coupon routes; the static validate path is registered before :id
	api := app.Group("/api/coupons")
	api.Get("/validate", validateHandler.ValidateCoupon)
	api.Get("/", couponHandler.ListCoupons)
	api.Post("/", couponHandler.CreateCoupon)
	api.Get("/:id", couponHandler.GetCoupon)
	api.Patch("/:id", couponHandler.EditCoupon)
	api.Delete("/:id", couponHandler.DeleteCoupon)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close backing stores AFTER server shutdown (even if shutdown timed out)
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis client")
		}
	}
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

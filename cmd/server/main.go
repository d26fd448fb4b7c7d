package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cropadvisor/backend/internal/agronomy"
	"github.com/cropadvisor/backend/internal/delivery/http"
	"github.com/cropadvisor/backend/internal/repository/postgres"
	"github.com/cropadvisor/backend/internal/service"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	// Configuration
	cfg := loadConfig()

	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Info("No .env file found, using system environment")
	}

	// Database connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var historyRepo service.RecommendationRepository
	if pool := connectDatabase(ctx, cfg.DatabaseURL, log); pool != nil {
		defer pool.Close()
		repo := postgres.NewPostgresRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Warn("Could not prepare history table, using in-memory history", zap.Error(err))
			historyRepo = postgres.NewMockRepository()
		} else {
			historyRepo = repo
		}
	} else {
		historyRepo = postgres.NewMockRepository()
	}

	// Calculator
	rnd := agronomy.NewRandomSource()
	if cfg.TipSeed != "" {
		seed, err := strconv.ParseUint(cfg.TipSeed, 10, 64)
		if err != nil {
			log.Fatal("Invalid TIP_SEED", zap.String("value", cfg.TipSeed), zap.Error(err))
		}
		rnd = agronomy.NewSeededSource(seed)
	}
	calc, err := agronomy.NewDefaultCalculator(rnd)
	if err != nil {
		log.Fatal("Failed to load crop reference data", zap.Error(err))
	}

	// Dependency Injection: Services
	remoteCfg := service.RemoteConfig{
		Enabled:  cfg.MLServiceEnabled,
		BaseURL:  cfg.MLServiceURL,
		Timeout:  cfg.MLServiceTimeout,
		Fallback: cfg.MLFallback,
	}
	metrics := service.NewMetrics(nil)
	mlBridge := service.NewMLBridge(remoteCfg)
	predictionSvc := service.NewPredictionService(calc, mlBridge, remoteCfg, metrics, log.Named("prediction"))
	historySvc := service.NewHistoryService(historyRepo, log.Named("history"))
	weatherSvc := service.NewWeatherService(cfg.OpenWeatherAPIKey, "", log.Named("weather"))

	log.Info("Prediction service configured",
		zap.Bool("remote_enabled", mlBridge.Enabled()),
		zap.String("remote_url", cfg.MLServiceURL),
		zap.String("fallback", string(cfg.MLFallback)),
		zap.Int("crops", len(calc.Catalog().Names())),
	)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "CropAdvisor API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	handler := http.NewHandler(predictionSvc, historySvc, weatherSvc, log.Named("http"))
	http.SetupRoutes(app, handler, nil)

	// Graceful shutdown
	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Warn("Server forced to shutdown", zap.Error(err))
	}
	historySvc.WaitBackground()
	log.Info("Server exited gracefully")
}

type Config struct {
	DatabaseURL       string
	OpenWeatherAPIKey string
	MLServiceURL      string
	MLServiceEnabled  bool
	MLServiceTimeout  time.Duration
	MLFallback        service.FallbackMode
	TipSeed           string
	Port              string
	Env               string
	LogLevel          string
}

func loadConfig() *Config {
	return &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		OpenWeatherAPIKey: getEnv("OPENWEATHER_API_KEY", ""),
		MLServiceURL:      getEnv("ML_SERVICE_URL", "http://localhost:5000"),
		MLServiceEnabled:  getEnvBool("ML_SERVICE_ENABLED", false),
		MLServiceTimeout:  getEnvDuration("ML_SERVICE_TIMEOUT", service.DefaultRemoteTimeout),
		MLFallback:        parseFallback(getEnv("ML_FALLBACK", string(service.FallbackCalculator))),
		TipSeed:           getEnv("TIP_SEED", ""),
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("GO_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func parseFallback(v string) service.FallbackMode {
	if service.FallbackMode(strings.ToLower(v)) == service.FallbackStatic {
		return service.FallbackStatic
	}
	return service.FallbackCalculator
}

func newLogger(cfg *Config) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if cfg.Env == "development" {
		zcfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	log, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// connectDatabase returns nil when no usable database is configured
func connectDatabase(ctx context.Context, url string, log *zap.Logger) *pgxpool.Pool {
	if url == "" {
		log.Info("DATABASE_URL not set, running with in-memory history")
		return nil
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		log.Warn("Could not connect to database, running with in-memory history", zap.Error(err))
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		log.Warn("Database unreachable, running with in-memory history", zap.Error(err))
		pool.Close()
		return nil
	}
	log.Info("Connected to PostgreSQL")
	return pool
}

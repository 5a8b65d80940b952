package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kcirtapfromspace/offleash-sub004/internal/api"
	"github.com/kcirtapfromspace/offleash-sub004/internal/config"
	"github.com/kcirtapfromspace/offleash-sub004/internal/database"
	"github.com/kcirtapfromspace/offleash-sub004/internal/domain"
	"github.com/kcirtapfromspace/offleash-sub004/internal/events"
	"github.com/kcirtapfromspace/offleash-sub004/internal/export"
	"github.com/kcirtapfromspace/offleash-sub004/internal/google"
	"github.com/kcirtapfromspace/offleash-sub004/internal/logging"
	"github.com/kcirtapfromspace/offleash-sub004/internal/metrics"
	"github.com/kcirtapfromspace/offleash-sub004/internal/service"
	"github.com/kcirtapfromspace/offleash-sub004/internal/travel"
	"github.com/kcirtapfromspace/offleash-sub004/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog := service.NewCatalog(cfg.Services)
	estimator := initTravel(cfg, redisClient, &logger)
	eventBus := events.NewEventBus()

	var syncWorker domain.SyncWorker
	if sheetsService := initGoogleSheets(cfg, &logger); sheetsService != nil {
		w := worker.NewSheetsWorker(db, sheetsService, redisClient, worker.RetryPolicy{}, logger)
		go w.Start(ctx)
		syncWorker = w
	}

	exportDir := cfg.Exports.Path
	if exportDir == "" {
		exportDir = "exports"
	}

	services := api.Services{
		Availability: service.NewAvailabilityService(db, catalog, estimator, cfg.Scheduling, &logger),
		Bookings:     service.NewBookingService(db, catalog, eventBus, syncWorker, cfg.Scheduling.MaxBookingDays, &logger),
		Routes:       service.NewRouteService(db, estimator, syncWorker, &logger),
		Series:       service.NewSeriesService(db, catalog, eventBus, syncWorker, &logger),
		Calendar:     service.NewCalendarService(db, eventBus, &logger),
		Catalog:      catalog,
		Exporter:     export.NewExporter(db, exportDir, logger),
	}

	httpServer := api.NewHTTPServer(cfg.API, services, &logger)

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backup.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	return serveHTTP(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if !cfg.Redis.Enabled || cfg.Redis.Address == "" {
		return nil
	}

	redisClient := travel.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initTravel wires the matrix provider behind a cache. Without a provider URL
// the estimator stays nil and route plans come back in degraded mode.
func initTravel(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.TravelEstimator {
	if cfg.Travel.ProviderURL == "" {
		logger.Warn().Msg("travel provider not configured, routes will be degraded")
		return nil
	}

	timeout := time.Duration(cfg.Travel.TimeoutSeconds) * time.Second
	ttl := time.Duration(cfg.Travel.CacheTTLSeconds) * time.Second
	provider := travel.NewMatrixProvider(cfg.Travel.ProviderURL, cfg.Travel.APIKey, timeout, logger)

	var cache domain.TravelCache = travel.NewMemoryTravelCache(ttl)
	if redisClient != nil {
		cache = travel.NewFailoverTravelCache(travel.NewRedisTravelCache(redisClient, ttl), cache, logger)
	}

	return travel.NewCachedEstimator(provider, cache)
}

func initGoogleSheets(cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.ScheduleSpreadsheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(cfg.Google.GoogleCredentialsFile, cfg.Google.ScheduleSpreadsheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return sheetsService
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func serveHTTP(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

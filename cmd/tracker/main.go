package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	httpRouter "currency-tracker/internal/adapter/http"
	"currency-tracker/internal/adapter/prefs"
	"currency-tracker/internal/adapter/remote"
	"currency-tracker/internal/adapter/repository"
	"currency-tracker/internal/config"
	"currency-tracker/internal/metrics"
	"currency-tracker/internal/service"
	"currency-tracker/pkg/logger"
)

func main() {
	log := logger.NewLogger(os.Getenv("TRACKER_LOG_LEVEL"))
	log.Info("Starting currency tracker")

	cfg, err := config.LoadConfig(log)
	if err != nil {
		log.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	log.SetLevel(cfg.Log.Level)

	db, err := repository.OpenDatabase(cfg.Database.URL, cfg.Database.WaitRetries, cfg.Database.WaitDelay, log)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo, err := repository.NewPostgresRepository(db, log)
	if err != nil {
		log.Error("Failed to initialize currency repository", "error", err)
		os.Exit(1)
	}

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)
	preferences := prefs.NewRedisPreferences(redisClient, cfg.Redis.KeyPrefix, log)
	rateService := remote.NewExchangeAPI(
		cfg.ExchangeAPI.BaseURL,
		cfg.ExchangeAPI.BaseCurrency,
		cfg.ExchangeAPI.Timeout,
		log,
	)

	tracker := service.NewTracker(repo, preferences, rateService, log, appMetrics)

	runCtx, cancelRun := context.WithCancel(context.Background())
	if err := tracker.Start(runCtx); err != nil {
		log.Error("Failed to start tracker", "error", err)
		cancelRun()
		os.Exit(1)
	}

	handler := httpRouter.NewHandler(tracker, log, appMetrics)
	router := httpRouter.NewRouter(handler, log, appMetrics)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	cancelRun()
	tracker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Tracker exited")
}

// cmd/postforge/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"postforge/internal/api"
	"postforge/internal/common/alert"
	"postforge/internal/common/config"
	"postforge/internal/common/database"
	"postforge/internal/common/errors"
	"postforge/internal/common/logger"
	"postforge/internal/common/observability"
	"postforge/internal/common/services"
	"postforge/internal/services/ai"
	"postforge/internal/services/billing"
	"postforge/internal/services/credits"
	"postforge/internal/services/linkedin"
	"postforge/internal/storage/errlog"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting postforge...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New("postforge")
	defer obs.Shutdown()
	services.SetObserver(obs)

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch (optional secondary log index) ---
	logStore := errlog.NewStore(pg, log)
	if cfg.Database.Elasticsearch.GetURL() != "" {
		esClient, esErr := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if esErr != nil || esClient.Ping() != nil {
			zapLog.Warn("elasticsearch unavailable, error logs go to postgres only", zap.Error(esErr))
		} else {
			logStore = logStore.WithElasticsearch(esClient, cfg.Database.Elasticsearch.ErrorIndex)
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	// --- Error handler with critical alerting ---
	errHandler := errors.NewHandler(log, logStore)
	if cfg.Alerting.AWS.SES.Enabled || cfg.Alerting.AWS.SNS.Enabled {
		notifier, alertErr := alert.New(ctx, cfg.Alerting, log)
		if alertErr != nil {
			zapLog.Warn("alerting disabled", zap.Error(alertErr))
		} else {
			errHandler = errHandler.WithAlerter(notifier)
		}
	}

	// --- Service clients ---
	aiClient := ai.NewClient(cfg.Providers, log)
	liClient := linkedin.NewClient(cfg.Providers.LinkedIn, log)
	billClient := billing.NewClient(cfg.Providers.Stripe, log)
	ledger := credits.NewLedger(redis, cfg.Credits.MonthlyLimit)

	handler := api.NewHandler(log, errHandler, aiClient, liClient, billClient, ledger)
	router := api.NewRouter(handler)
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("shutdown failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}

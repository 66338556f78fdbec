package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/saldo/internal/adapter/http"
	"github.com/iho/saldo/internal/adapter/http/handler"
	"github.com/iho/saldo/internal/adapter/http/middleware"
	"github.com/iho/saldo/internal/adapter/repository/memory"
	redisRepo "github.com/iho/saldo/internal/adapter/repository/redis"
	"github.com/iho/saldo/internal/domain"
	"github.com/iho/saldo/internal/infrastructure/config"
	"github.com/iho/saldo/internal/infrastructure/logger"
	"github.com/iho/saldo/internal/infrastructure/metrics"
	"github.com/iho/saldo/internal/infrastructure/redis"
	"github.com/iho/saldo/internal/usecase"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to Redis when idempotency keys are enabled
	var redisClient *goredis.Client
	var idempotencyStore usecase.IdempotencyStore
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL, cfg.RedisConnectTimeout)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		log.Info().Msg("connected to redis, idempotency keys enabled")
	}

	// Ledger and metrics
	ledger := memory.NewLedgerStore(domain.SeedBalances(), cfg.DefaultBalance)

	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewLedgerCollector(ledger))
	debitMetrics := metrics.New(registry)

	// Initialize use cases and handlers
	balanceUC := usecase.NewBalanceUseCase(ledger, memory.NewULIDGenerator(), debitMetrics, appLogger)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		go cleanupLimiters(ctx, rateLimiter, time.Hour)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		BalanceHandler:   handler.NewBalanceHandler(balanceUC),
		HealthHandler:    handler.NewHealthHandler(redisClient),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		MetricsHandler: promhttp.HandlerFor(
			prometheus.Gatherers{prometheus.DefaultGatherer, registry},
			promhttp.HandlerOpts{},
		),
		Logger: appLogger,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// cleanupLimiters resets the per-IP limiters every interval until ctx is done.
func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters()
		}
	}
}

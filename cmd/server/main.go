package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/moneyledger/internal/adapter/http"
	"github.com/iho/moneyledger/internal/adapter/http/handler"
	"github.com/iho/moneyledger/internal/adapter/http/middleware"
	"github.com/iho/moneyledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/moneyledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/moneyledger/internal/adapter/repository/redis"
	sqliteRepo "github.com/iho/moneyledger/internal/adapter/repository/sqlite"
	"github.com/iho/moneyledger/internal/infrastructure/auth"
	"github.com/iho/moneyledger/internal/infrastructure/config"
	"github.com/iho/moneyledger/internal/infrastructure/idgen"
	"github.com/iho/moneyledger/internal/infrastructure/logger"
	"github.com/iho/moneyledger/internal/infrastructure/metrics"
	"github.com/iho/moneyledger/internal/infrastructure/postgres"
	"github.com/iho/moneyledger/internal/infrastructure/redis"
	"github.com/iho/moneyledger/internal/infrastructure/retry"
	"github.com/iho/moneyledger/internal/usecase"
)

const (
	limiterCleanupInterval = 10 * time.Minute
	limiterIdleTimeout     = 30 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger
	zerolog.DefaultContextLogger = &appLogger

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

// backend bundles the storage chosen by STORE_DRIVER.
type backend struct {
	txManager    usecase.TransactionManager
	accounts     usecase.AccountRepository
	transactions usecase.TransactionRepository
	checks       []handler.Check
	close        func()
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		store := memory.NewStore()
		return &backend{
			txManager:    store,
			accounts:     memory.NewAccountRepository(store),
			transactions: memory.NewTransactionRepository(store),
			close:        func() {},
		}, nil

	case config.StoreSQLite:
		store, err := sqliteRepo.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &backend{
			txManager:    store,
			accounts:     sqliteRepo.NewAccountRepository(store),
			transactions: sqliteRepo.NewTransactionRepository(),
			checks:       []handler.Check{{Name: "sqlite", Ping: store.Ping}},
			close:        func() { store.Close() },
		}, nil

	case config.StorePostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			return nil, err
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, err
		}
		return &backend{
			txManager:    postgresRepo.NewTxManager(pool),
			accounts:     postgresRepo.NewAccountRepository(pool),
			transactions: postgresRepo.NewTransactionRepository(),
			checks:       []handler.Check{{Name: "postgres", Ping: pool.Ping}},
			close:        pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func newRouter(cfg *config.Config, b *backend, appLogger zerolog.Logger, m *metrics.Metrics, idempotency usecase.IdempotencyStore) (http.Handler, *middleware.RateLimiter) {
	ids := idgen.NewULIDGenerator()
	opts := []usecase.Option{
		usecase.WithRetrier(retry.NewRetrier(cfg.RetryMaxAttempts)),
		usecase.WithObserver(m),
	}

	accountUC := usecase.NewAccountUseCase(b.txManager, b.accounts, b.transactions, ids, opts...)
	ledgerUC := usecase.NewLedgerUseCase(b.txManager, b.accounts, b.transactions, ids, opts...)
	reportUC := usecase.NewReportUseCase(b.txManager, b.accounts, b.transactions, opts...)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithHitCounter(m.RateLimitHits)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC, reportUC),
		TransactionHandler: handler.NewTransactionHandler(ledgerUC, reportUC),
		DashboardHandler:   handler.NewDashboardHandler(reportUC),
		HealthHandler:      handler.NewHealthHandler(b.checks...),
		Verifier:           auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration),
		Logger:             appLogger,
		Metrics:            m,
		Gatherer:           prometheus.DefaultGatherer,
		RateLimiter:        limiter,
		IdempotencyStore:   idempotency,
		IdempotencyTTL:     cfg.IdempotencyTTL,
	})

	return router, limiter
}

func run(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer b.close()
	log.Info().Str("driver", cfg.StoreDriver).Msg("store ready")

	var idempotency usecase.IdempotencyStore
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		idempotency = redisRepo.NewIdempotencyStore(redisClient)
		b.checks = append(b.checks, handler.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
		log.Info().Msg("connected to redis")
	} else {
		log.Warn().Msg("REDIS_URL not set, idempotency keys disabled")
	}

	router, limiter := newRouter(cfg, b, appLogger, metrics.New(), idempotency)

	if limiter != nil {
		go func() {
			ticker := time.NewTicker(limiterCleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					limiter.CleanupLimiters(limiterIdleTimeout)
				}
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

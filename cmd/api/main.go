package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hisham3323/flash-sale-api/internal/app"
	"github.com/hisham3323/flash-sale-api/internal/cache"
	"github.com/hisham3323/flash-sale-api/internal/clock"
	"github.com/hisham3323/flash-sale-api/internal/config"
	"github.com/hisham3323/flash-sale-api/internal/obs"
	"github.com/hisham3323/flash-sale-api/internal/storage/postgres"
	transporthttp "github.com/hisham3323/flash-sale-api/internal/transport/http"
	"github.com/hisham3323/flash-sale-api/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load(logger)

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	var productCache cache.ProductCache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(startupCtx).Err(); err != nil {
			logger.Fatal("redis ping", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		productCache = cache.NewRedis(rdb)
	}

	emitter := obs.NewZapEmitter(logger)
	clk := clock.NewSystem()

	var holdOpts []app.HoldServiceOption
	if cfg.HoldTTL > 0 {
		holdOpts = append(holdOpts, app.WithHoldTTL(cfg.HoldTTL))
	}

	productSvc := app.NewProductService(postgres.NewProductRepository(pool), productCache, clk)
	holdSvc := app.NewHoldService(postgres.NewHoldRepository(pool), productCache, emitter, clk, holdOpts...)
	orderSvc := app.NewOrderService(postgres.NewOrderRepository(pool), productCache, clk)
	paymentSvc := app.NewPaymentService(postgres.NewWebhookRepository(pool), productCache, emitter, clk)

	handler := transporthttp.NewRouter(productSvc, holdSvc, orderSvc, paymentSvc, logger, cfg.CORSOrigins)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info("api listening", zap.String("port", cfg.Port))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

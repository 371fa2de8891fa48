// Command sweeper releases expired holds and exits. It is meant to run
// on a short cron cadence next to the API.
package main

import (
	"context"
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
	"github.com/hisham3323/flash-sale-api/migrations"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	if err := migrations.Apply(ctx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	var productCache cache.ProductCache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("redis ping", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		productCache = cache.NewRedis(rdb)
	}

	sweeper := app.NewSweeperService(postgres.NewHoldRepository(pool), productCache, obs.NewZapEmitter(logger), clock.NewSystem())

	released, err := sweeper.ReleaseExpiredHolds(ctx)
	if err != nil {
		logger.Fatal("release expired holds", zap.Error(err))
	}
	logger.Info("sweep complete", zap.Int("released", released))
}

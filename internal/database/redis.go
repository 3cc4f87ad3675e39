package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/ruralpay/minibank/internal/config"
)

// InitRedis connects the session store client. It returns nil when Redis is
// unreachable so the caller can fall back to in-process sessions.
func InitRedis(ctx context.Context, cfg config.RedisConfig, logger logrus.FieldLogger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("Redis connection failed, continuing without Redis")
		rdb.Close()
		return nil
	}

	logger.WithField("addr", cfg.Addr()).Info("Redis connection established")
	return rdb
}

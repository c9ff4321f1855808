package main

import (
	"context"
	"log"
	"time"

	"driftchat/config"
	"driftchat/internal/redis"
	"driftchat/internal/server"
	"driftchat/pkg/database"
	"driftchat/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.LogMode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	var rc *goredis.Client
	if cfg.RedisEnabled {
		redis.Initialize(redis.ConfigFrom(cfg))
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redis.Ping(ctx, redis.GetClient()); err != nil {
			l.Logger.Warn("redis unavailable, running without presence mirror and cache", zap.Error(err))
		} else {
			rc = redis.GetClient()
		}
		cancel()
	}

	srv := server.Build(server.Dependencies{
		Config: cfg,
		Logger: l,
		DB:     db,
		Redis:  rc,
	})
	if err := srv.Start(); err != nil {
		l.Errorf("server stopped: %v", err)
	}
}

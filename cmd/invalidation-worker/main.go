package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ticketcore/seatlock/internal/config"
	"github.com/ticketcore/seatlock/internal/invalidate"
	"github.com/ticketcore/seatlock/internal/queue"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("info: .env not found; using defaults/env")
	}
	cfg := config.Load()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis: could not connect; nothing for this worker to invalidate")
	}
	cacheCfg := config.LoadCacheConfig()
	cache := invalidate.NewRedisCache(rdb, cacheCfg.Prefix+":availability", cacheCfg.TTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("invalidation-worker: listening on exchange %q", cfg.InvalidateExchange)
	if err := queue.StartInvalidationConsumer(ctx, cfg.AMQPURL, cfg.InvalidateExchange, cache); err != nil {
		log.Printf("invalidation-worker: stopped: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ticketcore/seatlock/internal/config"
	"github.com/ticketcore/seatlock/internal/lock"
)

// The reaper is a best-effort sweep of the lock registry's key space. It
// exists to bound how long an expired-but-not-yet-evicted lease can look
// occupied; correctness of the registry never depends on it running.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("info: .env not found; using defaults/env")
	}
	cfg := config.Load()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis: could not connect; the reaper has nothing to sweep")
	}
	locks := lock.New(rdb, cfg.LockKeyPrefix, cfg.LockTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	log.Println("reaper: started, sweeping every 30s")
	for {
		select {
		case <-ctx.Done():
			log.Println("reaper: shutting down")
			return
		case <-ticker.C:
			n, err := locks.ReapExpired(ctx)
			if err != nil {
				log.Printf("reaper: sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("reaper: reclaimed %d stale lease(s)", n)
			}
		}
	}
}

package main

import (
	"log"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/labstack/echo/v4"

	"github.com/ticketcore/seatlock/internal/booking"
	"github.com/ticketcore/seatlock/internal/config"
	"github.com/ticketcore/seatlock/internal/database"
	"github.com/ticketcore/seatlock/internal/handler"
	"github.com/ticketcore/seatlock/internal/invalidate"
	"github.com/ticketcore/seatlock/internal/lock"
	"github.com/ticketcore/seatlock/internal/middleware"
	"github.com/ticketcore/seatlock/internal/repository"
	"github.com/ticketcore/seatlock/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("info: .env not found; using defaults/env")
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis: could not connect; the lock registry has no durable store to sit on")
	}

	locks := lock.New(rdb, cfg.LockKeyPrefix, cfg.LockTTL)

	eventRepo := repository.NewEventRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	bookingRepo := repository.NewBookingRepo(db)

	notify := newInvalidationHook(cfg)
	coordinator := booking.New(eventRepo, seatRepo, bookingRepo, locks, notify)

	cacheCfg := config.LoadCacheConfig()
	var availabilityCache invalidate.Cache
	if cacheCfg.Enabled {
		availabilityCache = invalidate.NewRedisCache(rdb, cacheCfg.Prefix+":availability", cacheCfg.TTL)
	}

	deps := router.Dependencies{
		JWTSecret:     cfg.JWTSecret,
		SeatLocks:     handler.NewSeatLockHandler(locks),
		Bookings:      handler.NewBookingHandler(coordinator),
		Availability:  handler.NewAvailabilityHandler(eventRepo, seatRepo, locks, availabilityCache),
		LockRateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	}

	e := echo.New()
	router.RegisterRoutes(e, deps)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// newInvalidationHook dials RabbitMQ once at startup and returns a hook
// publishing to it. A dial failure degrades to invalidate.NoopHook{} rather
// than refusing to start the server: cache invalidation is a latency
// optimization, not a correctness requirement the booking pipeline depends
// on.
func newInvalidationHook(cfg config.Config) invalidate.Hook {
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		log.Printf("invalidate: rabbitmq dial failed, falling back to no-op: %v", err)
		return invalidate.NoopHook{}
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Printf("invalidate: rabbitmq channel open failed, falling back to no-op: %v", err)
		return invalidate.NoopHook{}
	}
	hook, err := invalidate.NewAMQPHook(ch, cfg.InvalidateExchange)
	if err != nil {
		log.Printf("invalidate: exchange declare failed, falling back to no-op: %v", err)
		return invalidate.NoopHook{}
	}
	return hook
}

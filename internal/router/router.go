package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ticketcore/seatlock/internal/handler"
	"github.com/ticketcore/seatlock/internal/middleware"
)

// Dependencies bundles every handler RegisterRoutes wires into the router.
type Dependencies struct {
	JWTSecret    string
	SeatLocks    *handler.SeatLockHandler
	Bookings     *handler.BookingHandler
	Availability *handler.AvailabilityHandler

	// LockRateLimit throttles seat-lock acquire/extend traffic. Pass a
	// no-op middleware (an identity function) to disable it; RateLimitConfig.Enabled
	// being false already makes middleware.NewTokenBucket behave that way.
	LockRateLimit echo.MiddlewareFunc
}

// RegisterRoutes mounts the reservation core's HTTP surface onto e. Every
// route under /v1 requires a valid bearer token; identity extraction is the
// only auth concern this layer carries, per the reservation core's scope.
func RegisterRoutes(e *echo.Echo, deps Dependencies) {
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1", middleware.JWTAuth(deps.JWTSecret))

	v1.GET("/events/:id/seats", deps.Availability.List)

	locks := v1.Group("", deps.LockRateLimit)
	locks.POST("/seats/:id/lock", deps.SeatLocks.Acquire)
	locks.POST("/seats/:id/lock/extend", deps.SeatLocks.Extend)
	v1.DELETE("/seats/:id/lock", deps.SeatLocks.Release)

	v1.POST("/bookings", deps.Bookings.Commit)
	// Confirm is driven by the payment provider's webhook rather than the
	// booking's own user, so it runs behind a service-role check instead of
	// plain identity.
	v1.POST("/bookings/:id/confirm", deps.Bookings.Confirm, middleware.RequireRole("admin", "service"))
	v1.POST("/bookings/:id/cancel", deps.Bookings.Cancel)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ticketcore/seatlock/internal/invalidate"
	"github.com/ticketcore/seatlock/internal/lock"
	"github.com/ticketcore/seatlock/internal/repository"
)

// SeatAvailability is one row of the advisory listing returned by
// AvailabilityHandler.List: a seat's durable status plus a best-effort
// is_locked flag read straight from the lock registry. is_locked is
// advisory only — it can go stale the instant after it's read — so clients
// must still expect Commit to reject a seat that looked free a moment ago.
type SeatAvailability struct {
	SeatID   uint64 `json:"seat_id"`
	Section  string `json:"section"`
	Row      string `json:"row"`
	Number   uint32 `json:"number"`
	Status   string `json:"status"`
	IsLocked bool   `json:"is_locked"`
}

// AvailabilityHandler serves the per-event seat availability listing, the
// read path that sits in front of invalidate.Cache.
type AvailabilityHandler struct {
	Events *repository.EventRepo
	Seats  *repository.SeatRepo
	Locks  *lock.Client
	Cache  invalidate.Cache
}

// NewAvailabilityHandler constructs an AvailabilityHandler. cache may be nil
// to skip caching entirely.
func NewAvailabilityHandler(events *repository.EventRepo, seats *repository.SeatRepo, locks *lock.Client, cache invalidate.Cache) *AvailabilityHandler {
	if events == nil || seats == nil || locks == nil {
		panic("nil dependency passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Events: events, Seats: seats, Locks: locks, Cache: cache}
}

// List handles GET /v1/events/:id/seats. The durable status/section/row/number
// fields are cached (they only change on Commit/Confirm/Cancel, which both
// invalidate the cache); is_locked is always read fresh since it can flip on
// any Acquire/Release with no invalidation event of its own.
func (h *AvailabilityHandler) List(c echo.Context) error {
	eventID, err := parseUint64Param(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()

	var cached []SeatAvailability
	fromCache := false
	if h.Cache != nil {
		if ok, _ := h.Cache.Get(ctx, eventID, &cached); ok {
			fromCache = true
		}
	}

	var rows []SeatAvailability
	if fromCache {
		rows = cached
	} else {
		event, err := h.Events.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		seats, err := h.Seats.ListByVenue(ctx, event.VenueID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		rows = make([]SeatAvailability, len(seats))
		for i, s := range seats {
			rows[i] = SeatAvailability{
				SeatID: s.ID, Section: s.Section, Row: s.Row, Number: s.Number, Status: string(s.Status),
			}
		}
		if h.Cache != nil {
			_ = h.Cache.Set(ctx, eventID, rows)
		}
	}

	for i := range rows {
		rows[i].IsLocked = h.Locks.IsLocked(ctx, rows[i].SeatID)
	}
	return c.JSON(http.StatusOK, rows)
}

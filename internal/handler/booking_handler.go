package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ticketcore/seatlock/internal/booking"
)

// BookingHandler exposes the booking commit pipeline (component C) over
// HTTP.
type BookingHandler struct {
	Coordinator *booking.Coordinator
}

// NewBookingHandler constructs a BookingHandler. coordinator must be
// non-nil.
func NewBookingHandler(coordinator *booking.Coordinator) *BookingHandler {
	if coordinator == nil {
		panic("nil coordinator passed to NewBookingHandler")
	}
	return &BookingHandler{Coordinator: coordinator}
}

type commitRequest struct {
	EventID         uint64  `json:"event_id"`
	PaymentIntentID *string `json:"payment_intent_id"`
	Seats           []struct {
		SeatID uint64 `json:"seat_id"`
		LockID string `json:"lock_id"`
	} `json:"seats"`
}

// Commit handles POST /v1/bookings.
func (h *BookingHandler) Commit(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req commitRequest
	if err := c.Bind(&req); err != nil || req.EventID == 0 || len(req.Seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	claims := make([]booking.SeatLock, len(req.Seats))
	for i, s := range req.Seats {
		claims[i] = booking.SeatLock{SeatID: s.SeatID, LockID: s.LockID}
	}

	b, err := h.Coordinator.Commit(c.Request().Context(), req.EventID, userID, claims, req.PaymentIntentID)
	if err != nil {
		return writeBookingError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

type confirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

// Confirm handles POST /v1/bookings/:id/confirm.
func (h *BookingHandler) Confirm(c echo.Context) error {
	bookingID, err := parseUint64Param(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req confirmRequest
	if err := c.Bind(&req); err != nil || req.PaymentIntentID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	b, err := h.Coordinator.Confirm(c.Request().Context(), bookingID, req.PaymentIntentID)
	if err != nil {
		return writeBookingError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel handles POST /v1/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	bookingID, err := parseUint64Param(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req cancelRequest
	_ = c.Bind(&req) // reason is optional

	b, err := h.Coordinator.Cancel(c.Request().Context(), bookingID, req.Reason)
	if err != nil {
		return writeBookingError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

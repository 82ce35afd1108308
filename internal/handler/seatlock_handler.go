package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ticketcore/seatlock/internal/lock"
)

// SeatLockHandler exposes the lock registry (component A) over HTTP: acquire
// a hold on a seat, extend it, or release it early. Confirming a hold into a
// booking goes through BookingHandler.Commit instead, which re-validates
// the lock itself.
type SeatLockHandler struct {
	Locks *lock.Client
}

// NewSeatLockHandler constructs a SeatLockHandler. locks must be non-nil.
func NewSeatLockHandler(locks *lock.Client) *SeatLockHandler {
	if locks == nil {
		panic("nil lock client passed to NewSeatLockHandler")
	}
	return &SeatLockHandler{Locks: locks}
}

type acquireLockRequest struct {
	EventID uint64 `json:"event_id"`
}

// Acquire handles POST /v1/seats/:id/lock.
func (h *SeatLockHandler) Acquire(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	seatID, err := parseUint64Param(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	var req acquireLockRequest
	if err := c.Bind(&req); err != nil || req.EventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	lease, err := h.Locks.Acquire(c.Request().Context(), seatID, req.EventID, userID)
	if err != nil {
		if errors.Is(err, lock.ErrAlreadyLocked) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat already locked"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lock registry unavailable"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"lock_id":    lease.LockID,
		"seat_id":    lease.SeatID,
		"expires_at": lease.ExpiresAt,
	})
}

type extendLockRequest struct {
	LockID string `json:"lock_id"`
}

// Extend handles POST /v1/seats/:id/lock/extend.
func (h *SeatLockHandler) Extend(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	seatID, err := parseUint64Param(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	var req extendLockRequest
	if err := c.Bind(&req); err != nil || req.LockID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	expiresAt, err := h.Locks.Extend(c.Request().Context(), seatID, userID, req.LockID)
	if err != nil {
		if errors.Is(err, lock.ErrInvalidLock) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "lock expired or not owned"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lock registry unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"expires_at": expiresAt})
}

// Release handles DELETE /v1/seats/:id/lock.
func (h *SeatLockHandler) Release(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	seatID, err := parseUint64Param(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	var req extendLockRequest
	if err := c.Bind(&req); err != nil || req.LockID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if err := h.Locks.Release(c.Request().Context(), seatID, userID, req.LockID); err != nil {
		if errors.Is(err, lock.ErrNotOwned) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat not locked by caller"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lock registry unavailable"})
	}
	return c.NoContent(http.StatusNoContent)
}

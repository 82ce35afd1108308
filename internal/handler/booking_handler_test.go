package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ticketcore/seatlock/internal/booking"
	"github.com/ticketcore/seatlock/internal/lock"
	"github.com/ticketcore/seatlock/internal/repository"
)

func newTestBookingHandler(t *testing.T) *BookingHandler {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	coord := booking.New(
		repository.NewEventRepo(db),
		repository.NewSeatRepo(db),
		repository.NewBookingRepo(db),
		lock.New(rdb, "lock", time.Minute),
		nil,
	)
	return NewBookingHandler(coord)
}

func TestCommitRejectsUnauthenticatedCaller(t *testing.T) {
	h := newTestBookingHandler(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(`{"event_id":1,"seats":[{"seat_id":1,"lock_id":"x"}]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Commit(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCommitRejectsEmptySeatList(t *testing.T) {
	h := newTestBookingHandler(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(`{"event_id":1,"seats":[]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(1))

	require.NoError(t, h.Commit(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmRejectsInvalidBookingID(t *testing.T) {
	h := newTestBookingHandler(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/abc/confirm", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, h.Confirm(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelTreatsMissingReasonAsOptional(t *testing.T) {
	h := newTestBookingHandler(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/1/cancel", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	// No sqlmock expectations are set, so the coordinator's first query
	// fails fast; this only asserts the handler got past request parsing
	// and reached the coordinator instead of rejecting the body itself.
	_ = h.Cancel(c)
	require.NotEqual(t, http.StatusBadRequest, rec.Code)
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ticketcore/seatlock/internal/lock"
	"github.com/ticketcore/seatlock/internal/repository"
)

func newTestAvailabilityHandler(t *testing.T) (*AvailabilityHandler, sqlmock.Sqlmock, *lock.Client) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	locks := lock.New(rdb, "lock", time.Minute)
	h := NewAvailabilityHandler(repository.NewEventRepo(db), repository.NewSeatRepo(db), locks, nil)
	return h, mock, locks
}

func TestListReportsIsLockedFreshEvenWithoutCache(t *testing.T) {
	h, mock, locks := newTestAvailabilityHandler(t)
	ctx := t.Context()

	now := time.Now().UTC()
	eventCols := []string{"id", "venue_id", "event_date", "base_price_cents", "max_capacity",
		"available_seats", "status", "created_at", "updated_at"}
	mock.ExpectQuery("SELECT .* FROM events WHERE id = ?").
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow(1, 10, now.Add(24*time.Hour), 1000, 100, 99, "SALES_OPEN", now, now))

	seatCols := []string{"id", "venue_id", "section", "row_label", "number", "type", "status", "price_modifier"}
	mock.ExpectQuery("SELECT .* FROM seats WHERE venue_id = ?").
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(1, 10, "A", "1", 1, "standard", "AVAILABLE", 1.0).
			AddRow(2, 10, "A", "1", 2, "standard", "AVAILABLE", 1.0))

	_, err := locks.Acquire(ctx, 2, 1, 500)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/events/1/seats", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"seat_id":1,"section":"A","row":"1","number":1,"status":"AVAILABLE","is_locked":false`)
	require.Contains(t, rec.Body.String(), `"seat_id":2,"section":"A","row":"1","number":2,"status":"AVAILABLE","is_locked":true`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRejectsInvalidEventID(t *testing.T) {
	h, _, _ := newTestAvailabilityHandler(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/events/abc/seats", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

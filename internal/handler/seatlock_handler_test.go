package handler

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ticketcore/seatlock/internal/lock"
)

func newTestSeatLockHandler(t *testing.T) *SeatLockHandler {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewSeatLockHandler(lock.New(rdb, "lock", time.Minute))
}

func newCtx(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID uint64, seatID uint64) echo.Context {
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(seatID, 10))
	c.Set("user_id", userID)
	return c
}

func TestAcquireSucceedsThenConflictsForSecondCaller(t *testing.T) {
	h := newTestSeatLockHandler(t)
	e := echo.New()

	body := strings.NewReader(`{"event_id":9}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/seats/1/lock", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := newCtx(e, req, rec, 100, 1)

	require.NoError(t, h.Acquire(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	body2 := strings.NewReader(`{"event_id":9}`)
	req2 := httptest.NewRequest(http.MethodPost, "/v1/seats/1/lock", body2)
	req2.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec2 := httptest.NewRecorder()
	c2 := newCtx(e, req2, rec2, 200, 1)

	require.NoError(t, h.Acquire(c2))
	require.Equal(t, http.StatusConflict, rec2.Code)
}

func TestAcquireRejectsMissingEventID(t *testing.T) {
	h := newTestSeatLockHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/v1/seats/1/lock", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := newCtx(e, req, rec, 100, 1)

	require.NoError(t, h.Acquire(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReleaseRejectsUnknownLockID(t *testing.T) {
	h := newTestSeatLockHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/v1/seats/1/lock", strings.NewReader(`{"event_id":9}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := newCtx(e, req, rec, 100, 1)
	require.NoError(t, h.Acquire(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	releaseReq := httptest.NewRequest(http.MethodDelete, "/v1/seats/1/lock", strings.NewReader(`{"lock_id":"bogus"}`))
	releaseReq.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	releaseRec := httptest.NewRecorder()
	releaseCtx := newCtx(e, releaseReq, releaseRec, 100, 1)

	require.NoError(t, h.Release(releaseCtx))
	require.Equal(t, http.StatusConflict, releaseRec.Code)
}

func TestAcquireRejectsUnauthenticatedCaller(t *testing.T) {
	h := newTestSeatLockHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/v1/seats/1/lock", strings.NewReader(`{"event_id":9}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.Acquire(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ticketcore/seatlock/internal/booking"
)

// getUserID extracts the user_id set by middleware.JWTAuth and converts it
// to uint64, tolerating the various numeric shapes a JWT claim can decode
// to depending on how the token was signed.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

func parseUint64Param(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// reasonStatus maps a stable booking failure reason onto its HTTP status.
func reasonStatus(r booking.Reason) int {
	switch r {
	case booking.ReasonInvalidRequest, booking.ReasonInvalidLocks:
		return http.StatusBadRequest
	case booking.ReasonEventNotFound, booking.ReasonSeatsNotFound, booking.ReasonBookingNotFound:
		return http.StatusNotFound
	case booking.ReasonSalesClosed, booking.ReasonSeatsNotAvailable, booking.ReasonInvalidStatus, booking.ReasonAlreadyCancelled:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeBookingError renders a *booking.Error as a JSON body of the form
// {"error": "<stable reason>"} with the matching HTTP status, so clients can
// switch on the reason string without parsing prose.
func writeBookingError(c echo.Context, err error) error {
	var be *booking.Error
	if ok := errors.As(err, &be); ok {
		return c.JSON(reasonStatus(be.Reason), echo.Map{"error": string(be.Reason)})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": string(booking.ReasonSystemError)})
}

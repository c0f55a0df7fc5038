// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/modules/booking"
	"chauffeur/internal/modules/pricing"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writePricingError(c *gin.Context, err error) {
	var fe *pricing.FieldError
	switch {
	case errors.As(err, &fe):
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: fe.Error(), Field: fe.Field})
	case errors.Is(err, pricing.ErrNotFound), errors.Is(err, pricing.ErrQuoteNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, pricing.ErrUnsupportedCurrency):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, booking.ErrQuoteExpired):
		writeError(c, http.StatusGone, err.Error())
	case errors.Is(err, booking.ErrInvalidState), errors.Is(err, booking.ErrConflict),
		errors.Is(err, booking.ErrQuoteAlreadyBooked):
		writeError(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

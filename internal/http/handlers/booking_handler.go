// README: Booking handlers for confirm/get/cancel; caller identity comes from the auth middleware.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chauffeur/internal/http/middleware"
	"chauffeur/internal/modules/booking"
	"chauffeur/internal/types"
)

type BookingHandler struct {
	booking *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{booking: svc}
}

type confirmReq struct {
	QuoteID string `json:"quote_id"`
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	var req confirmReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if !types.ID(req.QuoteID).Valid() {
		writeError(c, http.StatusBadRequest, "invalid quote id")
		return
	}
	b, err := h.booking.Confirm(c.Request.Context(), booking.ConfirmCommand{
		QuoteID:    types.ID(req.QuoteID),
		CustomerID: middleware.CallerUID(c),
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, b)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !types.ID(id).Valid() {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	b, err := h.booking.Get(c.Request.Context(), types.ID(id), middleware.CallerUID(c))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if !types.ID(id).Valid() {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	err := h.booking.Cancel(c.Request.Context(), booking.CancelCommand{
		BookingID:  types.ID(id),
		CustomerID: middleware.CallerUID(c),
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": booking.StatusCancelled})
}

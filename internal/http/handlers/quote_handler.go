// README: Quote handlers (calculate, fetch, currency convert).
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"chauffeur/internal/modules/pricing"
	"chauffeur/internal/types"
)

type QuoteHandler struct {
	pricing *pricing.Service
}

func NewQuoteHandler(svc *pricing.Service) *QuoteHandler {
	return &QuoteHandler{pricing: svc}
}

type extraReq struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

type quoteReq struct {
	ServiceID          string     `json:"service_id"`
	VehicleID          *string    `json:"vehicle_id"`
	DriverID           *string    `json:"driver_id"`
	PickupDatetime     string     `json:"pickup_datetime"`
	Hours              float64    `json:"hours"`
	BookingType        string     `json:"booking_type"`
	MembershipTier     string     `json:"membership_tier"`
	PassengerCount     *int       `json:"passenger_count"`
	Extras             []extraReq `json:"extras"`
	ServiceTypes       []string   `json:"service_types"`
	CorporateAccountID *string    `json:"corporate_account_id"`
	DisplayCurrency    *string    `json:"display_currency"`
	PickupAddress      string     `json:"pickup_address"`
	DropoffAddress     string     `json:"dropoff_address"`
}

// toCommand converts the wire request; omitted booking type means hourly and omitted passenger count means one.
func (r quoteReq) toCommand() (pricing.QuoteCommand, error) {
	pickup, err := time.Parse(time.RFC3339, r.PickupDatetime)
	if err != nil {
		return pricing.QuoteCommand{}, &pricing.FieldError{Field: "pickup_datetime", Reason: "must be an RFC3339 timestamp"}
	}
	bookingType := pricing.BookingType(strings.ToLower(r.BookingType))
	if bookingType == "" {
		bookingType = pricing.BookingHourly
	}
	passengers := 1
	if r.PassengerCount != nil {
		passengers = *r.PassengerCount
	}
	extras := make([]pricing.Extra, 0, len(r.Extras))
	for _, x := range r.Extras {
		extras = append(extras, pricing.Extra{Type: x.Type, Quantity: x.Quantity})
	}
	return pricing.QuoteCommand{
		Request: pricing.BookingRequest{
			ServiceID:          r.ServiceID,
			VehicleID:          r.VehicleID,
			DriverID:           r.DriverID,
			PickupAt:           pickup,
			Hours:              r.Hours,
			BookingType:        bookingType,
			MembershipTier:     pricing.MembershipTier(strings.ToLower(r.MembershipTier)),
			PassengerCount:     passengers,
			Extras:             extras,
			ServiceTypes:       r.ServiceTypes,
			CorporateAccountID: r.CorporateAccountID,
			DisplayCurrency:    r.DisplayCurrency,
		},
		PickupAddress:  r.PickupAddress,
		DropoffAddress: r.DropoffAddress,
	}, nil
}

func (h *QuoteHandler) Create(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd, err := req.toCommand()
	if err != nil {
		writePricingError(c, err)
		return
	}
	q, err := h.pricing.Quote(c.Request.Context(), cmd)
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

func (h *QuoteHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !types.ID(id).Valid() {
		writeError(c, http.StatusBadRequest, "invalid quote id")
		return
	}
	q, err := h.pricing.GetQuote(c.Request.Context(), types.ID(id))
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

func (h *QuoteHandler) Convert(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		writePricingError(c, &pricing.FieldError{Field: "amount", Reason: "must be a decimal number"})
		return
	}
	from, to := strings.ToUpper(c.Query("from")), strings.ToUpper(c.Query("to"))
	if from == "" || to == "" {
		writePricingError(c, &pricing.FieldError{Field: "from/to", Reason: "are required"})
		return
	}
	converted, err := h.pricing.Convert(c.Request.Context(), amount, from, to)
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"source":    types.Money{Amount: amount, Currency: from},
		"converted": types.NewMoney(converted, to),
	})
}

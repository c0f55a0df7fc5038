// README: Booking aggregate; a confirmed quote embedded with its pricing breakdown.
package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"chauffeur/internal/modules/pricing"
	"chauffeur/internal/types"
)

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusCancelled      Status = "cancelled"
)

type Booking struct {
	ID            types.ID              `json:"id"`
	CustomerID    string                `json:"customer_id"`
	QuoteID       types.ID              `json:"quote_id"`
	ServiceID     string                `json:"service_id"`
	Status        Status                `json:"status"`
	StatusVersion int                   `json:"-"`
	PickupAt      time.Time             `json:"pickup_at"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	Currency      string                `json:"currency"`
	Pricing       pricing.PricingResult `json:"pricing"`
	CreatedAt     time.Time             `json:"created_at"`
	CancelledAt   *time.Time            `json:"cancelled_at,omitempty"`
}

// AllowedTransitions represents the booking status flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusPendingPayment: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

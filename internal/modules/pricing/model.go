// README: Pricing rate definitions, booking request and itemized result.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingType string

const (
	BookingHourly          BookingType = "hourly"
	BookingDayRate         BookingType = "day_rate"
	BookingBlock           BookingType = "block_booking"
	BookingAirportTransfer BookingType = "airport_transfer"
)

func (t BookingType) Valid() bool {
	switch t {
	case BookingHourly, BookingDayRate, BookingBlock, BookingAirportTransfer:
		return true
	}
	return false
}

// qualifiesForDayRate reports whether the booking type may be billed at the flat day rate.
func (t BookingType) qualifiesForDayRate() bool {
	return t == BookingHourly || t == BookingDayRate || t == BookingBlock
}

type MembershipTier string

const (
	TierFree     MembershipTier = "free"
	TierCore     MembershipTier = "core"
	TierPremium  MembershipTier = "premium"
	TierStudent  MembershipTier = "student"
	TierBusiness MembershipTier = "business"
	TierVIP      MembershipTier = "vip"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type Season string

const (
	SeasonPeak     Season = "peak"
	SeasonHigh     Season = "high"
	SeasonStandard Season = "standard"
	SeasonLow      Season = "low"
)

type RateSpec struct {
	ServiceID       string
	Category        string
	BaseRate        decimal.Decimal
	DayRate         *decimal.Decimal
	MinimumHours    int
	MinimumDayHours int
	CalloutFee      decimal.Decimal
	Currency        string
	RequiresSIA     bool
}

// ClockTime is a time of day in seconds after midnight.
type ClockTime int

func Clock(hour, minute int) ClockTime {
	return ClockTime(hour*3600 + minute*60)
}

func clockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

type TimeWindowRule struct {
	Name       string
	Days       []time.Weekday
	Start      ClockTime
	End        ClockTime
	Multiplier decimal.Decimal
}

type DiscountTier struct {
	MinHours   float64
	MaxHours   *float64
	Percentage decimal.Decimal
}

type Bundle struct {
	Name            string
	ServiceTypes    []string
	MinimumServices int
	Percentage      decimal.Decimal
}

type CorporateRate struct {
	AccountID  string
	Percentage decimal.Decimal
	Active     bool
}

type GroupSurcharge struct {
	Threshold int
	Step      decimal.Decimal
}

type Extra struct {
	Type     string
	Quantity int
}

// BookingRequest is the validated input to Engine.Calculate. Optional fields are pointers or empty strings.
type BookingRequest struct {
	ServiceID          string
	VehicleID          *string
	DriverID           *string
	PickupAt           time.Time
	Hours              float64
	BookingType        BookingType
	MembershipTier     MembershipTier
	PassengerCount     int
	Extras             []Extra
	ServiceTypes       []string
	CorporateAccountID *string
	DisplayCurrency    *string
}

type LineKind string

const (
	LineCharge   LineKind = "charge"
	LineDiscount LineKind = "discount"
	LineTax      LineKind = "tax"
)

type BreakdownLine struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        LineKind        `json:"kind"`
}

type AppliedDiscount struct {
	Applicable bool            `json:"applicable"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

type DisplayAmount struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
}

type PricingResult struct {
	ServiceID         string          `json:"service_id"`
	BaseRate          decimal.Decimal `json:"base_rate"`
	DayRateApplied    bool            `json:"day_rate_applied"`
	Hours             decimal.Decimal `json:"hours"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	CalloutFee        decimal.Decimal `json:"callout_fee"`
	GroupSurcharge    decimal.Decimal `json:"group_surcharge"`
	PeakTimeCharges   decimal.Decimal `json:"peak_time_charges"`
	PeakRule          string          `json:"peak_rule,omitempty"`
	Season            Season          `json:"season"`
	SeasonalCharges   decimal.Decimal `json:"seasonal_charges"`
	VehiclePremium    decimal.Decimal `json:"vehicle_premium"`
	DriverPremium     decimal.Decimal `json:"driver_premium"`
	ExtrasTotal       decimal.Decimal `json:"extras_total"`
	ComplianceFee     decimal.Decimal `json:"compliance_fee"`
	BlockDiscount     AppliedDiscount `json:"block_discount"`
	MemberDiscount    AppliedDiscount `json:"member_discount"`
	BundleDiscount    AppliedDiscount `json:"bundle_discount"`
	CorporateDiscount AppliedDiscount `json:"corporate_discount"`
	VAT               decimal.Decimal `json:"vat"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Currency          string          `json:"currency"`
	Display           *DisplayAmount  `json:"display,omitempty"`
	Breakdown         []BreakdownLine `json:"breakdown"`
}

// README: Pricing engine; a single pass over an immutable rate card producing an itemized quote.
package pricing

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var one = decimal.NewFromInt(1)

// Engine computes quotes. It carries no mutable state and may be shared across goroutines.
type Engine struct {
	card *RateCard
	log  logrus.FieldLogger
}

func NewEngine(card *RateCard, log logrus.FieldLogger) *Engine {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Engine{card: card, log: log}
}

// Convert rescales amount between two supported currencies.
func (e *Engine) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	return e.card.Currencies.Convert(amount, from, to)
}

// calculation accumulates breakdown lines; running is always the sum of the lines so far.
type calculation struct {
	res     PricingResult
	running decimal.Decimal
}

func (c *calculation) append(desc string, amount decimal.Decimal, kind LineKind) {
	c.res.Breakdown = append(c.res.Breakdown, BreakdownLine{Description: desc, Amount: amount, Kind: kind})
	c.running = c.running.Add(amount)
}

// add rounds amount to pence and records it unless it is zero.
func (c *calculation) add(desc string, amount decimal.Decimal, kind LineKind) decimal.Decimal {
	amount = amount.Round(2)
	if amount.IsZero() {
		return amount
	}
	c.append(desc, amount, kind)
	return amount
}

func (c *calculation) discount(desc string, pct decimal.Decimal) AppliedDiscount {
	if !pct.IsPositive() {
		return AppliedDiscount{}
	}
	amt := percentOf(c.running, pct)
	c.add(desc, amt.Neg(), LineDiscount)
	return AppliedDiscount{Applicable: true, Percentage: pct, Amount: amt}
}

// Calculate prices a booking request. Order of application is fixed:
// base, group, peak, season, premiums, extras, callout, compliance,
// then block, membership, bundle and corporate discounts, then VAT.
func (e *Engine) Calculate(req BookingRequest) (PricingResult, error) {
	if err := validate(req); err != nil {
		return PricingResult{}, err
	}
	rates, err := e.card.Lookup(req.ServiceID, req.VehicleID, req.DriverID)
	if err != nil {
		return PricingResult{}, err
	}
	spec := rates.Spec
	log := e.log.WithField("service_id", spec.ServiceID)

	hours, base, dayRate, err := billing(spec, req)
	if err != nil {
		return PricingResult{}, err
	}

	c := &calculation{res: PricingResult{
		ServiceID:      spec.ServiceID,
		BaseRate:       spec.BaseRate,
		DayRateApplied: dayRate,
		Hours:          hours,
		Currency:       spec.Currency,
	}}
	res := &c.res

	res.Subtotal = base.Round(2)
	if dayRate {
		c.append(fmt.Sprintf("Day rate (covers %dh)", spec.MinimumDayHours), res.Subtotal, LineCharge)
	} else {
		c.append(fmt.Sprintf("Base rate (%sh x %s %s)", hours.String(), spec.BaseRate.StringFixed(2), spec.Currency), res.Subtotal, LineCharge)
	}

	if rate := GroupSurchargeRate(req.PassengerCount, e.card.Group); rate.IsPositive() {
		res.GroupSurcharge = c.add(fmt.Sprintf("Group surcharge (%d passengers)", req.PassengerCount), res.Subtotal.Mul(rate), LineCharge)
	}

	local := req.PickupAt.In(e.card.location())
	if rule, ok := MatchPeakRule(local, e.card.PeakRules); ok {
		res.PeakRule = rule.Name
		res.PeakTimeCharges = c.add(fmt.Sprintf("Peak time surcharge (%s x%s)", rule.Name, rule.Multiplier.String()),
			c.running.Mul(rule.Multiplier.Sub(one)), LineCharge)
	}

	res.Season = SeasonOf(local)
	if m, ok := e.card.Seasons[res.Season]; ok && !m.Equal(one) {
		delta := c.running.Mul(m.Sub(one))
		kind := LineCharge
		if delta.IsNegative() {
			kind = LineDiscount
		}
		res.SeasonalCharges = c.add(fmt.Sprintf("Seasonal adjustment (%s season x%s)", res.Season, m.String()), delta, kind)
	}

	if rates.VehicleID != "" {
		res.VehiclePremium = c.add(fmt.Sprintf("Vehicle premium (%s, %sh)", rates.VehicleID, hours.String()),
			rates.VehiclePremium.Mul(hours), LineCharge)
	}
	if rates.DriverID != "" {
		res.DriverPremium = c.add(fmt.Sprintf("Driver premium (%s, %sh)", rates.DriverID, hours.String()),
			rates.DriverPremium.Mul(hours), LineCharge)
	}

	for _, x := range req.Extras {
		if x.Quantity == 0 {
			continue
		}
		price, ok := ExtraUnitPrice(x.Type, e.card.Extras)
		if !ok {
			log.WithFields(logrus.Fields{"extra_type": x.Type, "quantity": x.Quantity}).
				Warn("unknown extra type, priced at zero")
			continue
		}
		amt := c.add(fmt.Sprintf("Extra: %s x%d", x.Type, x.Quantity), price.Mul(decimal.NewFromInt(int64(x.Quantity))), LineCharge)
		res.ExtrasTotal = res.ExtrasTotal.Add(amt)
	}

	res.CalloutFee = c.add("Callout fee", spec.CalloutFee, LineCharge)

	if spec.RequiresSIA {
		fee, level, ok := ComplianceFee(spec, e.card.CategoryRisk, e.card.ComplianceFees)
		if ok {
			res.ComplianceFee = c.add(fmt.Sprintf("SIA compliance fee (%s risk)", level), fee, LineCharge)
		} else {
			log.WithFields(logrus.Fields{"category": spec.Category, "risk_level": level}).
				Warn("no compliance fee for service category, priced at zero")
		}
	}

	if req.BookingType == BookingBlock {
		if tier, ok := SelectBlockTier(req.Hours, e.card.BlockTiers); ok {
			res.BlockDiscount = c.discount(fmt.Sprintf("Block booking discount (%s%%)", tier.Percentage.String()), tier.Percentage)
		}
	}

	if pct := MembershipPercentage(req.MembershipTier, e.card.Memberships); pct.IsPositive() {
		res.MemberDiscount = c.discount(fmt.Sprintf("Membership discount (%s, %s%%)", req.MembershipTier, pct.String()), pct)
	} else if req.MembershipTier != "" && req.MembershipTier != TierFree {
		log.WithField("membership_tier", req.MembershipTier).Warn("unknown membership tier, no discount")
	}

	if b, ok := MatchBundle(req.ServiceTypes, e.card.Bundles); ok {
		res.BundleDiscount = c.discount(fmt.Sprintf("Bundle discount (%s, %s%%)", b.Name, b.Percentage.String()), b.Percentage)
	}

	if rate, ok := CorporateDiscount(req.CorporateAccountID, e.card.Corporate); ok {
		res.CorporateDiscount = c.discount(fmt.Sprintf("Corporate discount (%s, %s%%)", rate.AccountID, rate.Percentage.String()), rate.Percentage)
	} else if req.CorporateAccountID != nil && *req.CorporateAccountID != "" {
		log.WithField("corporate_account", *req.CorporateAccountID).Warn("corporate account not active, no discount")
	}

	vat, total := ComposeTotal(c.running, e.card.VATRate)
	res.VAT = vat
	c.append(fmt.Sprintf("VAT (%s%%)", e.card.VATRate.String()), vat, LineTax)
	res.TotalAmount = total

	if req.DisplayCurrency != nil && *req.DisplayCurrency != "" && !strings.EqualFold(*req.DisplayCurrency, spec.Currency) {
		to := strings.ToUpper(*req.DisplayCurrency)
		amt, err := e.card.Currencies.Convert(total, spec.Currency, to)
		if err != nil {
			return PricingResult{}, err
		}
		rate, _ := e.card.Currencies.Convert(one, spec.Currency, to)
		res.Display = &DisplayAmount{Amount: amt.Round(2), Currency: to, Rate: rate.Round(6)}
	}
	return c.res, nil
}

// billing selects exactly one of the day-rate or hourly paths and returns billed hours and base amount.
func billing(spec RateSpec, req BookingRequest) (decimal.Decimal, decimal.Decimal, bool, error) {
	if spec.DayRate != nil && req.BookingType.qualifiesForDayRate() &&
		(req.BookingType == BookingDayRate || req.Hours >= float64(spec.MinimumDayHours)) {
		return decimal.NewFromInt(int64(spec.MinimumDayHours)), *spec.DayRate, true, nil
	}
	h := req.Hours
	if h < float64(spec.MinimumHours) {
		h = float64(spec.MinimumHours)
	}
	if h <= 0 {
		return decimal.Zero, decimal.Zero, false, invalid("hours", "must be greater than 0")
	}
	hours := decimal.NewFromFloat(h)
	return hours, spec.BaseRate.Mul(hours), false, nil
}

func validate(req BookingRequest) error {
	if req.ServiceID == "" {
		return invalid("service_id", "is required")
	}
	if !req.BookingType.Valid() {
		return invalid("booking_type", "must be one of hourly, day_rate, block_booking, airport_transfer")
	}
	if req.PickupAt.IsZero() {
		return invalid("pickup_datetime", "is required")
	}
	if math.IsNaN(req.Hours) || math.IsInf(req.Hours, 0) || req.Hours < 0 {
		return invalid("hours", "must be a non-negative number")
	}
	if req.PassengerCount < 1 {
		return invalid("passenger_count", "must be at least 1")
	}
	for i, x := range req.Extras {
		if x.Quantity < 0 {
			return invalid(fmt.Sprintf("extras[%d].quantity", i), "must not be negative")
		}
	}
	return nil
}

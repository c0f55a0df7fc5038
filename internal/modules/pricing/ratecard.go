// README: Rate card reference data and rate table lookup.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RateCard holds every table the pipeline reads. It is treated as immutable once handed to an Engine.
type RateCard struct {
	Location       *time.Location
	Services       map[string]RateSpec
	Vehicles       map[string]decimal.Decimal // hourly premium
	Drivers        map[string]decimal.Decimal // hourly premium
	PeakRules      []TimeWindowRule
	Seasons        map[Season]decimal.Decimal
	BlockTiers     []DiscountTier
	Memberships    map[MembershipTier]decimal.Decimal // percent
	Bundles        []Bundle
	Corporate      map[string]CorporateRate
	Extras         map[string]decimal.Decimal // unit price
	CategoryRisk   map[string]RiskLevel
	ComplianceFees map[RiskLevel]decimal.Decimal
	Group          GroupSurcharge
	VATRate        decimal.Decimal // percent
	Currencies     CurrencyTable
}

// ResolvedRates is the outcome of a rate table lookup for one request.
type ResolvedRates struct {
	Spec           RateSpec
	VehicleID      string
	VehiclePremium decimal.Decimal
	DriverID       string
	DriverPremium  decimal.Decimal
}

// Lookup resolves the service rate and the optional vehicle/driver premiums.
func (c *RateCard) Lookup(serviceID string, vehicleID, driverID *string) (ResolvedRates, error) {
	spec, ok := c.Services[serviceID]
	if !ok {
		return ResolvedRates{}, &NotFoundError{Kind: "service", ID: serviceID}
	}
	out := ResolvedRates{Spec: spec, VehiclePremium: decimal.Zero, DriverPremium: decimal.Zero}
	if vehicleID != nil && *vehicleID != "" {
		p, ok := c.Vehicles[*vehicleID]
		if !ok {
			return ResolvedRates{}, &NotFoundError{Kind: "vehicle", ID: *vehicleID}
		}
		out.VehicleID, out.VehiclePremium = *vehicleID, p
	}
	if driverID != nil && *driverID != "" {
		p, ok := c.Drivers[*driverID]
		if !ok {
			return ResolvedRates{}, &NotFoundError{Kind: "driver", ID: *driverID}
		}
		out.DriverID, out.DriverPremium = *driverID, p
	}
	return out, nil
}

// Validate rejects cards the pipeline cannot price against.
func (c *RateCard) Validate() error {
	if len(c.Services) == 0 {
		return errors.New("rate card: no services")
	}
	for id, s := range c.Services {
		if s.BaseRate.IsNegative() || s.CalloutFee.IsNegative() {
			return fmt.Errorf("rate card: service %s has negative rates", id)
		}
		if s.DayRate != nil && s.MinimumDayHours <= 0 {
			return fmt.Errorf("rate card: service %s has a day rate without minimum day hours", id)
		}
		if s.Currency == "" {
			return fmt.Errorf("rate card: service %s has no currency", id)
		}
		if !c.Currencies.Supports(s.Currency) {
			return fmt.Errorf("rate card: service %s priced in %s, missing from currencies", id, s.Currency)
		}
	}
	for _, r := range c.PeakRules {
		if r.Multiplier.LessThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("rate card: peak rule %s multiplier below 1", r.Name)
		}
	}
	for _, s := range []Season{SeasonPeak, SeasonHigh, SeasonStandard, SeasonLow} {
		if m, ok := c.Seasons[s]; ok && !m.IsPositive() {
			return fmt.Errorf("rate card: season %s multiplier must be positive", s)
		}
	}
	if c.VATRate.IsNegative() {
		return errors.New("rate card: negative VAT rate")
	}
	if gbp, ok := c.Currencies["GBP"]; !ok || !gbp.Equal(decimal.NewFromInt(1)) {
		return errors.New("rate card: currency table must define GBP at 1")
	}
	return nil
}

// Overlay returns a copy of c with the given services, vehicles, drivers and extras merged over c's own.
func (c *RateCard) Overlay(services map[string]RateSpec, vehicles, drivers, extras map[string]decimal.Decimal) *RateCard {
	out := *c
	out.Services = make(map[string]RateSpec, len(c.Services)+len(services))
	for k, v := range c.Services {
		out.Services[k] = v
	}
	for k, v := range services {
		out.Services[k] = v
	}
	out.Vehicles = mergeAmounts(c.Vehicles, vehicles)
	out.Drivers = mergeAmounts(c.Drivers, drivers)
	out.Extras = mergeAmounts(c.Extras, extras)
	return &out
}

func mergeAmounts(base, over map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func (c *RateCard) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

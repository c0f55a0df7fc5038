package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

var (
	// Wednesday midday, standard season.
	offPeak = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	// Friday evening.
	fridayEvening = time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)
)

func testCard() *RateCard {
	return &RateCard{
		Location: time.UTC,
		Services: map[string]RateSpec{
			"chauffeur": {ServiceID: "chauffeur", Category: "chauffeur", BaseRate: dec("65"), MinimumHours: 2, Currency: "GBP"},
			"exec": {
				ServiceID: "exec", Category: "chauffeur", BaseRate: dec("65"), DayRate: ptr(dec("450")),
				MinimumHours: 2, MinimumDayHours: 8, Currency: "GBP",
			},
			"security": {
				ServiceID: "security", Category: "security", BaseRate: dec("85"), MinimumHours: 4,
				CalloutFee: dec("25"), Currency: "GBP", RequiresSIA: true,
			},
			"stewards": {ServiceID: "stewards", Category: "unrated", BaseRate: dec("30"), MinimumHours: 1, Currency: "GBP", RequiresSIA: true},
			"nomin":    {ServiceID: "nomin", Category: "chauffeur", BaseRate: dec("10"), Currency: "GBP"},
		},
		Vehicles: map[string]decimal.Decimal{"e_class": dec("0"), "s_class": dec("25")},
		Drivers:  map[string]decimal.Decimal{"standard": dec("0"), "sia": dec("20")},
		PeakRules: []TimeWindowRule{
			{Name: "friday_evening", Days: []time.Weekday{time.Friday}, Start: Clock(17, 0), End: Clock(23, 59), Multiplier: dec("1.25")},
			{Name: "friday_late_afternoon", Days: []time.Weekday{time.Friday}, Start: Clock(16, 0), End: Clock(18, 0), Multiplier: dec("1.5")},
			{Name: "saturday_night", Days: []time.Weekday{time.Saturday}, Start: Clock(20, 0), End: Clock(2, 0), Multiplier: dec("1.3")},
		},
		Seasons: map[Season]decimal.Decimal{
			SeasonPeak: dec("1.25"), SeasonHigh: dec("1.15"), SeasonStandard: dec("1"), SeasonLow: dec("0.9"),
		},
		BlockTiers: []DiscountTier{
			{MinHours: 8, Percentage: dec("15")},
			{MinHours: 20, Percentage: dec("20")},
		},
		Memberships: map[MembershipTier]decimal.Decimal{TierCore: dec("5"), TierVIP: dec("20")},
		Bundles: []Bundle{
			{Name: "arrival", ServiceTypes: []string{"transfer", "chauffeur"}, MinimumServices: 2, Percentage: dec("10")},
		},
		Corporate: map[string]CorporateRate{
			"ACME": {AccountID: "ACME", Percentage: dec("12"), Active: true},
			"OLD":  {AccountID: "OLD", Percentage: dec("10"), Active: false},
		},
		Extras:         map[string]decimal.Decimal{"child_seat": dec("15")},
		CategoryRisk:   map[string]RiskLevel{"chauffeur": RiskLow, "security": RiskHigh},
		ComplianceFees: map[RiskLevel]decimal.Decimal{RiskLow: dec("50"), RiskHigh: dec("200")},
		Group:          GroupSurcharge{Threshold: 4, Step: dec("0.1")},
		VATRate:        dec("20"),
		Currencies:     CurrencyTable{"GBP": dec("1"), "EUR": dec("1.17"), "USD": dec("1.27")},
	}
}

func hourly(service string, hours float64, at time.Time) BookingRequest {
	return BookingRequest{
		ServiceID:      service,
		PickupAt:       at,
		Hours:          hours,
		BookingType:    BookingHourly,
		MembershipTier: TierFree,
		PassengerCount: 1,
	}
}

// README: YAML rate card loader.
package pricing

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type rateCardFile struct {
	TimeZone string                     `yaml:"time_zone"`
	VATRate  decimal.Decimal            `yaml:"vat_rate"`
	Services map[string]serviceFile     `yaml:"services"`
	Vehicles map[string]decimal.Decimal `yaml:"vehicles"`
	Drivers  map[string]decimal.Decimal `yaml:"drivers"`
	Peak     []struct {
		Name       string          `yaml:"name"`
		Days       []string        `yaml:"days"`
		Start      string          `yaml:"start"`
		End        string          `yaml:"end"`
		Multiplier decimal.Decimal `yaml:"multiplier"`
	} `yaml:"peak_rules"`
	Seasons    map[Season]decimal.Decimal `yaml:"seasons"`
	BlockTiers []struct {
		MinHours   float64         `yaml:"min_hours"`
		MaxHours   *float64        `yaml:"max_hours"`
		Percentage decimal.Decimal `yaml:"percentage"`
	} `yaml:"block_tiers"`
	Memberships map[MembershipTier]decimal.Decimal `yaml:"memberships"`
	Bundles     []struct {
		Name            string          `yaml:"name"`
		ServiceTypes    []string        `yaml:"service_types"`
		MinimumServices int             `yaml:"minimum_services"`
		Percentage      decimal.Decimal `yaml:"percentage"`
	} `yaml:"bundles"`
	Corporate map[string]struct {
		Percentage decimal.Decimal `yaml:"percentage"`
		Active     bool            `yaml:"active"`
	} `yaml:"corporate"`
	Extras     map[string]decimal.Decimal `yaml:"extras"`
	Compliance struct {
		CategoryRisk map[string]RiskLevel          `yaml:"category_risk"`
		Fees         map[RiskLevel]decimal.Decimal `yaml:"fees"`
	} `yaml:"compliance"`
	Group struct {
		Threshold int             `yaml:"threshold"`
		Step      decimal.Decimal `yaml:"step"`
	} `yaml:"group_surcharge"`
	Currencies map[string]decimal.Decimal `yaml:"currencies"`
}

type serviceFile struct {
	Category        string           `yaml:"category"`
	BaseRate        decimal.Decimal  `yaml:"base_rate"`
	DayRate         *decimal.Decimal `yaml:"day_rate"`
	MinimumHours    int              `yaml:"minimum_hours"`
	MinimumDayHours int              `yaml:"minimum_day_hours"`
	CalloutFee      decimal.Decimal  `yaml:"callout_fee"`
	Currency        string           `yaml:"currency"`
	RequiresSIA     bool             `yaml:"requires_sia"`
}

// LoadRateCardFile reads and validates a YAML rate card from path.
func LoadRateCardFile(path string) (*RateCard, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rate card: %w", err)
	}
	defer f.Close()
	return DecodeRateCard(f)
}

// DecodeRateCard parses and validates a YAML rate card.
func DecodeRateCard(r io.Reader) (*RateCard, error) {
	var raw rateCardFile
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode rate card: %w", err)
	}
	card, err := raw.toRateCard()
	if err != nil {
		return nil, err
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}
	return card, nil
}

func (raw rateCardFile) toRateCard() (*RateCard, error) {
	loc := time.UTC
	if raw.TimeZone != "" {
		l, err := time.LoadLocation(raw.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("rate card time_zone: %w", err)
		}
		loc = l
	}
	card := &RateCard{
		Location:       loc,
		Services:       make(map[string]RateSpec, len(raw.Services)),
		Vehicles:       raw.Vehicles,
		Drivers:        raw.Drivers,
		Seasons:        raw.Seasons,
		Memberships:    raw.Memberships,
		Corporate:      make(map[string]CorporateRate, len(raw.Corporate)),
		Extras:         raw.Extras,
		CategoryRisk:   raw.Compliance.CategoryRisk,
		ComplianceFees: raw.Compliance.Fees,
		Group:          GroupSurcharge{Threshold: raw.Group.Threshold, Step: raw.Group.Step},
		VATRate:        raw.VATRate,
		Currencies:     CurrencyTable(raw.Currencies),
	}
	for id, s := range raw.Services {
		card.Services[id] = RateSpec{
			ServiceID:       id,
			Category:        s.Category,
			BaseRate:        s.BaseRate,
			DayRate:         s.DayRate,
			MinimumHours:    s.MinimumHours,
			MinimumDayHours: s.MinimumDayHours,
			CalloutFee:      s.CalloutFee,
			Currency:        strings.ToUpper(s.Currency),
			RequiresSIA:     s.RequiresSIA,
		}
	}
	for _, p := range raw.Peak {
		days, err := parseWeekdays(p.Days)
		if err != nil {
			return nil, fmt.Errorf("peak rule %s: %w", p.Name, err)
		}
		start, err := ParseClock(p.Start)
		if err != nil {
			return nil, fmt.Errorf("peak rule %s start: %w", p.Name, err)
		}
		end, err := ParseClock(p.End)
		if err != nil {
			return nil, fmt.Errorf("peak rule %s end: %w", p.Name, err)
		}
		card.PeakRules = append(card.PeakRules, TimeWindowRule{
			Name: p.Name, Days: days, Start: start, End: end, Multiplier: p.Multiplier,
		})
	}
	for _, t := range raw.BlockTiers {
		card.BlockTiers = append(card.BlockTiers, DiscountTier{
			MinHours: t.MinHours, MaxHours: t.MaxHours, Percentage: t.Percentage,
		})
	}
	for _, b := range raw.Bundles {
		card.Bundles = append(card.Bundles, Bundle{
			Name: b.Name, ServiceTypes: b.ServiceTypes, MinimumServices: b.MinimumServices, Percentage: b.Percentage,
		})
	}
	for id, c := range raw.Corporate {
		card.Corporate[id] = CorporateRate{AccountID: id, Percentage: c.Percentage, Active: c.Active}
	}
	return card, nil
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

func parseWeekdays(in []string) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(in))
	for _, d := range in {
		key := strings.ToLower(d)
		if len(key) > 3 {
			key = key[:3]
		}
		w, ok := weekdays[key]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", d)
		}
		out = append(out, w)
	}
	return out, nil
}

// ParseClock parses "HH:MM" into a ClockTime.
func ParseClock(v string) (ClockTime, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, err
	}
	return Clock(t.Hour(), t.Minute()), nil
}

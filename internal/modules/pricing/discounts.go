package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// percentOf returns pct% of amount rounded to pence.
func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred).Round(2)
}

// SelectBlockTier picks, among tiers containing requestedHours, the one with the highest MinHours.
// Equal MinHours keep the earlier declaration.
func SelectBlockTier(requestedHours float64, tiers []DiscountTier) (DiscountTier, bool) {
	var best DiscountTier
	found := false
	for _, t := range tiers {
		if requestedHours < t.MinHours {
			continue
		}
		if t.MaxHours != nil && requestedHours > *t.MaxHours {
			continue
		}
		if !found || t.MinHours > best.MinHours {
			best, found = t, true
		}
	}
	return best, found
}

// MembershipPercentage returns the tier discount in percent; unknown and free tiers get zero.
func MembershipPercentage(tier MembershipTier, table map[MembershipTier]decimal.Decimal) decimal.Decimal {
	if tier == "" || tier == TierFree {
		return decimal.Zero
	}
	if pct, ok := table[tier]; ok {
		return pct
	}
	return decimal.Zero
}

// MatchBundle returns the first declared bundle whose service types intersect the
// requested ones in at least MinimumServices distinct entries.
func MatchBundle(serviceTypes []string, bundles []Bundle) (Bundle, bool) {
	if len(serviceTypes) == 0 {
		return Bundle{}, false
	}
	requested := make(map[string]struct{}, len(serviceTypes))
	for _, s := range serviceTypes {
		requested[strings.ToLower(s)] = struct{}{}
	}
	for _, b := range bundles {
		hits := 0
		seen := make(map[string]struct{}, len(b.ServiceTypes))
		for _, s := range b.ServiceTypes {
			key := strings.ToLower(s)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if _, ok := requested[key]; ok {
				hits++
			}
		}
		min := b.MinimumServices
		if min < 1 {
			min = 1
		}
		if hits >= min {
			return b, true
		}
	}
	return Bundle{}, false
}

// CorporateDiscount resolves an active corporate rate for the given account.
func CorporateDiscount(accountID *string, table map[string]CorporateRate) (CorporateRate, bool) {
	if accountID == nil || *accountID == "" {
		return CorporateRate{}, false
	}
	rate, ok := table[*accountID]
	if !ok || !rate.Active {
		return CorporateRate{}, false
	}
	return rate, true
}

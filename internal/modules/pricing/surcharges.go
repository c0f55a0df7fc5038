package pricing

import "github.com/shopspring/decimal"

// GroupSurchargeRate is the fraction added on top of the base for passengers above the threshold.
func GroupSurchargeRate(passengers int, g GroupSurcharge) decimal.Decimal {
	if g.Threshold <= 0 || passengers <= g.Threshold {
		return decimal.Zero
	}
	return g.Step.Mul(decimal.NewFromInt(int64(passengers - g.Threshold)))
}

// ExtraUnitPrice returns the unit price of an add-on; unknown types price at zero.
func ExtraUnitPrice(kind string, table map[string]decimal.Decimal) (decimal.Decimal, bool) {
	p, ok := table[kind]
	if !ok {
		return decimal.Zero, false
	}
	return p, true
}

// ComplianceFee returns the SIA complexity fee for a service. The risk level is
// derived from the service category as a proxy for a full risk assessment.
func ComplianceFee(spec RateSpec, categoryRisk map[string]RiskLevel, fees map[RiskLevel]decimal.Decimal) (decimal.Decimal, RiskLevel, bool) {
	if !spec.RequiresSIA {
		return decimal.Zero, "", false
	}
	level, ok := categoryRisk[spec.Category]
	if !ok {
		return decimal.Zero, "", false
	}
	fee, ok := fees[level]
	if !ok {
		return decimal.Zero, level, false
	}
	return fee, level, true
}

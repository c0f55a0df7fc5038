package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyTable maps a currency code to units of that currency per 1 GBP.
type CurrencyTable map[string]decimal.Decimal

func (t CurrencyTable) rate(code string) (decimal.Decimal, error) {
	r, ok := t[strings.ToUpper(code)]
	if !ok || !r.IsPositive() {
		return decimal.Zero, &CurrencyError{Code: code}
	}
	return r, nil
}

// Convert rescales amount from one currency to another through GBP. The result is not rounded.
func (t CurrencyTable) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	fromRate, err := t.rate(from)
	if err != nil {
		return decimal.Zero, err
	}
	toRate, err := t.rate(to)
	if err != nil {
		return decimal.Zero, err
	}
	if strings.EqualFold(from, to) {
		return amount, nil
	}
	return amount.Mul(toRate).Div(fromRate), nil
}

// Supports reports whether code is in the table.
func (t CurrencyTable) Supports(code string) bool {
	_, err := t.rate(code)
	return err == nil
}

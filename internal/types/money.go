// README: Common money value object used across modules.
package types

import "github.com/shopspring/decimal"

type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// Round2 rounds to pence (half away from zero).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: Round2(amount), Currency: currency}
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency
}

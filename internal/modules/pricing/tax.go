package pricing

import "github.com/shopspring/decimal"

// ComposeTotal applies VAT to the post-discount subtotal and clamps the total at zero.
func ComposeTotal(subtotal, vatPercent decimal.Decimal) (vat, total decimal.Decimal) {
	taxable := subtotal
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	vat = percentOf(taxable, vatPercent)
	total = subtotal.Add(vat)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return vat, total
}

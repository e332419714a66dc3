// Package pricing centralizes money arithmetic for order and invoice
// lines. All rounding is half-up at 2 decimal places, done in decimal
// arithmetic so the tax invariant holds exactly.
package pricing

import "github.com/shopspring/decimal"

// TaxRate is the flat GST rate applied to every line.
var TaxRate = decimal.NewFromFloat(0.18)

// Round2 rounds half-up to 2 decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// UnitAmounts derives the tax-inclusive unit price and the unit tax from a
// pre-tax unit price: round2(price * (1+TaxRate)) == unitPrice.
func UnitAmounts(preTax decimal.Decimal) (unitPrice, unitTax decimal.Decimal) {
	unitPrice = Round2(preTax.Mul(decimal.NewFromInt(1).Add(TaxRate)))
	unitTax = unitPrice.Sub(Round2(preTax))
	return unitPrice, unitTax
}

// Consistent reports whether a stored pre-tax price and unit price satisfy
// the tax invariant within rounding tolerance.
func Consistent(preTax, unitPrice decimal.Decimal) bool {
	want, _ := UnitAmounts(preTax)
	return want.Equal(Round2(unitPrice))
}

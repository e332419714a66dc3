package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestUnitAmounts(t *testing.T) {
	cases := []struct {
		preTax    string
		unitPrice string
		tax       string
	}{
		{"100", "118", "18"},
		{"0", "0", "0"},
		{"99.99", "117.99", "18"},
		{"0.01", "0.01", "0"},
		{"1250.50", "1475.59", "225.09"},
	}
	for _, tc := range cases {
		preTax := decimal.RequireFromString(tc.preTax)
		unitPrice, tax := UnitAmounts(preTax)
		require.True(t, unitPrice.Equal(decimal.RequireFromString(tc.unitPrice)),
			"preTax %s: got unit price %s", tc.preTax, unitPrice)
		require.True(t, tax.Equal(decimal.RequireFromString(tc.tax)),
			"preTax %s: got tax %s", tc.preTax, tax)
	}
}

func TestUnitAmountsInvariant(t *testing.T) {
	// round2(preTax * 1.18) == unitPrice and preTax + tax == unitPrice for
	// a spread of awkward values.
	for _, raw := range []string{"0.01", "0.05", "1.11", "33.33", "999.95", "12345.67"} {
		preTax := decimal.RequireFromString(raw)
		unitPrice, tax := UnitAmounts(preTax)
		want := Round2(preTax.Mul(decimal.NewFromInt(1).Add(TaxRate)))
		require.True(t, unitPrice.Equal(want), "preTax %s", raw)
		require.True(t, Round2(preTax).Add(tax).Equal(unitPrice), "preTax %s", raw)
	}
}

func TestRound2HalfUp(t *testing.T) {
	require.Equal(t, "1.13", Round2(decimal.RequireFromString("1.125")).StringFixed(2))
	require.Equal(t, "1.12", Round2(decimal.RequireFromString("1.124")).StringFixed(2))
}

func TestConsistent(t *testing.T) {
	preTax := decimal.RequireFromString("250")
	unitPrice, _ := UnitAmounts(preTax)
	require.True(t, Consistent(preTax, unitPrice))
	require.False(t, Consistent(preTax, unitPrice.Add(decimal.RequireFromString("0.01"))))
}

package bulkimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/catalog"
)

type staticLookups map[string]string

func (l staticLookups) Canonical(kind, value string) (string, bool) {
	canonical, ok := l[kind+"/"+strings.ToLower(strings.TrimSpace(value))]
	return canonical, ok
}

var fullHeader = []string{HeaderSKU, HeaderModel, HeaderBrand, HeaderCategory, HeaderDescription, HeaderReorderPoint, HeaderIsSerialized}

func row(sku, model, brand, category string) Row {
	return Row{HeaderSKU: sku, HeaderModel: model, HeaderBrand: brand, HeaderCategory: category}
}

func TestValidateMissingHeadersFailFile(t *testing.T) {
	result := Validate([]string{HeaderSKU, HeaderModel}, []Row{row("A-1", "M", "B", "C")}, nil, staticLookups{})

	require.Len(t, result.FileErrors, 2)
	require.Empty(t, result.Rows, "rows are not inspected when the file fails")
	require.False(t, result.OK())
}

func TestValidateRequiredFields(t *testing.T) {
	result := Validate(fullHeader, []Row{row("", "", "", "")}, nil, staticLookups{})

	require.Len(t, result.Rows, 1)
	require.Len(t, result.Rows[0].Errors, 4)
	require.False(t, result.OK())
}

func TestValidateLineNumbersStartBelowHeader(t *testing.T) {
	result := Validate(fullHeader, []Row{
		row("A-1", "M", "B", "C"),
		row("A-2", "M", "B", "C"),
	}, nil, staticLookups{})

	require.Equal(t, 2, result.Rows[0].Line)
	require.Equal(t, 3, result.Rows[1].Line)
}

func TestValidateSKUCharset(t *testing.T) {
	bad := []string{"A 1", "A#1", "é-1"}
	for _, sku := range bad {
		result := Validate(fullHeader, []Row{row(sku, "M", "B", "C")}, nil, staticLookups{})
		require.NotEmpty(t, result.Rows[0].Errors, "sku %q must be rejected", sku)
	}

	result := Validate(fullHeader, []Row{row("Ab-1_X", "M", "B", "C")}, nil, staticLookups{})
	require.Empty(t, result.Rows[0].Errors)
}

func TestValidateSKUConflictsWithExisting(t *testing.T) {
	existing := []catalog.Product{{SKU: "tv-lg-55"}}
	result := Validate(fullHeader, []Row{row("TV-LG-55", "M", "B", "C")}, existing, staticLookups{})

	require.Len(t, result.Rows[0].Errors, 1)
	require.Contains(t, result.Rows[0].Errors[0], "already exists")
}

func TestValidateSKUDuplicateWithinFile(t *testing.T) {
	result := Validate(fullHeader, []Row{
		row("A-1", "M", "B", "C"),
		row("a-1", "M", "B", "C"),
	}, nil, staticLookups{})

	require.Empty(t, result.Rows[0].Errors)
	require.Len(t, result.Rows[1].Errors, 1)
	require.Contains(t, result.Rows[1].Errors[0], "duplicates line 2")
}

func TestValidateReorderPoint(t *testing.T) {
	mk := func(raw string) Row {
		r := row("A-1", "M", "B", "C")
		r[HeaderReorderPoint] = raw
		return r
	}

	result := Validate(fullHeader, []Row{mk("")}, nil, staticLookups{})
	require.Empty(t, result.Rows[0].Errors)
	require.Equal(t, 0, result.Rows[0].Product.ReorderPoint)

	result = Validate(fullHeader, []Row{mk("7")}, nil, staticLookups{})
	require.Equal(t, 7, result.Rows[0].Product.ReorderPoint)

	for _, raw := range []string{"abc", "-1", "1.5"} {
		result = Validate(fullHeader, []Row{mk(raw)}, nil, staticLookups{})
		require.NotEmpty(t, result.Rows[0].Errors, "reorder point %q must be rejected", raw)
	}
}

func TestValidateIsSerialized(t *testing.T) {
	mk := func(raw string) Row {
		r := row("A-1", "M", "B", "C")
		r[HeaderIsSerialized] = raw
		return r
	}
	for raw, want := range map[string]bool{"true": true, "Yes": true, "y": true, "1": true, "": false, "no": false, "0": false} {
		result := Validate(fullHeader, []Row{mk(raw)}, nil, staticLookups{})
		require.Empty(t, result.Rows[0].Errors)
		require.Equal(t, want, result.Rows[0].Product.IsSerialized, "raw %q", raw)
	}
}

func TestValidateReusesCanonicalLookupCasing(t *testing.T) {
	lookups := staticLookups{
		"brands/samsung":         "Samsung",
		"categories/televisions": "Televisions",
	}
	result := Validate(fullHeader, []Row{row("A-1", "M", "SAMSUNG", "televisions")}, nil, lookups)

	require.True(t, result.OK())
	require.Equal(t, "Samsung", result.Rows[0].Product.Brand)
	require.Equal(t, "Televisions", result.Rows[0].Product.Category)
	require.Empty(t, result.NewLookups, "known values are not staged")
}

func TestValidateStagesNewLookupsOnce(t *testing.T) {
	result := Validate(fullHeader, []Row{
		row("A-1", "M", "acme", "cables"),
		row("A-2", "M", "ACME", "Cables"),
	}, nil, staticLookups{})

	require.True(t, result.OK())
	// Both rows resolve to the same normalized value, staged exactly once
	// per kind.
	require.Equal(t, "Acme", result.Rows[0].Product.Brand)
	require.Equal(t, "Acme", result.Rows[1].Product.Brand)
	require.ElementsMatch(t, []catalog.LookupValue{
		{Kind: catalog.LookupBrands, Value: "Acme"},
		{Kind: catalog.LookupCategories, Value: "Cables"},
	}, result.NewLookups)
}

func TestResultOK(t *testing.T) {
	require.False(t, Result{}.OK(), "an empty file is not committable")
	require.False(t, Result{Rows: []RowResult{{Line: 2, Errors: []string{"bad"}}}}.OK())
	require.True(t, Result{Rows: []RowResult{{Line: 2}}}.OK())
}

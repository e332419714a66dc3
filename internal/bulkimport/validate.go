// Package bulkimport validates spreadsheet product imports and commits
// clean files in one transaction. A file commits all rows or none: any
// error anywhere leaves the catalog untouched, while per-row results stay
// available for preview.
package bulkimport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/stockdesk/stockdesk/internal/catalog"
)

// Template headers. SKU, Model, Brand and Category are mandatory; the rest
// are optional columns of the import template.
const (
	HeaderSKU          = "SKU"
	HeaderModel        = "Model"
	HeaderBrand        = "Brand"
	HeaderCategory     = "Category"
	HeaderDescription  = "Description"
	HeaderReorderPoint = "ReorderPoint"
	HeaderIsSerialized = "IsSerialized"
)

var requiredHeaders = []string{HeaderSKU, HeaderModel, HeaderBrand, HeaderCategory}

var skuPattern = regexp.MustCompile(`^[A-Za-z0-9-_]+$`)

// Row is one data row keyed by header name, as parsed from the sheet.
type Row map[string]string

// RowResult is the validation outcome for one row. Product is only
// meaningful when Errors is empty.
type RowResult struct {
	Line    int             `json:"line"`
	Product catalog.Product `json:"product"`
	Errors  []string        `json:"errors,omitempty"`
}

// Result is the outcome of validating a whole file.
type Result struct {
	// FileErrors fail the file before any row is looked at (missing
	// mandatory headers).
	FileErrors []string    `json:"fileErrors,omitempty"`
	Rows       []RowResult `json:"rows,omitempty"`
	// NewLookups are brand/category values not yet known, staged for the
	// commit transaction, deduplicated case-insensitively across the file.
	NewLookups []catalog.LookupValue `json:"newLookups,omitempty"`
}

// OK reports whether every row is committable.
func (r Result) OK() bool {
	if len(r.FileErrors) > 0 {
		return false
	}
	for _, row := range r.Rows {
		if len(row.Errors) > 0 {
			return false
		}
	}
	return len(r.Rows) > 0
}

// Lookups resolves existing brand/category values to canonical casing.
type Lookups interface {
	Canonical(kind, value string) (string, bool)
}

// Validate checks a parsed file against the template rules and the loaded
// product set. SKU uniqueness is case-insensitive, both against existing
// products and within the file itself.
func Validate(header []string, rows []Row, existing []catalog.Product, lookups Lookups) Result {
	var result Result

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	for _, h := range requiredHeaders {
		if !present[h] {
			result.FileErrors = append(result.FileErrors, fmt.Sprintf("missing required column %q", h))
		}
	}
	if len(result.FileErrors) > 0 {
		return result
	}

	takenSKUs := make(map[string]bool, len(existing))
	for _, p := range existing {
		takenSKUs[strings.ToLower(p.SKU)] = true
	}
	seenSKUs := make(map[string]int, len(rows))

	stagedLookups := make(map[string]catalog.LookupValue)

	for i, row := range rows {
		// Header row is line 1.
		line := i + 2
		res := RowResult{Line: line}

		sku := strings.TrimSpace(row[HeaderSKU])
		model := strings.TrimSpace(row[HeaderModel])
		brand := strings.TrimSpace(row[HeaderBrand])
		category := strings.TrimSpace(row[HeaderCategory])

		if sku == "" {
			res.Errors = append(res.Errors, "SKU is required")
		} else if !skuPattern.MatchString(sku) {
			res.Errors = append(res.Errors, fmt.Sprintf("SKU %q may only contain letters, digits, - and _", sku))
		} else {
			key := strings.ToLower(sku)
			if takenSKUs[key] {
				res.Errors = append(res.Errors, fmt.Sprintf("SKU %q already exists", sku))
			} else if prev, dup := seenSKUs[key]; dup {
				res.Errors = append(res.Errors, fmt.Sprintf("SKU %q duplicates line %d", sku, prev))
			} else {
				seenSKUs[key] = line
			}
		}
		if model == "" {
			res.Errors = append(res.Errors, "Model is required")
		}
		if brand == "" {
			res.Errors = append(res.Errors, "Brand is required")
		} else {
			brand = resolveLookup(catalog.LookupBrands, brand, lookups, stagedLookups)
		}
		if category == "" {
			res.Errors = append(res.Errors, "Category is required")
		} else {
			category = resolveLookup(catalog.LookupCategories, category, lookups, stagedLookups)
		}

		reorderPoint := 0
		if raw := strings.TrimSpace(row[HeaderReorderPoint]); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				res.Errors = append(res.Errors, fmt.Sprintf("ReorderPoint %q must be a non-negative number", raw))
			} else {
				reorderPoint = n
			}
		}
		serialized := parseBool(row[HeaderIsSerialized])

		if len(res.Errors) == 0 {
			res.Product = catalog.Product{
				SKU:          sku,
				Model:        model,
				Brand:        brand,
				Category:     category,
				Description:  strings.TrimSpace(row[HeaderDescription]),
				ReorderPoint: reorderPoint,
				IsSerialized: serialized,
			}
		}
		result.Rows = append(result.Rows, res)
	}

	for _, v := range stagedLookups {
		result.NewLookups = append(result.NewLookups, v)
	}
	return result
}

// resolveLookup reuses the canonical casing of a known value; unknown
// values are normalized and staged as new lookup entries, deduplicated
// case-insensitively across the file.
func resolveLookup(kind, value string, lookups Lookups, staged map[string]catalog.LookupValue) string {
	if canonical, ok := lookups.Canonical(kind, value); ok {
		return canonical
	}
	cleaned := catalog.NormalizeLookupValue(value)
	key := kind + "\x00" + strings.ToLower(cleaned)
	if prior, ok := staged[key]; ok {
		return prior.Value
	}
	staged[key] = catalog.LookupValue{Kind: kind, Value: cleaned}
	return cleaned
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "1":
		return true
	default:
		return false
	}
}

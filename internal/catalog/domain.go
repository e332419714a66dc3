package catalog

import (
	"strings"
	"time"
	"unicode"
)

// Product is a catalog entry. SKU is unique case-insensitively; the check
// runs against the loaded in-memory set at write time (best effort, backed
// by a database unique index).
type Product struct {
	ID           string    `json:"id"`
	SKU          string    `json:"sku"`
	Model        string    `json:"model"`
	Brand        string    `json:"brand"`
	Category     string    `json:"category"`
	Description  string    `json:"description,omitempty"`
	ReorderPoint int       `json:"reorderPoint"`
	IsSerialized bool      `json:"isSerialized"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProductInput carries raw form values for create/update. Validation
// happens once at this boundary.
type ProductInput struct {
	SKU          string `json:"sku" validate:"required"`
	Model        string `json:"model" validate:"required"`
	Brand        string `json:"brand" validate:"required"`
	Category     string `json:"category" validate:"required"`
	Description  string `json:"description"`
	ReorderPoint int    `json:"reorderPoint" validate:"gte=0"`
	IsSerialized bool   `json:"isSerialized"`
}

// Lookup kinds. Lookups are shared, admin-extensible value lists referenced
// by multiple entities.
const (
	LookupBrands     = "brands"
	LookupCategories = "categories"
	LookupLocations  = "locations"
)

// LookupValue is one entry of a lookup list.
type LookupValue struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// NormalizeLookupValue trims and capitalizes the first letter only, leaving
// the rest of the value as typed.
func NormalizeLookupValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	runes := []rune(v)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

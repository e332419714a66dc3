package catalog

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/mirror"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// LookupRepositoryPort abstracts lookup writes.
type LookupRepositoryPort interface {
	AddValues(ctx context.Context, values []LookupValue) error
}

// LookupService owns the shared value lists (brands, categories,
// locations).
type LookupService struct {
	conn   *connectivity.State
	repo   LookupRepositoryPort
	mirror mirror.View[LookupValue]
}

// NewLookupService builds the LookupService.
func NewLookupService(conn *connectivity.State, repo LookupRepositoryPort, m mirror.View[LookupValue]) *LookupService {
	return &LookupService{conn: conn, repo: repo, mirror: m}
}

// Values returns the sorted values of one kind from the current snapshot.
func (s *LookupService) Values(ctx context.Context, kind string) []string {
	var values []string
	for _, v := range s.mirror.Items() {
		if v.Kind == kind {
			values = append(values, v.Value)
		}
	}
	collate.New(language.English, collate.IgnoreCase).SortStrings(values)
	return values
}

// All returns every lookup list keyed by kind.
func (s *LookupService) All(ctx context.Context) map[string][]string {
	return map[string][]string{
		LookupBrands:     s.Values(ctx, LookupBrands),
		LookupCategories: s.Values(ctx, LookupCategories),
		LookupLocations:  s.Values(ctx, LookupLocations),
	}
}

// Canonical returns the existing canonical casing for a value, matching
// case-insensitively, or ok=false when the value is unknown.
func (s *LookupService) Canonical(kind, value string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(value))
	for _, v := range s.mirror.Items() {
		if v.Kind == kind && strings.ToLower(v.Value) == want {
			return v.Value, true
		}
	}
	return "", false
}

// Add normalizes and appends a new value, merging into the existing list.
// Adding an already-known value (case-insensitively) is a no-op.
func (s *LookupService) Add(ctx context.Context, kind, value string) (string, error) {
	if !s.conn.Online() {
		return "", shared.OfflineError("add a lookup value")
	}
	switch kind {
	case LookupBrands, LookupCategories, LookupLocations:
	default:
		return "", &shared.ValidationError{Issues: []string{fmt.Sprintf("unknown lookup kind %q", kind)}}
	}
	cleaned := NormalizeLookupValue(value)
	if cleaned == "" {
		return "", &shared.ValidationError{Issues: []string{"lookup value must not be empty"}}
	}
	if canonical, ok := s.Canonical(kind, cleaned); ok {
		return canonical, nil
	}
	if err := s.repo.AddValues(ctx, []LookupValue{{Kind: kind, Value: cleaned}}); err != nil {
		return "", fmt.Errorf("catalog: add lookup: %w", err)
	}
	return cleaned, nil
}

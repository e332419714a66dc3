package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/shared"
)

type lookupView struct {
	items []LookupValue
}

func (v lookupView) Items() []LookupValue { return v.items }
func (v lookupView) Loading() bool        { return false }
func (v lookupView) Err() error           { return nil }

type memoryLookupRepo struct {
	added []LookupValue
}

func (r *memoryLookupRepo) AddValues(ctx context.Context, values []LookupValue) error {
	r.added = append(r.added, values...)
	return nil
}

func TestNormalizeLookupValue(t *testing.T) {
	cases := map[string]string{
		"  samsung ": "Samsung",
		"lg":         "Lg",
		"Éclair":     "Éclair",
		"":           "",
		"   ":        "",
		"tVs":        "TVs",
	}
	for in, want := range cases {
		require.Equal(t, want, NormalizeLookupValue(in), "input %q", in)
	}
}

func TestValuesSortedCaseInsensitively(t *testing.T) {
	view := lookupView{items: []LookupValue{
		{Kind: LookupBrands, Value: "samsung"},
		{Kind: LookupBrands, Value: "Apple"},
		{Kind: LookupBrands, Value: "LG"},
		{Kind: LookupCategories, Value: "Televisions"},
	}}
	svc := NewLookupService(online(), &memoryLookupRepo{}, view)

	require.Equal(t, []string{"Apple", "LG", "samsung"}, svc.Values(context.Background(), LookupBrands))
	require.Equal(t, []string{"Televisions"}, svc.Values(context.Background(), LookupCategories))
}

func TestCanonicalMatchesCaseInsensitively(t *testing.T) {
	view := lookupView{items: []LookupValue{{Kind: LookupBrands, Value: "Samsung"}}}
	svc := NewLookupService(online(), &memoryLookupRepo{}, view)

	got, ok := svc.Canonical(LookupBrands, "  sAmSuNg ")
	require.True(t, ok)
	require.Equal(t, "Samsung", got)

	_, ok = svc.Canonical(LookupCategories, "Samsung")
	require.False(t, ok, "kinds are separate namespaces")
}

func TestAddNormalizesNewValue(t *testing.T) {
	repo := &memoryLookupRepo{}
	svc := NewLookupService(online(), repo, lookupView{})

	got, err := svc.Add(context.Background(), LookupBrands, "  sony ")
	require.NoError(t, err)
	require.Equal(t, "Sony", got)
	require.Equal(t, []LookupValue{{Kind: LookupBrands, Value: "Sony"}}, repo.added)
}

func TestAddKnownValueIsNoOp(t *testing.T) {
	repo := &memoryLookupRepo{}
	view := lookupView{items: []LookupValue{{Kind: LookupBrands, Value: "Sony"}}}
	svc := NewLookupService(online(), repo, view)

	got, err := svc.Add(context.Background(), LookupBrands, "sony")
	require.NoError(t, err)
	require.Equal(t, "Sony", got, "returns the canonical casing")
	require.Empty(t, repo.added)
}

func TestAddRejectsUnknownKindAndEmptyValue(t *testing.T) {
	svc := NewLookupService(online(), &memoryLookupRepo{}, lookupView{})

	_, err := svc.Add(context.Background(), "colors", "Red")
	var issues *shared.ValidationError
	require.ErrorAs(t, err, &issues)

	_, err = svc.Add(context.Background(), LookupBrands, "   ")
	require.ErrorAs(t, err, &issues)
}

func TestAddRejectedWhileOffline(t *testing.T) {
	repo := &memoryLookupRepo{}
	svc := NewLookupService(connectivity.NewState("test"), repo, lookupView{})

	_, err := svc.Add(context.Background(), LookupBrands, "Sony")
	require.ErrorIs(t, err, shared.ErrOffline)
	require.Empty(t, repo.added)
}

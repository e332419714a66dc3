package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/shared"
)

type productView struct {
	items []Product
}

func (v productView) Items() []Product { return v.items }
func (v productView) Loading() bool    { return false }
func (v productView) Err() error       { return nil }

type memoryProductRepo struct {
	mu       sync.Mutex
	inserted []Product
	updated  []Product
	deleted  []string
}

func (r *memoryProductRepo) Insert(ctx context.Context, p Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserted = append(r.inserted, p)
	return nil
}

func (r *memoryProductRepo) Update(ctx context.Context, p Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, p)
	return nil
}

func (r *memoryProductRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	return nil
}

func online() *connectivity.State {
	conn := connectivity.NewState("test")
	conn.SetOnline(true)
	return conn
}

func validInput() ProductInput {
	return ProductInput{
		SKU:      "TV-LG-55",
		Model:    "OLED55",
		Brand:    "LG",
		Category: "Televisions",
	}
}

func TestCreateRejectedWhileOffline(t *testing.T) {
	repo := &memoryProductRepo{}
	svc := NewService(connectivity.NewState("test"), repo, productView{})

	_, err := svc.Create(context.Background(), validInput())
	require.ErrorIs(t, err, shared.ErrOffline)
	require.Empty(t, repo.inserted)
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	svc := NewService(online(), &memoryProductRepo{}, productView{})

	input := validInput()
	input.SKU = ""
	input.Brand = ""
	_, err := svc.Create(context.Background(), input)

	var issues *shared.ValidationError
	require.ErrorAs(t, err, &issues)
	require.Len(t, issues.Issues, 2)
}

func TestCreateRejectsNegativeReorderPoint(t *testing.T) {
	svc := NewService(online(), &memoryProductRepo{}, productView{})

	input := validInput()
	input.ReorderPoint = -1
	_, err := svc.Create(context.Background(), input)

	var issues *shared.ValidationError
	require.ErrorAs(t, err, &issues)
}

func TestCreateStampsIdentityAndTrims(t *testing.T) {
	repo := &memoryProductRepo{}
	svc := NewService(online(), repo, productView{})

	input := validInput()
	input.SKU = "  TV-LG-55  "
	input.Model = " OLED55 "
	p, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, "TV-LG-55", p.SKU)
	require.Equal(t, "OLED55", p.Model)
	require.False(t, p.CreatedAt.IsZero())
	require.Equal(t, p.CreatedAt, p.UpdatedAt)
	require.Len(t, repo.inserted, 1)
}

func TestCreateRejectsDuplicateSKUCaseInsensitive(t *testing.T) {
	existing := productView{items: []Product{{ID: "p1", SKU: "tv-lg-55"}}}
	repo := &memoryProductRepo{}
	svc := NewService(online(), repo, existing)

	_, err := svc.Create(context.Background(), validInput())

	var dup *shared.UniquenessError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "sku", dup.Field)
	require.Empty(t, repo.inserted)
}

func TestUpdateAllowsOwnSKU(t *testing.T) {
	existing := productView{items: []Product{
		{ID: "p1", SKU: "TV-LG-55"},
		{ID: "p2", SKU: "TV-SONY-65"},
	}}
	repo := &memoryProductRepo{}
	svc := NewService(online(), repo, existing)

	// Re-saving p1 with its own SKU is not a conflict.
	require.NoError(t, svc.Update(context.Background(), "p1", validInput()))
	require.Len(t, repo.updated, 1)

	// Taking p2's SKU is.
	input := validInput()
	input.SKU = "tv-sony-65"
	err := svc.Update(context.Background(), "p1", input)
	var dup *shared.UniquenessError
	require.ErrorAs(t, err, &dup)
}

func TestUpdateUnknownProduct(t *testing.T) {
	svc := NewService(online(), &memoryProductRepo{}, productView{})
	err := svc.Update(context.Background(), "nope", validInput())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGet(t *testing.T) {
	svc := NewService(online(), &memoryProductRepo{}, productView{items: []Product{{ID: "p1", SKU: "A"}}})

	p, err := svc.Get(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "A", p.SKU)

	_, err = svc.Get(context.Background(), "p2")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

package sales

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/sequence"
	"github.com/stockdesk/stockdesk/internal/shared"
)

type orderView struct {
	items []Order
}

func (v orderView) Items() []Order { return v.items }
func (v orderView) Loading() bool  { return false }
func (v orderView) Err() error     { return nil }

type memoryOrderRepo struct {
	mu        sync.Mutex
	inserted  []Order
	updated   []Order
	finalized []string
	deleted   []string
}

func (r *memoryOrderRepo) Insert(ctx context.Context, o Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserted = append(r.inserted, o)
	return nil
}

func (r *memoryOrderRepo) Update(ctx context.Context, o Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, o)
	return nil
}

func (r *memoryOrderRepo) Finalize(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalized = append(r.finalized, id)
	return nil
}

func (r *memoryOrderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	return nil
}

type memorySeqStore struct {
	mu       sync.Mutex
	counters map[string]sequence.Counter
}

func newMemorySeqStore() *memorySeqStore {
	return &memorySeqStore{counters: make(map[string]sequence.Counter)}
}

func (s *memorySeqStore) Mutate(ctx context.Context, name string, fn func(c *sequence.Counter) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.counters[name]
	if err := fn(&c); err != nil {
		return err
	}
	s.counters[name] = c
	return nil
}

func newTestService(repo RepositoryPort, view orderView) (*Service, *connectivity.State) {
	conn := connectivity.NewState("test")
	conn.SetOnline(true)
	conn.SignIn("clerk-1")
	return NewService(conn, repo, sequence.NewGenerator(newMemorySeqStore()), view), conn
}

func orderInput() OrderInput {
	return OrderInput{
		CustomerID:   "c1",
		CustomerName: "Ada",
		OrderDate:    time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
		Items: []LineInput{
			{ProductID: "p1", ProductName: "Widget", Quantity: 2, Price: 100},
			{ProductID: "p2", ProductName: "Gadget", Quantity: 1, Price: 33.33},
		},
	}
}

func TestCreatePricesLinesAndTotals(t *testing.T) {
	repo := &memoryOrderRepo{}
	svc, _ := newTestService(repo, orderView{})

	o, err := svc.Create(context.Background(), orderInput())
	require.NoError(t, err)

	require.Equal(t, "SO-2603-001", o.OrderNumber)
	require.Equal(t, StatusPending, o.Status)
	require.Equal(t, "clerk-1", o.CreatedBy)

	// 100 pre-tax: unit price 118.00, unit tax 18.00.
	first := o.Items[0]
	require.True(t, first.Price.Equal(decimal.RequireFromString("100")), first.Price.String())
	require.True(t, first.UnitPrice.Equal(decimal.RequireFromString("118")), first.UnitPrice.String())
	require.True(t, first.Tax.Equal(decimal.RequireFromString("18")), first.Tax.String())

	// Every line keeps price + tax == unitPrice exactly.
	for _, line := range o.Items {
		require.True(t, line.Price.Add(line.Tax).Equal(line.UnitPrice),
			"line %s: %s + %s != %s", line.ProductID, line.Price, line.Tax, line.UnitPrice)
	}

	// Totals: 2*100 + 33.33 = 233.33 pre-tax; 2*18 + 6.00 = 42.00 tax.
	require.True(t, o.TotalPreTax.Equal(decimal.RequireFromString("233.33")), o.TotalPreTax.String())
	require.True(t, o.TotalTax.Equal(decimal.RequireFromString("42")), o.TotalTax.String())
	require.True(t, o.TotalAmount.Equal(o.TotalPreTax.Add(o.TotalTax)), o.TotalAmount.String())
	require.Len(t, repo.inserted, 1)
}

func TestCreateNumbersFromOrderDatePeriod(t *testing.T) {
	svc, _ := newTestService(&memoryOrderRepo{}, orderView{})

	input := orderInput()
	input.OrderDate = time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
	o, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, "SO-2611-001", o.OrderNumber)
}

func TestCreateRejectedWhileOffline(t *testing.T) {
	repo := &memoryOrderRepo{}
	conn := connectivity.NewState("test")
	svc := NewService(conn, repo, sequence.NewGenerator(newMemorySeqStore()), orderView{})

	_, err := svc.Create(context.Background(), orderInput())
	require.ErrorIs(t, err, shared.ErrOffline)
	require.Empty(t, repo.inserted)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(&memoryOrderRepo{}, orderView{})

	var issues *shared.ValidationError

	input := orderInput()
	input.Items = nil
	_, err := svc.Create(context.Background(), input)
	require.ErrorAs(t, err, &issues)

	input = orderInput()
	input.Items[0].Quantity = 0
	_, err = svc.Create(context.Background(), input)
	require.ErrorAs(t, err, &issues)

	input = orderInput()
	input.Items[0].Price = -1
	_, err = svc.Create(context.Background(), input)
	require.ErrorAs(t, err, &issues)
}

func TestUpdateKeepsNumberStatusAndAudit(t *testing.T) {
	created := time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)
	existing := Order{
		ID: "o1", OrderNumber: "SO-2602-004", Status: StatusPending,
		CreatedAt: created, CreatedBy: "clerk-9",
	}
	repo := &memoryOrderRepo{}
	svc, _ := newTestService(repo, orderView{items: []Order{existing}})

	require.NoError(t, svc.Update(context.Background(), "o1", orderInput()))
	require.Len(t, repo.updated, 1)

	got := repo.updated[0]
	require.Equal(t, "SO-2602-004", got.OrderNumber)
	require.Equal(t, StatusPending, got.Status)
	require.Equal(t, created, got.CreatedAt)
	require.Equal(t, "clerk-9", got.CreatedBy)
	require.Equal(t, "Ada", got.CustomerName)
}

func TestUpdateFinalizedOrderRejected(t *testing.T) {
	repo := &memoryOrderRepo{}
	svc, _ := newTestService(repo, orderView{items: []Order{
		{ID: "o1", OrderNumber: "SO-2602-004", Status: StatusFinalized},
	}})

	err := svc.Update(context.Background(), "o1", orderInput())
	require.ErrorIs(t, err, shared.ErrFinalized)
	require.Empty(t, repo.updated)
}

func TestUpdateUnknownOrder(t *testing.T) {
	svc, _ := newTestService(&memoryOrderRepo{}, orderView{})
	err := svc.Update(context.Background(), "nope", orderInput())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestFinalizeAndDeleteAreOnlineGated(t *testing.T) {
	repo := &memoryOrderRepo{}
	conn := connectivity.NewState("test")
	svc := NewService(conn, repo, sequence.NewGenerator(newMemorySeqStore()), orderView{})

	require.ErrorIs(t, svc.Finalize(context.Background(), "o1"), shared.ErrOffline)
	require.ErrorIs(t, svc.Delete(context.Background(), "o1"), shared.ErrOffline)

	conn.SetOnline(true)
	require.NoError(t, svc.Finalize(context.Background(), "o1"))
	require.NoError(t, svc.Delete(context.Background(), "o1"))
	require.Equal(t, []string{"o1"}, repo.finalized)
	require.Equal(t, []string{"o1"}, repo.deleted)
}

package partners

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/sequence"
	"github.com/stockdesk/stockdesk/internal/shared"
)

type partyView struct {
	items []Party
}

func (v partyView) Items() []Party { return v.items }
func (v partyView) Loading() bool  { return false }
func (v partyView) Err() error     { return nil }

type memoryPartyRepo struct {
	mu       sync.Mutex
	inserted []Party
	updated  []Party
	kinds    []Kind
}

func (r *memoryPartyRepo) Insert(ctx context.Context, kind Kind, p Party) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserted = append(r.inserted, p)
	r.kinds = append(r.kinds, kind)
	return nil
}

func (r *memoryPartyRepo) Update(ctx context.Context, kind Kind, p Party) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, p)
	return nil
}

func (r *memoryPartyRepo) Delete(ctx context.Context, kind Kind, id string) error {
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

func online() *connectivity.State {
	conn := connectivity.NewState("test")
	conn.SetOnline(true)
	return conn
}

func TestCreateAssignsSequentialDisplayIDs(t *testing.T) {
	repo := &memoryPartyRepo{}
	svc := NewCustomerService(online(), repo, sequence.NewGenerator(newMemorySeqStore()), partyView{})

	first, err := svc.Create(context.Background(), PartyInput{Name: "Ada"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), PartyInput{Name: "Grace"})
	require.NoError(t, err)

	require.Equal(t, "CUS-001", first.DisplayID)
	require.Equal(t, "CUS-002", second.DisplayID)
	require.Equal(t, []Kind{KindCustomer, KindCustomer}, repo.kinds)
}

func TestCustomerAndSupplierCountersAreSeparate(t *testing.T) {
	store := newMemorySeqStore()
	gen := sequence.NewGenerator(store)
	repo := &memoryPartyRepo{}
	customers := NewCustomerService(online(), repo, gen, partyView{})
	suppliers := NewSupplierService(online(), repo, gen, partyView{})

	c, err := customers.Create(context.Background(), PartyInput{Name: "Ada"})
	require.NoError(t, err)
	s, err := suppliers.Create(context.Background(), PartyInput{Name: "Acme Ltd"})
	require.NoError(t, err)

	require.Equal(t, "CUS-001", c.DisplayID)
	require.Equal(t, "SUP-001", s.DisplayID)
}

func TestUpdateKeepsDisplayID(t *testing.T) {
	existing := Party{ID: "c1", DisplayID: "CUS-007", Name: "Ada"}
	repo := &memoryPartyRepo{}
	svc := NewCustomerService(online(), repo, sequence.NewGenerator(newMemorySeqStore()), partyView{items: []Party{existing}})

	err := svc.Update(context.Background(), "c1", PartyInput{Name: "Ada Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)
	require.Len(t, repo.updated, 1)
	require.Equal(t, "CUS-007", repo.updated[0].DisplayID, "display id is immutable")
	require.Equal(t, "Ada Lovelace", repo.updated[0].Name)
}

func TestCreateRejectedWhileOffline(t *testing.T) {
	repo := &memoryPartyRepo{}
	svc := NewCustomerService(connectivity.NewState("test"), repo, sequence.NewGenerator(newMemorySeqStore()), partyView{})

	_, err := svc.Create(context.Background(), PartyInput{Name: "Ada"})
	require.ErrorIs(t, err, shared.ErrOffline)
	require.Empty(t, repo.inserted)
}

func TestCreateValidation(t *testing.T) {
	svc := NewCustomerService(online(), &memoryPartyRepo{}, sequence.NewGenerator(newMemorySeqStore()), partyView{})

	var issues *shared.ValidationError

	_, err := svc.Create(context.Background(), PartyInput{})
	require.ErrorAs(t, err, &issues)

	_, err = svc.Create(context.Background(), PartyInput{Name: "Ada", Email: "not-an-email"})
	require.ErrorAs(t, err, &issues)
}

func TestUpdateUnknownParty(t *testing.T) {
	svc := NewCustomerService(online(), &memoryPartyRepo{}, sequence.NewGenerator(newMemorySeqStore()), partyView{})
	err := svc.Update(context.Background(), "nope", PartyInput{Name: "Ada"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

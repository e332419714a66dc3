package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/shared"
)

type staticView struct {
	items []Transaction
}

func (v staticView) Items() []Transaction { return v.items }
func (v staticView) Loading() bool        { return false }
func (v staticView) Err() error           { return nil }

type memoryRepo struct {
	mu       sync.Mutex
	inserted []Transaction
}

func (r *memoryRepo) Insert(ctx context.Context, tx Transaction) error {
	return r.InsertMany(ctx, []Transaction{tx})
}

func (r *memoryRepo) InsertMany(ctx context.Context, txs []Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserted = append(r.inserted, txs...)
	return nil
}

func onlineState(userID string) *connectivity.State {
	conn := connectivity.NewState("test")
	conn.SetOnline(true)
	conn.SignIn(userID)
	return conn
}

func TestRecordRejectedWhileOffline(t *testing.T) {
	conn := connectivity.NewState("test")
	repo := &memoryRepo{}
	svc := NewService(conn, repo, staticView{})

	_, err := svc.Record(context.Background(), RecordInput{
		ProductID: "p1", LocationID: "main", Type: TransactionTypeIn, Quantity: 1,
	})
	require.ErrorIs(t, err, shared.ErrOffline)
	require.Empty(t, repo.inserted, "nothing may be written while offline")
}

func TestRecordStampsIdentityAndTimestamp(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(onlineState("user-7"), repo, staticView{})

	tx, err := svc.Record(context.Background(), RecordInput{
		ProductID: "p1", LocationID: "main", Type: TransactionTypeIn, Quantity: 5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, tx.ID)
	require.Equal(t, "user-7", tx.UserID)
	require.False(t, tx.Timestamp.IsZero())
	require.Len(t, repo.inserted, 1)
}

func TestRecordValidation(t *testing.T) {
	svc := NewService(onlineState("u"), &memoryRepo{}, staticView{})

	cases := []struct {
		name  string
		input RecordInput
		want  error
	}{
		{"negative quantity", RecordInput{ProductID: "p", LocationID: "l", Type: TransactionTypeIn, Quantity: -1}, ErrInvalidQuantity},
		{"missing product", RecordInput{LocationID: "l", Type: TransactionTypeIn, Quantity: 1}, ErrInvalidMovement},
		{"missing location", RecordInput{ProductID: "p", Type: TransactionTypeIn, Quantity: 1}, ErrInvalidMovement},
		{"destination on IN", RecordInput{ProductID: "p", LocationID: "l", DestinationLocationID: "d", Type: TransactionTypeIn, Quantity: 1}, ErrInvalidMovement},
		{"transfer without destination", RecordInput{ProductID: "p", LocationID: "l", Type: TransactionTypeTransfer, Quantity: 1}, ErrInvalidMovement},
		{"transfer to same location", RecordInput{ProductID: "p", LocationID: "l", DestinationLocationID: "l", Type: TransactionTypeTransfer, Quantity: 1}, ErrInvalidMovement},
		{"unknown type", RecordInput{ProductID: "p", LocationID: "l", Type: "WAT", Quantity: 1}, ErrInvalidMovement},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tc.input)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRecordZeroQuantityAllowed(t *testing.T) {
	svc := NewService(onlineState("u"), &memoryRepo{}, staticView{})
	_, err := svc.Record(context.Background(), RecordInput{
		ProductID: "p", LocationID: "l", Type: TransactionTypeOut, Quantity: 0,
	})
	require.NoError(t, err)
}

package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/mirror"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// RepositoryPort abstracts the remote store for the service.
type RepositoryPort interface {
	Insert(ctx context.Context, tx Transaction) error
	InsertMany(ctx context.Context, txs []Transaction) error
}

// Service records inventory movements and serves the synced transaction
// list. Creation is online-only; the next collection snapshot, not an
// optimistic local write, updates in-memory state and cache.
type Service struct {
	conn   *connectivity.State
	repo   RepositoryPort
	mirror mirror.View[Transaction]
}

// NewService builds the Service.
func NewService(conn *connectivity.State, repo RepositoryPort, m mirror.View[Transaction]) *Service {
	return &Service{conn: conn, repo: repo, mirror: m}
}

// List returns the current transaction snapshot (live or cached).
func (s *Service) List(ctx context.Context) []Transaction {
	return s.mirror.Items()
}

// Loading reports the sync component's loading flag.
func (s *Service) Loading() bool { return s.mirror.Loading() }

// SyncErr reports the sync component's sticky subscription error.
func (s *Service) SyncErr() error { return s.mirror.Err() }

// Record validates and writes one movement to the remote store.
func (s *Service) Record(ctx context.Context, input RecordInput) (Transaction, error) {
	if !s.conn.Online() {
		return Transaction{}, shared.OfflineError("record inventory transaction")
	}
	tx, err := s.build(input)
	if err != nil {
		return Transaction{}, err
	}
	if err := s.repo.Insert(ctx, tx); err != nil {
		return Transaction{}, fmt.Errorf("inventory: record: %w", err)
	}
	return tx, nil
}

func (s *Service) build(input RecordInput) (Transaction, error) {
	if input.Quantity < 0 {
		return Transaction{}, ErrInvalidQuantity
	}
	if input.ProductID == "" || input.LocationID == "" {
		return Transaction{}, fmt.Errorf("%w: product and location required", ErrInvalidMovement)
	}
	switch input.Type {
	case TransactionTypeIn, TransactionTypeOut:
		if input.DestinationLocationID != "" {
			return Transaction{}, fmt.Errorf("%w: destination only valid for transfers", ErrInvalidMovement)
		}
	case TransactionTypeTransfer:
		if input.DestinationLocationID == "" {
			return Transaction{}, fmt.Errorf("%w: transfer requires a destination", ErrInvalidMovement)
		}
		if input.DestinationLocationID == input.LocationID {
			return Transaction{}, fmt.Errorf("%w: source and destination must differ", ErrInvalidMovement)
		}
	default:
		return Transaction{}, fmt.Errorf("%w: unknown type %q", ErrInvalidMovement, input.Type)
	}
	return Transaction{
		ID:                    uuid.NewString(),
		ProductID:             input.ProductID,
		LocationID:            input.LocationID,
		DestinationLocationID: input.DestinationLocationID,
		Type:                  input.Type,
		Quantity:              input.Quantity,
		Timestamp:             time.Now().UTC(),
		UserID:                s.conn.UserID(),
		ReferenceNumber:       input.ReferenceNumber,
	}, nil
}

package receiving

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/mirror"
	"github.com/stockdesk/stockdesk/internal/sequence"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// RepositoryPort abstracts receive writes to the remote store.
type RepositoryPort interface {
	InsertBatch(ctx context.Context, b Batch, items []PendingReceivableItem) error
}

// Service owns stock receiving.
type Service struct {
	conn     *connectivity.State
	repo     RepositoryPort
	seq      *sequence.Generator
	mirror   mirror.View[PendingReceivableItem]
	validate *validator.Validate
}

// NewService constructs the receiving service.
func NewService(conn *connectivity.State, repo RepositoryPort, seq *sequence.Generator, m mirror.View[PendingReceivableItem]) *Service {
	return &Service{
		conn:     conn,
		repo:     repo,
		seq:      seq,
		mirror:   m,
		validate: validator.New(),
	}
}

// Pool returns the unconsumed receivable items (live or cached).
func (s *Service) Pool(ctx context.Context) []PendingReceivableItem {
	var pool []PendingReceivableItem
	for _, item := range s.mirror.Items() {
		if !item.IsConsumed {
			pool = append(pool, item)
		}
	}
	return pool
}

// All returns every receivable item, consumed ones included.
func (s *Service) All(ctx context.Context) []PendingReceivableItem {
	return s.mirror.Items()
}

// Loading reports the sync component's loading flag.
func (s *Service) Loading() bool { return s.mirror.Loading() }

// SyncErr reports the sticky subscription error, if any.
func (s *Service) SyncErr() error { return s.mirror.Err() }

// Receive numbers a batch (BI-YYMM-NNN, period from the received date),
// expands its lines into receivable items and writes everything at once.
func (s *Service) Receive(ctx context.Context, input BatchInput) (Batch, error) {
	if !s.conn.Online() {
		return Batch{}, shared.OfflineError("receive stock")
	}
	if err := s.validateInput(input); err != nil {
		return Batch{}, err
	}
	number, err := s.seq.Next(ctx, sequence.ReceiveBatch, input.ReceivedDate)
	if err != nil {
		return Batch{}, err
	}
	b := Batch{
		ID:           uuid.NewString(),
		BatchNumber:  number,
		SupplierID:   input.SupplierID,
		SupplierName: input.SupplierName,
		ReceivedDate: input.ReceivedDate.UTC(),
		CreatedAt:    time.Now().UTC(),
		CreatedBy:    s.conn.UserID(),
	}
	items := expandLines(b, input.Lines)
	if err := s.repo.InsertBatch(ctx, b, items); err != nil {
		return Batch{}, fmt.Errorf("receiving: insert batch: %w", err)
	}
	return b, nil
}

// expandLines fans each line out into assignable items: one per serial for
// serialized lines, one carrying the full quantity otherwise.
func expandLines(b Batch, lines []LineInput) []PendingReceivableItem {
	var items []PendingReceivableItem
	for _, line := range lines {
		if line.IsSerialized {
			for _, serial := range line.SerialNumbers {
				items = append(items, PendingReceivableItem{
					Key:          uuid.NewString(),
					BatchID:      b.ID,
					BatchNumber:  b.BatchNumber,
					ProductID:    line.ProductID,
					ProductName:  line.ProductName,
					Quantity:     1,
					IsSerialized: true,
					SerialNumber: strings.TrimSpace(serial),
				})
			}
			continue
		}
		items = append(items, PendingReceivableItem{
			Key:         uuid.NewString(),
			BatchID:     b.ID,
			BatchNumber: b.BatchNumber,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
		})
	}
	return items
}

func (s *Service) validateInput(input BatchInput) error {
	issues := &shared.ValidationError{}
	if err := s.validate.Struct(input); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			issues.Add("field %s failed %s validation", fieldErr.Field(), fieldErr.Tag())
		}
	}
	for i, line := range input.Lines {
		if line.IsSerialized {
			if len(line.SerialNumbers) != line.Quantity {
				issues.Add("line %d: serialized items need exactly one serial per unit (%d serials for quantity %d)", i+1, len(line.SerialNumbers), line.Quantity)
			}
			seen := make(map[string]bool, len(line.SerialNumbers))
			for _, serial := range line.SerialNumbers {
				serial = strings.TrimSpace(serial)
				if serial == "" {
					issues.Add("line %d: blank serial number", i+1)
					continue
				}
				if seen[serial] {
					issues.Add("line %d: duplicate serial number %q", i+1, serial)
				}
				seen[serial] = true
			}
		} else if len(line.SerialNumbers) > 0 {
			issues.Add("line %d: serial numbers given for a non-serialized item", i+1)
		}
	}
	if issues.Empty() {
		return nil
	}
	return issues
}

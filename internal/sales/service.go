package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/mirror"
	"github.com/stockdesk/stockdesk/internal/pricing"
	"github.com/stockdesk/stockdesk/internal/sequence"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// RepositoryPort abstracts order writes to the remote store.
type RepositoryPort interface {
	Insert(ctx context.Context, o Order) error
	// Update rewrites a pending order. Returns shared.ErrFinalized when
	// the stored order is no longer pending.
	Update(ctx context.Context, o Order) error
	// Finalize flips a pending order to FINALIZED.
	Finalize(ctx context.Context, id string) error
	// Delete removes a pending order.
	Delete(ctx context.Context, id string) error
}

// Service owns the sales order lifecycle.
type Service struct {
	conn     *connectivity.State
	repo     RepositoryPort
	seq      *sequence.Generator
	mirror   mirror.View[Order]
	validate *validator.Validate
}

// NewService constructs the sales service.
func NewService(conn *connectivity.State, repo RepositoryPort, seq *sequence.Generator, m mirror.View[Order]) *Service {
	return &Service{
		conn:     conn,
		repo:     repo,
		seq:      seq,
		mirror:   m,
		validate: validator.New(),
	}
}

// List returns the current order snapshot (live or cached).
func (s *Service) List(ctx context.Context) []Order {
	return s.mirror.Items()
}

// Loading reports the sync component's loading flag.
func (s *Service) Loading() bool { return s.mirror.Loading() }

// SyncErr reports the sticky subscription error, if any.
func (s *Service) SyncErr() error { return s.mirror.Err() }

// Get finds an order by id in the loaded set.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	for _, o := range s.mirror.Items() {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, fmt.Errorf("sales order %s: %w", id, shared.ErrNotFound)
}

// Create numbers a new order (SO-YYMM-NNN, period taken from the order
// date), prices its lines and writes it as PENDING.
func (s *Service) Create(ctx context.Context, input OrderInput) (Order, error) {
	if !s.conn.Online() {
		return Order{}, shared.OfflineError("create a sales order")
	}
	if err := s.validateInput(input); err != nil {
		return Order{}, err
	}
	number, err := s.seq.Next(ctx, sequence.SalesOrder, input.OrderDate)
	if err != nil {
		return Order{}, err
	}
	o := buildOrder(input)
	o.ID = uuid.NewString()
	o.OrderNumber = number
	o.Status = StatusPending
	o.CreatedAt = time.Now().UTC()
	o.CreatedBy = s.conn.UserID()
	if err := s.repo.Insert(ctx, o); err != nil {
		return Order{}, fmt.Errorf("sales: create order: %w", err)
	}
	return o, nil
}

// Update reprices and rewrites a pending order. The order number, status
// and audit fields never change here.
func (s *Service) Update(ctx context.Context, id string, input OrderInput) error {
	if !s.conn.Online() {
		return shared.OfflineError("edit a sales order")
	}
	if err := s.validateInput(input); err != nil {
		return err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == StatusFinalized {
		return fmt.Errorf("sales order %s: %w", current.OrderNumber, shared.ErrFinalized)
	}
	next := buildOrder(input)
	next.ID = current.ID
	next.OrderNumber = current.OrderNumber
	next.Status = current.Status
	next.CreatedAt = current.CreatedAt
	next.CreatedBy = current.CreatedBy
	if err := s.repo.Update(ctx, next); err != nil {
		return fmt.Errorf("sales: update order: %w", err)
	}
	return nil
}

// Finalize moves an order from PENDING to FINALIZED. Finalized orders can
// never be edited or deleted again.
func (s *Service) Finalize(ctx context.Context, id string) error {
	if !s.conn.Online() {
		return shared.OfflineError("finalize a sales order")
	}
	if err := s.repo.Finalize(ctx, id); err != nil {
		return fmt.Errorf("sales: finalize order: %w", err)
	}
	return nil
}

// Delete removes a pending order.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !s.conn.Online() {
		return shared.OfflineError("delete a sales order")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("sales: delete order: %w", err)
	}
	return nil
}

// buildOrder prices every line and sums the totals.
func buildOrder(input OrderInput) Order {
	o := Order{
		CustomerID:   input.CustomerID,
		CustomerName: input.CustomerName,
		OrderDate:    input.OrderDate.UTC(),
		Items:        make([]LineItem, 0, len(input.Items)),
	}
	for _, line := range input.Items {
		preTax := pricing.Round2(decimal.NewFromFloat(line.Price))
		unitPrice, unitTax := pricing.UnitAmounts(preTax)
		qty := decimal.NewFromInt(int64(line.Quantity))
		o.Items = append(o.Items, LineItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Price:       preTax,
			UnitPrice:   unitPrice,
			Tax:         unitTax,
		})
		o.TotalPreTax = o.TotalPreTax.Add(preTax.Mul(qty))
		o.TotalTax = o.TotalTax.Add(unitTax.Mul(qty))
		o.TotalAmount = o.TotalAmount.Add(unitPrice.Mul(qty))
	}
	o.TotalPreTax = pricing.Round2(o.TotalPreTax)
	o.TotalTax = pricing.Round2(o.TotalTax)
	o.TotalAmount = pricing.Round2(o.TotalAmount)
	return o
}

func (s *Service) validateInput(input OrderInput) error {
	if err := s.validate.Struct(input); err != nil {
		issues := &shared.ValidationError{}
		for _, fieldErr := range err.(validator.ValidationErrors) {
			issues.Add("field %s failed %s validation", fieldErr.Field(), fieldErr.Tag())
		}
		return issues
	}
	return nil
}

// Package purchasing manages purchase invoices and their reconciliation
// against received stock. Invoices mirror sales orders (periodic PI-
// numbers, pending/finalized lifecycle); the workbench holds the in-memory
// assignment proposal that finalize commits atomically.
package purchasing

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

// RepositoryPort abstracts invoice writes to the remote store.
type RepositoryPort interface {
	Insert(ctx context.Context, inv Invoice) error
	// Update rewrites a pending invoice. Returns shared.ErrFinalized when
	// the stored invoice is no longer pending.
	Update(ctx context.Context, inv Invoice) error
	// Delete removes a pending invoice.
	Delete(ctx context.Context, id string) error
}

// Service owns the purchase invoice lifecycle.
type Service struct {
	conn     *connectivity.State
	repo     RepositoryPort
	seq      *sequence.Generator
	mirror   mirror.View[Invoice]
	validate *validator.Validate
}

// NewService constructs the purchasing service.
func NewService(conn *connectivity.State, repo RepositoryPort, seq *sequence.Generator, m mirror.View[Invoice]) *Service {
	return &Service{
		conn:     conn,
		repo:     repo,
		seq:      seq,
		mirror:   m,
		validate: validator.New(),
	}
}

// List returns the current invoice snapshot (live or cached).
func (s *Service) List(ctx context.Context) []Invoice {
	return s.mirror.Items()
}

// Loading reports the sync component's loading flag.
func (s *Service) Loading() bool { return s.mirror.Loading() }

// SyncErr reports the sticky subscription error, if any.
func (s *Service) SyncErr() error { return s.mirror.Err() }

// Get finds an invoice by id in the loaded set.
func (s *Service) Get(ctx context.Context, id string) (Invoice, error) {
	for _, inv := range s.mirror.Items() {
		if inv.ID == id {
			return inv, nil
		}
	}
	return Invoice{}, fmt.Errorf("purchase invoice %s: %w", id, shared.ErrNotFound)
}

// Create numbers a new invoice (PI-YYMM-NNN, period taken from the invoice
// date), prices its lines and writes it as PENDING.
func (s *Service) Create(ctx context.Context, input InvoiceInput) (Invoice, error) {
	if !s.conn.Online() {
		return Invoice{}, shared.OfflineError("create a purchase invoice")
	}
	if err := s.validateInput(input); err != nil {
		return Invoice{}, err
	}
	number, err := s.seq.Next(ctx, sequence.PurchaseInvoice, input.InvoiceDate)
	if err != nil {
		return Invoice{}, err
	}
	inv := buildInvoice(input)
	inv.ID = uuid.NewString()
	inv.InvoiceNumber = number
	inv.Status = StatusPending
	inv.CreatedAt = time.Now().UTC()
	inv.CreatedBy = s.conn.UserID()
	if err := s.repo.Insert(ctx, inv); err != nil {
		return Invoice{}, fmt.Errorf("purchasing: create invoice: %w", err)
	}
	return inv, nil
}

// Update reprices and rewrites a pending invoice. The invoice number,
// status, received quantities and audit fields never change here.
func (s *Service) Update(ctx context.Context, id string, input InvoiceInput) error {
	if !s.conn.Online() {
		return shared.OfflineError("edit a purchase invoice")
	}
	if err := s.validateInput(input); err != nil {
		return err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == StatusFinalized {
		return fmt.Errorf("purchase invoice %s: %w", current.InvoiceNumber, shared.ErrFinalized)
	}
	next := buildInvoice(input)
	next.ID = current.ID
	next.InvoiceNumber = current.InvoiceNumber
	next.Status = current.Status
	next.CreatedAt = current.CreatedAt
	next.CreatedBy = current.CreatedBy
	if err := s.repo.Update(ctx, next); err != nil {
		return fmt.Errorf("purchasing: update invoice: %w", err)
	}
	return nil
}

// Delete removes a pending invoice.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !s.conn.Online() {
		return shared.OfflineError("delete a purchase invoice")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("purchasing: delete invoice: %w", err)
	}
	return nil
}

// buildInvoice prices every line and sums the totals.
func buildInvoice(input InvoiceInput) Invoice {
	inv := Invoice{
		SupplierID:   input.SupplierID,
		SupplierName: input.SupplierName,
		InvoiceDate:  input.InvoiceDate.UTC(),
		Items:        make([]LineItem, 0, len(input.Items)),
	}
	for _, line := range input.Items {
		preTax := pricing.Round2(decimal.NewFromFloat(line.Price))
		unitPrice, unitTax := pricing.UnitAmounts(preTax)
		qty := decimal.NewFromInt(int64(line.Quantity))
		inv.Items = append(inv.Items, LineItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Price:       preTax,
			UnitPrice:   unitPrice,
			Tax:         unitTax,
		})
		inv.TotalPreTax = inv.TotalPreTax.Add(preTax.Mul(qty))
		inv.TotalTax = inv.TotalTax.Add(unitTax.Mul(qty))
		inv.TotalAmount = inv.TotalAmount.Add(unitPrice.Mul(qty))
	}
	inv.TotalPreTax = pricing.Round2(inv.TotalPreTax)
	inv.TotalTax = pricing.Round2(inv.TotalTax)
	inv.TotalAmount = pricing.Round2(inv.TotalAmount)
	return inv
}

func (s *Service) validateInput(input InvoiceInput) error {
	if err := s.validate.Struct(input); err != nil {
		issues := &shared.ValidationError{}
		for _, fieldErr := range err.(validator.ValidationErrors) {
			issues.Add("field %s failed %s validation", fieldErr.Field(), fieldErr.Tag())
		}
		return issues
	}
	return nil
}

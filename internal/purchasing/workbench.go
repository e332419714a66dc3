package purchasing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/inventory"
	"github.com/stockdesk/stockdesk/internal/pricing"
	"github.com/stockdesk/stockdesk/internal/receiving"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// FinalizeStore commits a reconciliation in one database transaction:
// invoice lines with received quantities and the status flip, the stock-in
// records, and consumption of the assigned receivables. All or nothing.
type FinalizeStore interface {
	FinalizeReconciliation(ctx context.Context, invoiceID string, lines []LineItem, stockIn []inventory.Transaction, consumedKeys []string) error
}

// LineStatus is the reconciliation state of one invoice line.
type LineStatus struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Expected    int    `json:"expected"`
	Reconciled  int    `json:"reconciled"`
	Satisfied   bool   `json:"satisfied"`
}

// Workbench holds per-invoice assignment proposals. A proposal lives only
// in memory until finalize commits it; unassign and process restarts simply
// drop it, with no remote effect.
type Workbench struct {
	conn     *connectivity.State
	invoices *Service
	pool     *receiving.Service
	store    FinalizeStore
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]map[string]receiving.PendingReceivableItem
}

// NewWorkbench constructs the workbench.
func NewWorkbench(conn *connectivity.State, invoices *Service, pool *receiving.Service, store FinalizeStore, logger *slog.Logger) *Workbench {
	return &Workbench{
		conn:     conn,
		invoices: invoices,
		pool:     pool,
		store:    store,
		logger:   logger,
		sessions: make(map[string]map[string]receiving.PendingReceivableItem),
	}
}

// Assign proposes one received item against an invoice line. The item must
// match the target line's product exactly and can be held only once.
func (w *Workbench) Assign(ctx context.Context, invoiceID, itemKey, targetProductID string) error {
	inv, err := w.invoices.Get(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv.Status == StatusFinalized {
		return fmt.Errorf("purchase invoice %s: %w", inv.InvoiceNumber, shared.ErrFinalized)
	}
	if !lineExists(inv, targetProductID) {
		issues := &shared.ValidationError{}
		issues.Add("invoice %s has no line for product %s", inv.InvoiceNumber, targetProductID)
		return issues
	}
	item, err := w.poolItem(ctx, itemKey)
	if err != nil {
		return err
	}
	if item.ProductID != targetProductID {
		issues := &shared.ValidationError{}
		issues.Add("received item %s is product %s, not %s", itemKey, item.ProductID, targetProductID)
		return issues
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	session := w.sessions[invoiceID]
	if session == nil {
		session = make(map[string]receiving.PendingReceivableItem)
		w.sessions[invoiceID] = session
	}
	if _, held := session[itemKey]; held {
		issues := &shared.ValidationError{}
		issues.Add("received item %s is already assigned", itemKey)
		return issues
	}
	session[itemKey] = item
	return nil
}

// Unassign returns a held item to the pool. Purely in-memory.
func (w *Workbench) Unassign(ctx context.Context, invoiceID, itemKey string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	session := w.sessions[invoiceID]
	if _, held := session[itemKey]; !held {
		return fmt.Errorf("assignment %s on invoice %s: %w", itemKey, invoiceID, shared.ErrNotFound)
	}
	delete(session, itemKey)
	return nil
}

// Status reports per-line satisfaction against the latest saved quantities.
func (w *Workbench) Status(ctx context.Context, invoiceID string) ([]LineStatus, error) {
	inv, err := w.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	reconciled := w.reconciledByProduct(invoiceID)
	statuses := make([]LineStatus, 0, len(inv.Items))
	for _, line := range inv.Items {
		got := reconciled[line.ProductID]
		statuses = append(statuses, LineStatus{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Expected:    line.Quantity,
			Reconciled:  got,
			Satisfied:   got == line.Quantity,
		})
	}
	return statuses, nil
}

// SaveDraft persists edited line quantities without touching assignments.
// Satisfaction is recomputed against the saved quantities from then on.
func (w *Workbench) SaveDraft(ctx context.Context, invoiceID string, quantities map[string]int) error {
	if !w.conn.Online() {
		return shared.OfflineError("save a reconciliation draft")
	}
	inv, err := w.invoices.Get(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv.Status == StatusFinalized {
		return fmt.Errorf("purchase invoice %s: %w", inv.InvoiceNumber, shared.ErrFinalized)
	}
	issues := &shared.ValidationError{}
	for productID, qty := range quantities {
		if !lineExists(inv, productID) {
			issues.Add("invoice %s has no line for product %s", inv.InvoiceNumber, productID)
		}
		if qty <= 0 {
			issues.Add("quantity for product %s must be positive", productID)
		}
	}
	if !issues.Empty() {
		return issues
	}
	for i, line := range inv.Items {
		if qty, ok := quantities[line.ProductID]; ok {
			inv.Items[i].Quantity = qty
		}
	}
	repriceTotals(&inv)
	if err := w.invoices.repo.Update(ctx, inv); err != nil {
		return fmt.Errorf("purchasing: save draft: %w", err)
	}
	return nil
}

// Finalize commits the proposal. Every line must be exactly satisfied and
// at least one item assigned; otherwise a ReconciliationError reports each
// shortfall and nothing is written. On success each assigned item becomes
// one stock-in transaction at the given location, the assigned receivables
// are consumed and the invoice flips to FINALIZED, all in one transaction.
func (w *Workbench) Finalize(ctx context.Context, invoiceID, locationID string) error {
	if !w.conn.Online() {
		return shared.OfflineError("finalize a reconciliation")
	}
	if locationID == "" {
		issues := &shared.ValidationError{}
		issues.Add("a receiving location is required")
		return issues
	}
	inv, err := w.invoices.Get(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv.Status == StatusFinalized {
		return fmt.Errorf("purchase invoice %s: %w", inv.InvoiceNumber, shared.ErrFinalized)
	}

	w.mu.Lock()
	session := w.sessions[invoiceID]
	held := make([]receiving.PendingReceivableItem, 0, len(session))
	for _, item := range session {
		held = append(held, item)
	}
	w.mu.Unlock()

	reconciled := make(map[string]int, len(inv.Items))
	for _, item := range held {
		reconciled[item.ProductID] += item.Quantity
	}
	var shortfalls []LineShortfall
	for _, line := range inv.Items {
		if got := reconciled[line.ProductID]; got != line.Quantity {
			shortfalls = append(shortfalls, LineShortfall{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Expected:    line.Quantity,
				Reconciled:  got,
			})
		}
	}
	if len(shortfalls) > 0 || len(held) == 0 {
		return &ReconciliationError{Shortfalls: shortfalls}
	}

	now := time.Now().UTC()
	stockIn := make([]inventory.Transaction, 0, len(held))
	keys := make([]string, 0, len(held))
	for _, item := range held {
		stockIn = append(stockIn, inventory.Transaction{
			ID:              uuid.NewString(),
			ProductID:       item.ProductID,
			LocationID:      locationID,
			Type:            inventory.TransactionTypeIn,
			Quantity:        item.Quantity,
			Timestamp:       now,
			UserID:          w.conn.UserID(),
			ReferenceNumber: inv.InvoiceNumber,
		})
		keys = append(keys, item.Key)
	}
	lines := make([]LineItem, len(inv.Items))
	copy(lines, inv.Items)
	for i := range lines {
		lines[i].ReceivedQty = reconciled[lines[i].ProductID]
	}

	if err := w.store.FinalizeReconciliation(ctx, invoiceID, lines, stockIn, keys); err != nil {
		return fmt.Errorf("purchasing: finalize reconciliation: %w", err)
	}
	w.mu.Lock()
	delete(w.sessions, invoiceID)
	w.mu.Unlock()
	w.logger.Info("reconciliation finalized",
		"invoice", inv.InvoiceNumber, "items", len(held), "location", locationID)
	return nil
}

func (w *Workbench) poolItem(ctx context.Context, key string) (receiving.PendingReceivableItem, error) {
	for _, item := range w.pool.Pool(ctx) {
		if item.Key == key {
			return item, nil
		}
	}
	return receiving.PendingReceivableItem{}, fmt.Errorf("received item %s: %w", key, shared.ErrNotFound)
}

func (w *Workbench) reconciledByProduct(invoiceID string) map[string]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	totals := make(map[string]int)
	for _, item := range w.sessions[invoiceID] {
		totals[item.ProductID] += item.Quantity
	}
	return totals
}

func lineExists(inv Invoice, productID string) bool {
	for _, line := range inv.Items {
		if line.ProductID == productID {
			return true
		}
	}
	return false
}

// repriceTotals resums the invoice totals from its stored per-line amounts.
func repriceTotals(inv *Invoice) {
	var preTax, tax, total decimal.Decimal
	for _, line := range inv.Items {
		qty := decimal.NewFromInt(int64(line.Quantity))
		preTax = preTax.Add(line.Price.Mul(qty))
		tax = tax.Add(line.Tax.Mul(qty))
		total = total.Add(line.UnitPrice.Mul(qty))
	}
	inv.TotalPreTax = pricing.Round2(preTax)
	inv.TotalTax = pricing.Round2(tax)
	inv.TotalAmount = pricing.Round2(total)
}

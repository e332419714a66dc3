package purchasing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the purchase invoice lifecycle state.
type Status string

const (
	// StatusPending marks an editable invoice awaiting reconciliation.
	StatusPending Status = "PENDING"
	// StatusFinalized is terminal; finalized invoices are immutable at the
	// data layer.
	StatusFinalized Status = "FINALIZED"
)

// LineItem is one invoiced product line. Price is the pre-tax unit price;
// UnitPrice includes tax. ReceivedQty is the quantity reconciled against
// received stock, written once at finalize.
type LineItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Tax         decimal.Decimal `json:"tax"`
	ReceivedQty int             `json:"receivedQty"`
}

// Invoice is a purchase invoice document.
type Invoice struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	SupplierID    string          `json:"supplierId"`
	SupplierName  string          `json:"supplierName"`
	InvoiceDate   time.Time       `json:"invoiceDate"`
	Items         []LineItem      `json:"items"`
	TotalPreTax   decimal.Decimal `json:"totalPreTax"`
	TotalTax      decimal.Decimal `json:"totalTax"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
}

// LineInput is one raw line from the invoice form.
type LineInput struct {
	ProductID   string  `json:"productId" validate:"required"`
	ProductName string  `json:"productName" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// InvoiceInput carries raw form values for create/update.
type InvoiceInput struct {
	SupplierID   string      `json:"supplierId" validate:"required"`
	SupplierName string      `json:"supplierName" validate:"required"`
	InvoiceDate  time.Time   `json:"invoiceDate" validate:"required"`
	Items        []LineInput `json:"items" validate:"required,min=1,dive"`
}

// LineShortfall is one unsatisfied invoice line at finalize time.
type LineShortfall struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Expected    int    `json:"expected"`
	Reconciled  int    `json:"reconciled"`
}

// ReconciliationError rejects a finalize whose lines are not all exactly
// satisfied. Nothing is committed when it fires.
type ReconciliationError struct {
	Shortfalls []LineShortfall
}

func (e *ReconciliationError) Error() string {
	if len(e.Shortfalls) == 0 {
		return "reconciliation incomplete: no items assigned"
	}
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s: expected %d, reconciled %d", s.ProductName, s.Expected, s.Reconciled))
	}
	return "reconciliation incomplete: " + strings.Join(parts, "; ")
}

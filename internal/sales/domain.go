package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the sales order lifecycle state.
type Status string

const (
	// StatusPending marks an editable order.
	StatusPending Status = "PENDING"
	// StatusFinalized is terminal; finalized orders are immutable at the
	// data layer.
	StatusFinalized Status = "FINALIZED"
)

// LineItem is one ordered product line. Price is the pre-tax unit price;
// UnitPrice includes tax: round2(price * (1+TaxRate)) == unitPrice.
type LineItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Tax         decimal.Decimal `json:"tax"`
}

// Order is a sales order document.
type Order struct {
	ID           string          `json:"id"`
	OrderNumber  string          `json:"orderNumber"`
	CustomerID   string          `json:"customerId"`
	CustomerName string          `json:"customerName"`
	OrderDate    time.Time       `json:"orderDate"`
	Items        []LineItem      `json:"items"`
	TotalPreTax  decimal.Decimal `json:"totalPreTax"`
	TotalTax     decimal.Decimal `json:"totalTax"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Status       Status          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	CreatedBy    string          `json:"createdBy"`
}

// LineInput is one raw line from the order form.
type LineInput struct {
	ProductID   string  `json:"productId" validate:"required"`
	ProductName string  `json:"productName" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// OrderInput carries raw form values for create/update.
type OrderInput struct {
	CustomerID   string      `json:"customerId" validate:"required"`
	CustomerName string      `json:"customerName" validate:"required"`
	OrderDate    time.Time   `json:"orderDate" validate:"required"`
	Items        []LineInput `json:"items" validate:"required,min=1,dive"`
}

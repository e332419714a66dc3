// Package receiving records incoming stock batches. Each batch gets a
// BI-YYMM-NNN number and fans out into pending receivable items; the
// reconciliation workbench later assigns those items to purchase invoice
// lines and consumes them.
package receiving

import "time"

// Batch is one stock-receive event.
type Batch struct {
	ID           string    `json:"id"`
	BatchNumber  string    `json:"batchNumber"`
	SupplierID   string    `json:"supplierId"`
	SupplierName string    `json:"supplierName"`
	ReceivedDate time.Time `json:"receivedDate"`
	CreatedAt    time.Time `json:"createdAt"`
	CreatedBy    string    `json:"createdBy"`
}

// PendingReceivableItem is one assignable unit of received stock. A
// serialized line yields one item per physical unit, each with its serial;
// a plain line yields a single item carrying the whole quantity.
type PendingReceivableItem struct {
	Key          string `json:"key"`
	BatchID      string `json:"batchId"`
	BatchNumber  string `json:"batchNumber"`
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	Quantity     int    `json:"quantity"`
	IsSerialized bool   `json:"isSerialized"`
	SerialNumber string `json:"serialNumber,omitempty"`
	IsConsumed   bool   `json:"isConsumed"`
}

// LineInput is one raw line from the receive form.
type LineInput struct {
	ProductID     string   `json:"productId" validate:"required"`
	ProductName   string   `json:"productName" validate:"required"`
	Quantity      int      `json:"quantity" validate:"gt=0"`
	IsSerialized  bool     `json:"isSerialized"`
	SerialNumbers []string `json:"serialNumbers"`
}

// BatchInput carries raw form values for a receive.
type BatchInput struct {
	SupplierID   string      `json:"supplierId" validate:"required"`
	SupplierName string      `json:"supplierName" validate:"required"`
	ReceivedDate time.Time   `json:"receivedDate" validate:"required"`
	Lines        []LineInput `json:"lines" validate:"required,min=1,dive"`
}

package inventory

import (
	"errors"
	"time"
)

// TransactionType enumerates supported inventory movements.
type TransactionType string

const (
	// TransactionTypeIn represents an inbound movement.
	TransactionTypeIn TransactionType = "IN"
	// TransactionTypeOut represents an outbound movement.
	TransactionTypeOut TransactionType = "OUT"
	// TransactionTypeTransfer moves stock between locations.
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// Transaction is one immutable inventory movement. There are no update or
// delete operations: corrections are made with compensating transactions.
type Transaction struct {
	ID                    string          `json:"id"`
	ProductID             string          `json:"productId"`
	LocationID            string          `json:"locationId"`
	DestinationLocationID string          `json:"destinationLocationId,omitempty"`
	Type                  TransactionType `json:"type"`
	Quantity              int             `json:"quantity"`
	Timestamp             time.Time       `json:"timestamp"`
	UserID                string          `json:"userId"`
	ReferenceNumber       string          `json:"referenceNumber,omitempty"`
}

// RecordInput describes a movement to record.
type RecordInput struct {
	ProductID             string
	LocationID            string
	DestinationLocationID string
	Type                  TransactionType
	Quantity              int
	ReferenceNumber       string
}

// ErrInvalidQuantity indicates a negative quantity.
var ErrInvalidQuantity = errors.New("inventory: quantity must be non-negative")

// ErrInvalidMovement indicates missing or inconsistent location fields.
var ErrInvalidMovement = errors.New("inventory: invalid movement")

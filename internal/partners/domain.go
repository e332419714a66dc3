// Package partners manages the customer and supplier registries. Both
// share one shape; display ids come from never-resetting serial counters
// (CUS-NNN, SUP-NNN) assigned once at creation.
package partners

import "time"

// Kind distinguishes the two registries.
type Kind string

const (
	// KindCustomer is the customer registry.
	KindCustomer Kind = "customer"
	// KindSupplier is the supplier registry.
	KindSupplier Kind = "supplier"
)

// Party is a customer or supplier record.
type Party struct {
	ID            string    `json:"id"`
	DisplayID     string    `json:"displayId"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contactPerson,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	PriceType     string    `json:"priceType,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PartyInput carries raw form values for create/update.
type PartyInput struct {
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email" validate:"omitempty,email"`
	Address       string `json:"address"`
	PriceType     string `json:"priceType"`
	Notes         string `json:"notes"`
}

// Package sequence generates sequential, human-readable document numbers
// from transactional counters. Periodic counters reset to 1 when the
// calendar period changes; serial counters only ever increment.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/stockdesk/stockdesk/internal/shared"
)

// Counter is the stored state of one named counter. Periodic counters use
// CurrentCount/LastResetPeriod, serial counters use CurrentID.
type Counter struct {
	CurrentCount    int
	LastResetPeriod string
	CurrentID       int
}

// Store runs an atomic read-modify-write against one counter. The update is
// serialized per counter name: no two concurrent invocations may observe
// the same starting state and both commit.
type Store interface {
	Mutate(ctx context.Context, name string, fn func(c *Counter) error) error
}

// Spec names a counter and its formatting rules.
type Spec struct {
	Name     string
	Prefix   string
	Periodic bool
}

// Document counter specs.
var (
	SalesOrder      = Spec{Name: "salesOrderCounter", Prefix: "SO", Periodic: true}
	PurchaseInvoice = Spec{Name: "purchaseInvoiceCounter", Prefix: "PI", Periodic: true}
	ReceiveBatch    = Spec{Name: "receiveBatchCounter", Prefix: "BI", Periodic: true}
	DeliveryBatch   = Spec{Name: "deliveryBatchCounter", Prefix: "BO", Periodic: true}
	Customer        = Spec{Name: "customerCounter", Prefix: "CUS", Periodic: false}
	Supplier        = Spec{Name: "supplierCounter", Prefix: "SUP", Periodic: false}
)

// PeriodKey renders the monthly reset period as YYMM.
func PeriodKey(at time.Time) string {
	return at.Format("0601")
}

// Generator produces document numbers from a counter store.
type Generator struct {
	store Store
}

// NewGenerator constructs a Generator.
func NewGenerator(store Store) *Generator {
	return &Generator{store: store}
}

// Next returns the next number for the spec, formatted
// {prefix}-{period}-{NNN} for periodic counters and {prefix}-{NNN} for
// serial ones. A failed counter transaction surfaces ErrCounterConflict and
// is safe to retry; two successful calls never return the same number.
func (g *Generator) Next(ctx context.Context, spec Spec, at time.Time) (string, error) {
	var formatted string
	err := g.store.Mutate(ctx, spec.Name, func(c *Counter) error {
		if spec.Periodic {
			period := PeriodKey(at)
			next := 1
			if c.LastResetPeriod == period {
				next = c.CurrentCount + 1
			}
			c.CurrentCount = next
			c.LastResetPeriod = period
			formatted = fmt.Sprintf("%s-%s-%03d", spec.Prefix, period, next)
			return nil
		}
		c.CurrentID++
		formatted = fmt.Sprintf("%s-%03d", spec.Prefix, c.CurrentID)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrCounterConflict, err)
	}
	return formatted, nil
}

// Package stock derives per-product, per-location stock levels from the
// full inventory transaction list.
package stock

import (
	"log/slog"

	"github.com/stockdesk/stockdesk/internal/inventory"
)

// Levels maps productID -> locationID -> signed quantity. Levels may go
// negative when transactions are inconsistent; no clamping is applied.
type Levels map[string]map[string]int

// Get returns the level for a product at a location, zero when absent.
func (l Levels) Get(productID, locationID string) int {
	return l[productID][locationID]
}

// Aggregate recomputes levels from scratch. Each transaction is processed
// exactly once; ordering does not matter since addition commutes.
// Transactions missing a required location field are skipped and logged.
// The recompute is O(n) per change, acceptable for tenant-bounded lists; an
// incremental variant would have to stay equal to this full recompute.
func Aggregate(transactions []inventory.Transaction, logger *slog.Logger) Levels {
	levels := make(Levels)
	add := func(productID, locationID string, delta int) {
		byLocation, ok := levels[productID]
		if !ok {
			byLocation = make(map[string]int)
			levels[productID] = byLocation
		}
		byLocation[locationID] += delta
	}

	for _, t := range transactions {
		if t.ProductID == "" || t.LocationID == "" {
			logger.Warn("skipping transaction without product or location", slog.String("id", t.ID))
			continue
		}
		switch t.Type {
		case inventory.TransactionTypeIn:
			add(t.ProductID, t.LocationID, t.Quantity)
		case inventory.TransactionTypeOut:
			add(t.ProductID, t.LocationID, -t.Quantity)
		case inventory.TransactionTypeTransfer:
			if t.DestinationLocationID == "" {
				logger.Warn("skipping transfer without destination", slog.String("id", t.ID))
				continue
			}
			add(t.ProductID, t.LocationID, -t.Quantity)
			add(t.ProductID, t.DestinationLocationID, t.Quantity)
		default:
			logger.Warn("skipping transaction with unknown type", slog.String("id", t.ID), slog.String("type", string(t.Type)))
		}
	}
	return levels
}

package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockdesk/stockdesk/internal/catalog"
	"github.com/stockdesk/stockdesk/internal/inventory"
	"github.com/stockdesk/stockdesk/internal/stock"
)

// ReorderScanJob compares aggregated stock levels against product reorder
// points and logs every shortfall.
type ReorderScanJob struct {
	products     *catalog.Repository
	transactions *inventory.Repository
	logger       *slog.Logger
}

// NewReorderScanJob constructs the job.
func NewReorderScanJob(pool *pgxpool.Pool, logger *slog.Logger) *ReorderScanJob {
	return &ReorderScanJob{
		products:     catalog.NewRepository(pool),
		transactions: inventory.NewRepository(pool),
		logger:       logger,
	}
}

// Handler returns the asynq handler for TaskReorderScan.
func (j *ReorderScanJob) Handler() asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		products, err := j.products.Snapshot(ctx)
		if err != nil {
			return err
		}
		transactions, err := j.transactions.Snapshot(ctx)
		if err != nil {
			return err
		}
		levels := stock.Aggregate(transactions, j.logger)

		totals := make(map[string]int)
		for productID, byLocation := range levels {
			for _, qty := range byLocation {
				totals[productID] += qty
			}
		}

		shortfalls := 0
		for _, p := range products {
			if p.ReorderPoint <= 0 {
				continue
			}
			if onHand := totals[p.ID]; onHand <= p.ReorderPoint {
				shortfalls++
				j.logger.Warn("product at or below reorder point",
					"sku", p.SKU, "model", p.Model,
					"onHand", onHand, "reorderPoint", p.ReorderPoint)
			}
		}
		j.logger.Info("reorder scan complete",
			"products", len(products), "shortfalls", shortfalls)
		return nil
	}
}

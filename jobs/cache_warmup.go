package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/stockdesk/stockdesk/internal/catalog"
	"github.com/stockdesk/stockdesk/internal/inventory"
	"github.com/stockdesk/stockdesk/internal/mirror"
	"github.com/stockdesk/stockdesk/internal/partners"
	"github.com/stockdesk/stockdesk/internal/purchasing"
	"github.com/stockdesk/stockdesk/internal/receiving"
	"github.com/stockdesk/stockdesk/internal/sales"
)

// CacheWarmupJob primes every local cache partition from the remote store
// so a process starting offline has fresh data to serve.
type CacheWarmupJob struct {
	pool     *pgxpool.Pool
	client   *redis.Client
	tenantID string
	logger   *slog.Logger
}

// NewCacheWarmupJob constructs the job.
func NewCacheWarmupJob(pool *pgxpool.Pool, client *redis.Client, tenantID string, logger *slog.Logger) *CacheWarmupJob {
	return &CacheWarmupJob{pool: pool, client: client, tenantID: tenantID, logger: logger}
}

// Handler returns the asynq handler for TaskCacheWarmup. Partition names
// match the ones the server wires for its synced collections.
func (j *CacheWarmupJob) Handler() asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		inventoryRepo := inventory.NewRepository(j.pool)
		catalogRepo := catalog.NewRepository(j.pool)
		partnersRepo := partners.NewRepository(j.pool)
		salesRepo := sales.NewRepository(j.pool)
		purchasingRepo := purchasing.NewRepository(j.pool)
		receivingRepo := receiving.NewRepository(j.pool)

		if err := warm(ctx, j, "transactions", inventoryRepo.Snapshot); err != nil {
			return err
		}
		if err := warm(ctx, j, "products", catalogRepo.Snapshot); err != nil {
			return err
		}
		if err := warm(ctx, j, "lookups", catalogRepo.LookupSnapshot); err != nil {
			return err
		}
		if err := warm(ctx, j, "customers", func(ctx context.Context) ([]partners.Party, error) {
			return partnersRepo.Snapshot(ctx, partners.KindCustomer)
		}); err != nil {
			return err
		}
		if err := warm(ctx, j, "suppliers", func(ctx context.Context) ([]partners.Party, error) {
			return partnersRepo.Snapshot(ctx, partners.KindSupplier)
		}); err != nil {
			return err
		}
		if err := warm(ctx, j, "salesOrders", salesRepo.Snapshot); err != nil {
			return err
		}
		if err := warm(ctx, j, "purchaseInvoices", purchasingRepo.Snapshot); err != nil {
			return err
		}
		if err := warm(ctx, j, "receivables", receivingRepo.Snapshot); err != nil {
			return err
		}
		j.logger.Info("cache warmup complete", "tenant", j.tenantID)
		return nil
	}
}

func warm[T any](ctx context.Context, j *CacheWarmupJob, name string, snapshot func(context.Context) ([]T, error)) error {
	items, err := snapshot(ctx)
	if err != nil {
		return err
	}
	partition := mirror.NewPartition[T](j.client, j.tenantID, name)
	if err := partition.Store(ctx, items); err != nil {
		return err
	}
	j.logger.Info("cache partition warmed", "partition", name, "items", len(items))
	return nil
}

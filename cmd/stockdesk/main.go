package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/stockdesk/stockdesk/internal/app"
	"github.com/stockdesk/stockdesk/internal/bulkimport"
	"github.com/stockdesk/stockdesk/internal/catalog"
	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/inventory"
	"github.com/stockdesk/stockdesk/internal/mirror"
	"github.com/stockdesk/stockdesk/internal/partners"
	"github.com/stockdesk/stockdesk/internal/platform/cache"
	"github.com/stockdesk/stockdesk/internal/purchasing"
	"github.com/stockdesk/stockdesk/internal/receiving"
	"github.com/stockdesk/stockdesk/internal/sales"
	"github.com/stockdesk/stockdesk/internal/sequence"
	"github.com/stockdesk/stockdesk/internal/stock"
	"github.com/stockdesk/stockdesk/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	conn := connectivity.NewState(cfg.TenantID)

	// Repositories.
	inventoryRepo := inventory.NewRepository(dbpool)
	catalogRepo := catalog.NewRepository(dbpool)
	partnersRepo := partners.NewRepository(dbpool)
	salesRepo := sales.NewRepository(dbpool)
	purchasingRepo := purchasing.NewRepository(dbpool)
	receivingRepo := receiving.NewRepository(dbpool)

	// Synced collections: live snapshots over LISTEN/NOTIFY while online,
	// Redis partitions while offline.
	transactionsMirror := newMirror(conn, dbpool, redisClient, cfg, logger, "transactions",
		inventory.Channel, inventoryRepo.Snapshot)
	productsMirror := newMirror(conn, dbpool, redisClient, cfg, logger, "products",
		catalog.ProductsChannel, catalogRepo.Snapshot)
	lookupsMirror := newMirror(conn, dbpool, redisClient, cfg, logger, "lookups",
		catalog.LookupsChannel, catalogRepo.LookupSnapshot)
	customersMirror := newMirror(conn, dbpool, redisClient, cfg, logger, "customers",
		partners.CustomersChannel, func(ctx context.Context) ([]partners.Party, error) {
			return partnersRepo.Snapshot(ctx, partners.KindCustomer)
		})
	suppliersMirror := newMirror(conn, dbpool, redisClient, cfg, logger, "suppliers",
		partners.SuppliersChannel, func(ctx context.Context) ([]partners.Party, error) {
			return partnersRepo.Snapshot(ctx, partners.KindSupplier)
		})
	salesMirror := newMirror(conn, dbpool, redisClient, cfg, logger, "salesOrders",
		sales.Channel, salesRepo.Snapshot)
	purchasingMirror := newMirror(conn, dbpool, redisClient, cfg, logger, "purchaseInvoices",
		purchasing.Channel, purchasingRepo.Snapshot)
	receivablesMirror := newMirror(conn, dbpool, redisClient, cfg, logger, "receivables",
		receiving.Channel, receivingRepo.Snapshot)

	seq := sequence.NewGenerator(sequence.NewPGStore(dbpool))

	// Services.
	inventorySvc := inventory.NewService(conn, inventoryRepo, transactionsMirror)
	stockSvc := stock.NewService(transactionsMirror, logger)
	catalogSvc := catalog.NewService(conn, catalogRepo, productsMirror)
	lookupSvc := catalog.NewLookupService(conn, catalogRepo, lookupsMirror)
	customersSvc := partners.NewCustomerService(conn, partnersRepo, seq, customersMirror)
	suppliersSvc := partners.NewSupplierService(conn, partnersRepo, seq, suppliersMirror)
	salesSvc := sales.NewService(conn, salesRepo, seq, salesMirror)
	purchasingSvc := purchasing.NewService(conn, purchasingRepo, seq, purchasingMirror)
	receivingSvc := receiving.NewService(conn, receivingRepo, seq, receivablesMirror)
	workbench := purchasing.NewWorkbench(conn, purchasingSvc, receivingSvc, purchasingRepo, logger)
	importSvc := bulkimport.NewService(conn, catalogSvc, lookupSvc, bulkimport.NewPGStore(dbpool))

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		ConnectivityHandler: connectivity.NewHandler(conn),
		InventoryHandler:    inventory.NewHandler(inventorySvc),
		StockHandler:        stock.NewHandler(stockSvc),
		CatalogHandler:      catalog.NewHandler(catalogSvc, lookupSvc),
		CustomersHandler:    partners.NewHandler(customersSvc),
		SuppliersHandler:    partners.NewHandler(suppliersSvc),
		SalesHandler:        sales.NewHandler(salesSvc),
		PurchasingHandler:   purchasing.NewHandler(purchasingSvc, workbench),
		ReceivingHandler:    receiving.NewHandler(receivingSvc),
		ImportHandler:       bulkimport.NewHandler(importSvc),
		JobsHandler:         jobs.NewHandler(asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr}), logger),
	})

	var group errgroup.Group
	for _, m := range []interface{ Run(context.Context) }{
		transactionsMirror, productsMirror, lookupsMirror, customersMirror,
		suppliersMirror, salesMirror, purchasingMirror, receivablesMirror,
	} {
		m := m
		group.Go(func() error {
			m.Run(ctx)
			return nil
		})
	}

	if cfg.StartOnline {
		conn.SetOnline(true)
	}

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	_ = group.Wait()
}

// newMirror wires one synced collection: a LISTEN/NOTIFY source over the
// collection's channel and a tenant-scoped Redis cache partition.
func newMirror[T any](conn *connectivity.State, pool *pgxpool.Pool, client *redis.Client, cfg *app.Config,
	logger *slog.Logger, name, channel string, snapshot mirror.SnapshotFunc[T]) *mirror.Mirror[T] {
	return mirror.New(name, conn,
		mirror.NewPGSource(pool, channel, snapshot),
		mirror.NewPartition[T](client, cfg.TenantID, name),
		logger)
}

package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stockdesk/stockdesk/internal/bulkimport"
	"github.com/stockdesk/stockdesk/internal/catalog"
	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/inventory"
	"github.com/stockdesk/stockdesk/internal/partners"
	"github.com/stockdesk/stockdesk/internal/purchasing"
	"github.com/stockdesk/stockdesk/internal/receiving"
	"github.com/stockdesk/stockdesk/internal/sales"
	"github.com/stockdesk/stockdesk/internal/stock"
	"github.com/stockdesk/stockdesk/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	ConnectivityHandler *connectivity.Handler
	InventoryHandler    *inventory.Handler
	StockHandler        *stock.Handler
	CatalogHandler      *catalog.Handler
	CustomersHandler    *partners.Handler
	SuppliersHandler    *partners.Handler
	SalesHandler        *sales.Handler
	PurchasingHandler   *purchasing.Handler
	ReceivingHandler    *receiving.Handler
	ImportHandler       *bulkimport.Handler
	JobsHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with StockDesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/connectivity", params.ConnectivityHandler.MountRoutes)
	r.Route("/inventory", params.InventoryHandler.MountRoutes)
	r.Route("/stock", params.StockHandler.MountRoutes)
	r.Route("/catalog", params.CatalogHandler.MountRoutes)
	r.Route("/customers", params.CustomersHandler.MountRoutes)
	r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
	r.Route("/sales", params.SalesHandler.MountRoutes)
	r.Route("/purchasing", params.PurchasingHandler.MountRoutes)
	r.Route("/receiving", params.ReceivingHandler.MountRoutes)
	r.Route("/import", params.ImportHandler.MountRoutes)
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	return r
}

package stock

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockdesk/stockdesk/internal/platform/httpx"
)

// Handler exposes aggregated stock levels over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler constructs the handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// MountRoutes attaches the stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/levels", h.levels)
}

func (h *Handler) levels(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.svc.Levels(r.Context()))
}

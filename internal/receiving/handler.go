package receiving

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockdesk/stockdesk/internal/platform/httpx"
)

// Handler exposes stock receiving over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler constructs the handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// MountRoutes attaches the receiving routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/pool", h.pool)
	r.Get("/items", h.all)
	r.Post("/", h.receive)
}

func (h *Handler) pool(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":   h.svc.Pool(r.Context()),
		"loading": h.svc.Loading(),
	})
}

func (h *Handler) all(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":   h.svc.All(r.Context()),
		"loading": h.svc.Loading(),
	})
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	var input BatchInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	b, err := h.svc.Receive(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockdesk/stockdesk/internal/platform/httpx"
)

// Handler exposes products and lookups over HTTP.
type Handler struct {
	products *Service
	lookups  *LookupService
}

// NewHandler constructs the handler.
func NewHandler(products *Service, lookups *LookupService) *Handler {
	return &Handler{products: products, lookups: lookups}
}

// MountRoutes attaches the catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.list)
	r.Post("/products", h.create)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}", h.delete)

	r.Get("/lookups", h.allLookups)
	r.Get("/lookups/{kind}", h.lookupValues)
	r.Post("/lookups/{kind}", h.addLookupValue)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":   h.products.List(r.Context()),
		"loading": h.products.Loading(),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input ProductInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	p, err := h.products.Create(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var input ProductInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.products.Update(r.Context(), chi.URLParam(r, "id"), input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) allLookups(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.lookups.All(r.Context()))
}

func (h *Handler) lookupValues(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.lookups.Values(r.Context(), chi.URLParam(r, "kind")))
}

func (h *Handler) addLookupValue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	value, err := h.lookups.Add(r.Context(), chi.URLParam(r, "kind"), req.Value)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, LookupValue{Kind: chi.URLParam(r, "kind"), Value: value})
}

package purchasing

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockdesk/stockdesk/internal/platform/httpx"
)

// Handler exposes purchase invoices and the reconciliation workbench over
// HTTP.
type Handler struct {
	svc       *Service
	workbench *Workbench
}

// NewHandler constructs the handler.
func NewHandler(svc *Service, workbench *Workbench) *Handler {
	return &Handler{svc: svc, workbench: workbench}
}

// MountRoutes attaches the purchasing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)

	r.Route("/{id}/reconciliation", func(r chi.Router) {
		r.Get("/", h.reconciliationStatus)
		r.Post("/assignments", h.assign)
		r.Delete("/assignments/{key}", h.unassign)
		r.Post("/draft", h.saveDraft)
		r.Post("/finalize", h.finalize)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":   h.svc.List(r.Context()),
		"loading": h.svc.Loading(),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input InvoiceInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	inv, err := h.svc.Create(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var input InvoiceInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reconciliationStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.workbench.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"lines": statuses})
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemKey   string `json:"itemKey"`
		ProductID string `json:"productId"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.workbench.Assign(r.Context(), chi.URLParam(r, "id"), req.ItemKey, req.ProductID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unassign(w http.ResponseWriter, r *http.Request) {
	if err := h.workbench.Unassign(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "key")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) saveDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantities map[string]int `json:"quantities"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.workbench.SaveDraft(r.Context(), chi.URLParam(r, "id"), req.Quantities); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) finalize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LocationID string `json:"locationId"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	err := h.workbench.Finalize(r.Context(), chi.URLParam(r, "id"), req.LocationID)
	if err != nil {
		var rec *ReconciliationError
		if errors.As(err, &rec) {
			httpx.JSON(w, http.StatusConflict, map[string]any{
				"title":      "Reconciliation Incomplete",
				"status":     http.StatusConflict,
				"detail":     rec.Error(),
				"shortfalls": rec.Shortfalls,
			})
			return
		}
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

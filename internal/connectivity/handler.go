package connectivity

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockdesk/stockdesk/internal/platform/httpx"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// Handler exposes the connectivity toggle and session state over HTTP.
type Handler struct {
	state *State
}

// NewHandler constructs the handler.
func NewHandler(state *State) *Handler {
	return &Handler{state: state}
}

// MountRoutes attaches the connectivity routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.status)
	r.Post("/online", h.setOnline)
	r.Post("/signin", h.signIn)
	r.Post("/signout", h.signOut)
}

type statusResponse struct {
	Online       bool   `json:"online"`
	TenantID     string `json:"tenantId"`
	UserID       string `json:"userId,omitempty"`
	SessionReady bool   `json:"sessionReady"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, statusResponse{
		Online:       h.state.Online(),
		TenantID:     h.state.TenantID(),
		UserID:       h.state.UserID(),
		SessionReady: h.state.SessionReady(),
	})
}

func (h *Handler) setOnline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Online bool `json:"online"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	h.state.SetOnline(req.Online)
	h.status(w, r)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no identity headers present")
		return
	}
	h.state.SignIn(principal.UserID)
	h.status(w, r)
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	h.state.SignOut()
	h.status(w, r)
}

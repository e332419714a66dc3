package bulkimport

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockdesk/stockdesk/internal/platform/httpx"
	"github.com/stockdesk/stockdesk/internal/shared"
)

const maxUploadBytes = 10 << 20

// Handler exposes spreadsheet imports over HTTP. Uploads come as multipart
// forms with the workbook in the "file" field.
type Handler struct {
	svc *Service
}

// NewHandler constructs the handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// MountRoutes attaches the import routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/preview", h.preview)
	r.Post("/commit", h.commit)
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	file, ok := h.uploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()
	result, err := h.svc.Preview(r.Context(), file)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Unreadable File", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) commit(w http.ResponseWriter, r *http.Request) {
	file, ok := h.uploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()
	result, err := h.svc.Commit(r.Context(), file)
	if err != nil {
		var validation *shared.ValidationError
		if errors.As(err, &validation) {
			httpx.JSON(w, http.StatusUnprocessableEntity, map[string]any{
				"title":  "Import Rejected",
				"status": http.StatusUnprocessableEntity,
				"detail": "the file has errors; nothing was imported",
				"result": result,
			})
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) uploadedFile(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "a workbook must be uploaded in the \"file\" field")
		return nil, false
	}
	return file, true
}

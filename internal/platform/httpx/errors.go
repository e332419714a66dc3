package httpx

import (
	"errors"
	"net/http"

	"github.com/stockdesk/stockdesk/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var uniq *shared.UniquenessError
	var validation *shared.ValidationError

	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrOffline):
		Problem(w, http.StatusConflict, "Offline", err.Error())
	case errors.Is(err, shared.ErrFinalized):
		Problem(w, http.StatusConflict, "Finalized", err.Error())
	case errors.Is(err, shared.ErrCounterConflict):
		Problem(w, http.StatusServiceUnavailable, "Number Generation Failed", err.Error())
	case errors.As(err, &uniq):
		Problem(w, http.StatusConflict, "Duplicate", uniq.Error())
	case errors.As(err, &validation):
		JSON(w, http.StatusBadRequest, ProblemDetail{
			Title:  "Validation Failed",
			Status: http.StatusBadRequest,
			Detail: validation.Error(),
			Issues: validation.Issues,
		})
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

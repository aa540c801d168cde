package httpapi

import (
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/service/posting"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	// Orphans lists entry ids left behind by a failed paired posting.
	Orphans []string `json:"orphans,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeErr(w, http.StatusBadRequest, msg, "bad_request")
}

func notFound(w http.ResponseWriter) { writeErr(w, http.StatusNotFound, "not_found", "not_found") }

// writeServiceErr maps service errors onto status codes.
func (s *Server) writeServiceErr(w http.ResponseWriter, r *http.Request, err error) {
	var partial *posting.PartialPostingError
	switch {
	case errors.As(err, &partial):
		orphans := make([]string, 0, len(partial.Orphans))
		for _, id := range partial.Orphans {
			orphans = append(orphans, id.String())
		}
		s.log.Error("partial posting", "req_id", chimw.GetReqID(r.Context()), "err", err)
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Code: "partial_posting", Orphans: orphans})
	case errors.Is(err, errs.ErrNotFound):
		notFound(w)
	case errors.Is(err, errs.ErrInvalidConfiguration):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "invalid_configuration")
	case errors.Is(err, errs.ErrInvalid):
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "validation_error")
	case errors.Is(err, errs.ErrPairedLeg):
		writeErr(w, http.StatusConflict, err.Error(), "paired_leg")
	case errors.Is(err, errs.ErrConflict):
		writeErr(w, http.StatusConflict, err.Error(), "conflict")
	case errors.Is(err, errs.ErrConfigurationMissing):
		s.log.Error("configuration missing", "req_id", chimw.GetReqID(r.Context()), "err", err)
		writeErr(w, http.StatusInternalServerError, err.Error(), "configuration_missing")
	default:
		s.log.Error("request failed", "req_id", chimw.GetReqID(r.Context()), "err", err)
		writeErr(w, http.StatusInternalServerError, "internal_error", "internal_error")
	}
}

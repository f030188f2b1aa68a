package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/conduit-lang/apidocs/internal/catalog"
	"github.com/conduit-lang/apidocs/internal/state"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error  ErrorDetail `json:"error"`
	Status int         `json:"status"`
}

// ErrorDetail describes what failed
type ErrorDetail struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	View    *ViewResponse `json:"view,omitempty"`
}

// statusFor maps engine and registry errors onto HTTP status codes
func statusFor(err error) (int, string) {
	var fetchErr *catalog.FetchError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound, "SESSION_NOT_FOUND"
	case errors.Is(err, state.ErrSuperseded):
		return http.StatusConflict, "SUPERSEDED"
	case errors.Is(err, catalog.ErrMalformedCatalog):
		return http.StatusBadGateway, "MALFORMED_CATALOG"
	case errors.Is(err, catalog.ErrUnsupportedScheme):
		return http.StatusBadRequest, "UNSUPPORTED_SCHEME"
	case errors.Is(err, catalog.ErrHostNotAllowed):
		return http.StatusForbidden, "HOST_NOT_ALLOWED"
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, "FETCH_FAILED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, view *ViewResponse) {
	writeJSON(w, status, ErrorResponse{
		Error:  ErrorDetail{Code: code, Message: message, View: view},
		Status: status,
	})
}

// renderError writes err with the current view attached when there is one
func renderError(w http.ResponseWriter, err error, view *ViewResponse) {
	status, code := statusFor(err)
	writeError(w, status, code, err.Error(), view)
}

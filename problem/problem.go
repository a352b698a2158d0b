// Package problem implements RFC 9457 problem+json error responses and
// the mapping from domain errors to HTTP status codes.
package problem

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/winterop-com/servicekit-sub001/domain"
)

// Detail is an RFC 9457 problem document.
type Detail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	TraceID  string `json:"trace_id,omitempty"`
}

// Write sends a problem document with the given status. The problem type
// URN is derived from the status code.
func Write(w http.ResponseWriter, r *http.Request, status int, detail string) {
	doc := Detail{
		Type:   urnForStatus(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
	if r != nil {
		doc.Instance = r.URL.Path
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(doc)
}

// WriteError maps a domain error to its HTTP status and sends it as a
// problem document.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	Write(w, r, StatusFromError(err), err.Error())
}

// StatusFromError maps domain errors to HTTP status codes. Unknown errors
// return 500 Internal Server Error.
func StatusFromError(err error) int {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var unauthorized *domain.UnauthorizedError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func urnForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return "urn:servicekit:error:not-found"
	case http.StatusBadRequest:
		return "urn:servicekit:error:validation"
	case http.StatusConflict:
		return "urn:servicekit:error:conflict"
	case http.StatusUnauthorized:
		return "urn:servicekit:error:unauthorized"
	case http.StatusTooManyRequests:
		return "urn:servicekit:error:rate-limited"
	default:
		return "about:blank"
	}
}

// Package response writes the catalog's HTTP bodies: JSON documents for
// reads, plain text for writes and {"errorText": ...} for every failure.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	ErrorText string `json:"errorText"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Text writes a plain-text body.
func Text(w http.ResponseWriter, status int, format string, args ...any) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, format, args...) //nolint:errcheck
}

// Error sends {"errorText": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{ErrorText: message})
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "Internal Server Error")
}

// Package httpx holds small HTTP helpers shared by every handler: JSON
// responses, the middleware chain, context keys and rate limiting.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON error envelope returned by every endpoint.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the standard error envelope.
func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, ErrorResponse{OK: false, Error: msg})
}

// NoCache sets Cache-Control and Pragma headers to prevent caching. Required
// for responses carrying tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

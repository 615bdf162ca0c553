// Package response contains the JSON helpers shared by all handlers. The
// wire shapes are flat (no envelope) to match the polling contract consumed
// by the web client.
package response

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
}

type fieldErrorsBody struct {
	Errors any `json:"errors"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a single-message error body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Error: message})
}

// FieldErrors writes a 400 carrying per-field validation problems.
func FieldErrors(w http.ResponseWriter, fields any) {
	JSON(w, http.StatusBadRequest, fieldErrorsBody{Errors: fields})
}

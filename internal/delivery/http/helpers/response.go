package helpers

import (
	"encoding/json"
	"net/http"
)

// Error codes carried next to the error message in the response envelope.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeForbidden     = "forbidden"
	ErrCodeNotFound      = "not_found"
	ErrCodeConflict      = "conflict"
	ErrCodeInternalError = "internal_error"
	ErrCodeUnavailable   = "unavailable"
	ErrCodeRateLimited   = "rate_limited"
)

// APIResponse is the envelope for every API response.
// On success Data is set and Error is nil; on failure Data is nil and Error holds the message.
// swagger:model APIResponse
type APIResponse struct {
	Success bool            `json:"success"`
	Data    any             `json:"data"`
	Error   *string         `json:"error"`
	Code    string          `json:"code,omitempty"`
	Errors  []string        `json:"errors,omitempty"`
	Meta    *PaginationMeta `json:"meta,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSONSuccess writes statusCode and an envelope with the given data.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, APIResponse{Success: true, Data: data})
}

// WriteJSONPage writes a 200 envelope with the list items and pagination meta.
func WriteJSONPage(w http.ResponseWriter, items any, meta PaginationMeta) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: items, Meta: &meta})
}

// WriteJSONError writes statusCode and an envelope with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, APIResponse{Error: &message, Code: code})
}

// WriteValidationErrors writes a 400 envelope listing every validation message.
func WriteValidationErrors(w http.ResponseWriter, message string, errs []string) {
	writeJSON(w, http.StatusBadRequest, APIResponse{Error: &message, Code: ErrCodeBadRequest, Errors: errs})
}

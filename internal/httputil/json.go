package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/tendant/voicehub/pkg/domain"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// Unauthorized writes the single denial response used for every scope failure.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "unauthorized")
}

// InternalError writes a generic 500 without leaking the cause.
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "internal server error")
}

// ListResponse is the envelope for paginated listings.
type ListResponse[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// NewListResponse builds a list envelope for a page of already-mapped items.
func NewListResponse[T any](items []T, total int, req domain.PageRequest) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{
		Data:       items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: req.TotalPages(total),
	}
}

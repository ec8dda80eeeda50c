package utils

import (
	"encoding/json"
	"net/http"

	"github.com/pratik-mahalle/smmpanel/internal/pkg/errors"
)

// SuccessResponse is the envelope around every successful payload.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope around every failure; pkg/client decodes it into APIError.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON encodes data with the given status. Order and sync state goes stale
// quickly, so responses are never cacheable.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) error {
	return WriteJSON(w, status, SuccessResponse{Success: true, Data: data})
}

// WriteError renders an AppError using its status code.
func WriteError(w http.ResponseWriter, err *errors.AppError) error {
	return WriteErrorMessage(w, err.StatusCode, err.Code, err.Message, err.Details)
}

// WriteErrorMessage renders an error that has no AppError behind it, such as a failed readiness probe.
func WriteErrorMessage(w http.ResponseWriter, status int, code, message string, details ...interface{}) error {
	detail := ErrorDetail{Code: code, Message: message}
	if len(details) > 0 {
		detail.Details = details[0]
	}
	return WriteJSON(w, status, ErrorResponse{Error: detail})
}

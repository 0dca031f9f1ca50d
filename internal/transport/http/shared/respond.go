// Package shared holds the JSON response envelope used by every handler.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "giftex/pkg/domain-errors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// WriteJSON writes v with the given status. Encoding failures are silently
// dropped; headers are already on the wire.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError translates a domain error into the error envelope. Errors that
// are not domain errors map to 500 without leaking their message.
func WriteError(w http.ResponseWriter, err error) {
	var dErr *dErrors.Error
	if !errors.As(err, &dErr) {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   string(dErrors.CodeInternal),
			Message: "internal error",
		})
		return
	}

	resp := ErrorResponse{
		Error:   string(dErr.Code),
		Message: dErr.Message,
		Details: dErr.Details,
	}
	if dErr.Code == dErrors.CodeInternal {
		resp.Message = "internal error"
		resp.Details = nil
	}
	WriteJSON(w, dErrors.ToHTTPStatus(dErr.Code), resp)
}

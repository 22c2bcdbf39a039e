// Package httputil holds the JSON response and request helpers shared by handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "smartbin/pkg/domain-errors"
)

// maxBodyBytes bounds request bodies; every payload here is a handful of fields.
const maxBodyBytes = 1 << 20

// ErrorResponse is the JSON envelope for every non-2xx response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded domain error to its HTTP status and envelope.
// Internal errors never leak their description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := ErrorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		if de, ok := dErrors.As(err); ok {
			resp.ErrorDescription = de.Message
		}
	}
	WriteJSON(w, StatusFor(code), resp)
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput,
		dErrors.CodeInvalidOperation, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeUnauthorized, dErrors.CodeTokenExpired:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON reads a single JSON object into dst, rejecting unknown fields
// and trailing data.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.New(dErrors.CodeBadRequest, "request body is required")
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	if dec.More() {
		return dErrors.New(dErrors.CodeBadRequest, "request body must contain a single JSON object")
	}
	return nil
}

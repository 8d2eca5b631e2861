package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/LeonardoBeccarini/lumicert/internal/assignment"
	"github.com/LeonardoBeccarini/lumicert/internal/refresh"
	"github.com/LeonardoBeccarini/lumicert/internal/telemetry"
)

// ErrorCode is the machine readable part of an error response.
type ErrorCode string

const (
	ErrorCodeInternal         ErrorCode = "internal_server_error"
	ErrorCodeValidation       ErrorCode = "validation_failed"
	ErrorCodeInvalidFormat    ErrorCode = "invalid_format"
	ErrorCodeNotFound         ErrorCode = "resource_not_found"
	ErrorCodeConflict         ErrorCode = "conflict"
	ErrorCodeUpstream         ErrorCode = "upstream_failed"
	ErrorCodeUpstreamRejected ErrorCode = "upstream_rejected"
	ErrorCodeUnavailable      ErrorCode = "upstream_unavailable"
)

type APIError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    any       `json:"details,omitempty"`
	StatusCode int       `json:"-"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details any, statusCode int) APIError {
	return APIError{Code: code, Message: message, Details: details, StatusCode: statusCode}
}

// RespondWithJSON writes payload with the given status.
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("dashboard: encode response: %v", err)
	}
}

// RespondWithError writes apiErr as the body and its StatusCode as the status.
func RespondWithError(w http.ResponseWriter, apiErr APIError) {
	RespondWithJSON(w, apiErr.StatusCode, apiErr)
}

// errorFor maps domain errors onto the HTTP surface.
func errorFor(err error) APIError {
	var (
		apiErr APIError
		ve     *telemetry.ValidationError
		te     *telemetry.TransportError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &ve):
		return NewAPIError(ErrorCodeValidation, ve.Message, map[string]string{"field": ve.Field}, http.StatusBadRequest)
	case errors.Is(err, assignment.ErrEditorNotFound), errors.Is(err, refresh.ErrSessionNotFound):
		return NewAPIError(ErrorCodeNotFound, err.Error(), nil, http.StatusNotFound)
	case errors.Is(err, assignment.ErrUnknownLuminaria):
		return NewAPIError(ErrorCodeNotFound, err.Error(), nil, http.StatusNotFound)
	case errors.Is(err, assignment.ErrNotAssignable), errors.Is(err, assignment.ErrClosed):
		return NewAPIError(ErrorCodeConflict, err.Error(), nil, http.StatusConflict)
	case errors.As(err, &te):
		details := map[string]any{"op": te.Op}
		if te.Status != 0 {
			details["status"] = te.Status
		}
		switch {
		case te.BreakerOpen():
			return NewAPIError(ErrorCodeUnavailable, te.Error(), details, http.StatusServiceUnavailable)
		case te.Rejected():
			return NewAPIError(ErrorCodeUpstreamRejected, te.Error(), details, http.StatusBadGateway)
		default:
			return NewAPIError(ErrorCodeUpstream, te.Error(), details, http.StatusBadGateway)
		}
	default:
		return NewAPIError(ErrorCodeInternal, err.Error(), nil, http.StatusInternalServerError)
	}
}

func (d *Dashboard) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := errorFor(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		d.cfg.Logger.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	d.metrics.failed(apiErr.Code)
	RespondWithError(w, apiErr)
}

package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/muurk/bravia/internal/device"
)

// Error is the JSON error envelope.
type Error struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"` // the same request may succeed if repeated
}

// Error codes
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeNotFound           = "not_found"
	ErrCodeValidation         = "validation_error"
	ErrCodeNotConnected       = "not_connected"
	ErrCodeConnectionLost     = "connection_lost"
	ErrCodeAlreadyConnecting  = "already_connecting"
	ErrCodeTimeout            = "timeout"
	ErrCodeDeviceError        = "device_error"
	ErrCodeUnexpectedResponse = "unexpected_response"
	ErrCodeUnavailable        = "unavailable"
	ErrCodeInternal           = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeDeviceError maps err to its HTTP status and writes the envelope.
func writeDeviceError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeJSON(w, status, Error{Status: status, Code: code, Message: err.Error(), Retryable: device.IsRetryable(err)})
}

func statusFor(err error) (int, string) {
	var e *device.Error
	if !errors.As(err, &e) {
		if errorIsContext(err) {
			return http.StatusGatewayTimeout, ErrCodeTimeout
		}
		return http.StatusInternalServerError, ErrCodeInternal
	}

	switch e.Type {
	case device.ErrTypeValidation:
		return http.StatusBadRequest, ErrCodeValidation
	case device.ErrTypeNotConnected, device.ErrTypeConnection:
		return http.StatusServiceUnavailable, ErrCodeNotConnected
	case device.ErrTypeConnectionLost, device.ErrTypeWriteIncomplete:
		return http.StatusServiceUnavailable, ErrCodeConnectionLost
	case device.ErrTypeAlreadyConnecting:
		return http.StatusConflict, ErrCodeAlreadyConnecting
	case device.ErrTypeTimeout:
		return http.StatusGatewayTimeout, ErrCodeTimeout
	case device.ErrTypeDevice:
		return http.StatusBadGateway, ErrCodeDeviceError
	case device.ErrTypeUnexpectedResponse:
		return http.StatusBadGateway, ErrCodeUnexpectedResponse
	}
	return http.StatusInternalServerError, ErrCodeInternal
}

func errorIsContext(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

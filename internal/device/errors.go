package device

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"

	"github.com/muurk/bravia/internal/urls"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeValidation indicates malformed arguments, raised before any I/O
	ErrTypeValidation ErrorType = iota
	// ErrTypeConnection indicates a transport failure while connecting
	ErrTypeConnection
	// ErrTypeNotConnected indicates an operation that needs a connection
	ErrTypeNotConnected
	// ErrTypeAlreadyConnecting indicates a connect or disconnect is already running
	ErrTypeAlreadyConnecting
	// ErrTypeWriteIncomplete indicates the transport did not take the full packet
	ErrTypeWriteIncomplete
	// ErrTypeTimeout indicates no matching answer arrived in time
	ErrTypeTimeout
	// ErrTypeDevice indicates the display answered with the all-F sentinel
	ErrTypeDevice
	// ErrTypeConnectionLost indicates the connection closed while a request was pending
	ErrTypeConnectionLost
	// ErrTypeUnexpectedResponse indicates an answer with parameters outside the documented values
	ErrTypeUnexpectedResponse
)

// NetworkErrorSubtype provides more specific classification of connect failures
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeConnection:
		return "Connection Error"
	case ErrTypeNotConnected:
		return "Not Connected"
	case ErrTypeAlreadyConnecting:
		return "Already Connecting"
	case ErrTypeWriteIncomplete:
		return "Write Incomplete"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeDevice:
		return "Device Error"
	case ErrTypeConnectionLost:
		return "Connection Lost"
	case ErrTypeUnexpectedResponse:
		return "Unexpected Response"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned by every Device and control operation.
type Error struct {
	Type           ErrorType           // Category of error
	Message        string              // Human-readable error message
	Command        string              // Protocol command involved, if any
	Address        string              // Display address, for context
	Err            error               // Underlying error, if any
	NetworkSubtype NetworkErrorSubtype // Connect failure detail
	Retryable      bool                // Whether the caller may retry
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Command != "" {
		msg = e.Command + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Type, so the package sentinels work
// with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Type == e.Type
}

// Sentinels for errors.Is
var (
	ErrValidation         = &Error{Type: ErrTypeValidation, Message: "invalid argument"}
	ErrConnection         = &Error{Type: ErrTypeConnection, Message: "connection failed"}
	ErrNotConnected       = &Error{Type: ErrTypeNotConnected, Message: "not connected"}
	ErrAlreadyConnecting  = &Error{Type: ErrTypeAlreadyConnecting, Message: "connection is being established"}
	ErrWriteIncomplete    = &Error{Type: ErrTypeWriteIncomplete, Message: "packet not fully written"}
	ErrTimeout            = &Error{Type: ErrTypeTimeout, Message: "no response"}
	ErrDevice             = &Error{Type: ErrTypeDevice, Message: "display reported an error"}
	ErrConnectionLost     = &Error{Type: ErrTypeConnectionLost, Message: "connection lost"}
	ErrUnexpectedResponse = &Error{Type: ErrTypeUnexpectedResponse, Message: "unexpected response"}
)

// NewValidationError creates a validation error
func NewValidationError(format string, args ...any) *Error {
	return &Error{Type: ErrTypeValidation, Message: fmt.Sprintf(format, args...)}
}

// NewUnexpectedResponseError reports an answer the caller could not interpret
func NewUnexpectedResponseError(command, parameters string) *Error {
	return &Error{
		Type:    ErrTypeUnexpectedResponse,
		Message: fmt.Sprintf("unexpected parameters %q", parameters),
		Command: command,
	}
}

// ClassifyNetworkError wraps a dial failure in an Error of type
// ErrTypeConnection with a subtype describing the cause.
func ClassifyNetworkError(err error, address string) *Error {
	if err == nil {
		return nil
	}

	e := &Error{
		Type:           ErrTypeConnection,
		Message:        "Network error occurred",
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
		Address:        address,
		Retryable:      true,
	}

	if os.IsTimeout(err) {
		e.Message = "Connection timed out"
		e.NetworkSubtype = NetworkErrorTimeout
		return e
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		e.Message = fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name)
		e.NetworkSubtype = NetworkErrorDNS
		e.Retryable = false
		return e
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			e.Message = "Display refused connection"
			e.NetworkSubtype = NetworkErrorConnectionRefused
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			e.Message = "Host unreachable"
			e.NetworkSubtype = NetworkErrorHostUnreachable
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			e.Message = "Network unreachable"
			e.NetworkSubtype = NetworkErrorNetworkUnreachable
		}
	}

	return e
}

func typeOf(err error) (ErrorType, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Type, true
	}
	return 0, false
}

func isType(err error, t ErrorType) bool {
	et, ok := typeOf(err)
	return ok && et == t
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool { return isType(err, ErrTypeValidation) }

// IsConnectionError checks if an error is a connect failure
func IsConnectionError(err error) bool { return isType(err, ErrTypeConnection) }

// IsTimeoutError checks if an error is a response timeout
func IsTimeoutError(err error) bool { return isType(err, ErrTypeTimeout) }

// IsDeviceError checks if the display answered with its error sentinel
func IsDeviceError(err error) bool { return isType(err, ErrTypeDevice) }

// IsConnectionLost checks if the connection dropped under a pending request
func IsConnectionLost(err error) bool { return isType(err, ErrTypeConnectionLost) }

// IsStateError checks for NotConnected and AlreadyConnecting
func IsStateError(err error) bool {
	return isType(err, ErrTypeNotConnected) || isType(err, ErrTypeAlreadyConnecting)
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "An unexpected error occurred. Please try again."
	}

	switch e.Type {
	case ErrTypeConnection:
		hint := []string{"Could not open the control connection."}
		switch e.NetworkSubtype {
		case NetworkErrorConnectionRefused:
			hint = append(hint,
				"Troubleshooting:",
				"  • Enable Settings > Network > Home network setup > IP control > Simple IP control",
				"  • Check that the address belongs to the TV and not another device",
				"  • Simple IP control listens on TCP port 20060",
				"  • Setup guide: "+urls.SimpleIPControl)
		case NetworkErrorHostUnreachable, NetworkErrorTimeout:
			hint = append(hint,
				"Troubleshooting:",
				"  • Verify the TV IP address is correct",
				"  • Check that you're on the same network as the TV",
				"  • Enable 'Remote start' so the network stays up in standby",
				"  • Try pinging the TV: ping "+e.Address)
		case NetworkErrorNetworkUnreachable:
			hint = append(hint,
				"Troubleshooting:",
				"  • Check your network adapter settings",
				"  • Verify this computer has a route to the TV's network")
		default:
			hint = append(hint,
				"Troubleshooting:",
				"  • Check your network connection",
				"  • Verify the TV is powered on or in network standby")
		}
		return strings.Join(hint, "\n")

	case ErrTypeTimeout:
		return strings.Join([]string{
			"The TV did not answer in time.",
			"Troubleshooting:",
			"  • Some commands are ignored while the TV is in standby",
			"  • Check that no other client is flooding the TV with requests",
			"  • Try again; the TV may be busy switching inputs",
		}, "\n")

	case ErrTypeDevice:
		return strings.Join([]string{
			"The TV could not execute the command.",
			"Troubleshooting:",
			"  • Many commands only work while the TV is on",
			"  • The requested input or setting may not exist on this model",
		}, "\n")

	case ErrTypeConnectionLost, ErrTypeNotConnected:
		return "The connection to the TV was closed. Reconnect and try again."

	case ErrTypeValidation:
		return "The arguments are invalid. Check the error message for details."

	case ErrTypeUnexpectedResponse:
		return "The TV sent an answer this tool does not understand. The model may use a different protocol revision.\n" +
			"Command reference: " + urls.SimpleIPCommands

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}

	switch e.Type {
	case ErrTypeConnection:
		switch e.NetworkSubtype {
		case NetworkErrorConnectionRefused:
			return "TV refused connection - is Simple IP control enabled?"
		case NetworkErrorTimeout:
			return "TV not reachable (timeout)"
		case NetworkErrorHostUnreachable:
			return "TV unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable"
		case NetworkErrorDNS:
			return "Cannot resolve TV hostname"
		default:
			return "Network error - check connection"
		}
	case ErrTypeTimeout:
		return "TV not responding (timeout)"
	case ErrTypeDevice:
		return "TV rejected the command"
	case ErrTypeConnectionLost:
		return "Connection to TV lost"
	case ErrTypeNotConnected:
		return "Not connected to TV"
	default:
		return e.Message
	}
}

package device

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"testing"

	"github.com/muurk/bravia/internal/urls"
)

// timeoutError implements net.Error with Timeout() == true
type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

func TestErrorIsMatchesType(t *testing.T) {
	err := fmt.Errorf("query power: %w", &Error{Type: ErrTypeTimeout, Message: "no answer", Command: "POWR"})

	if !errors.Is(err, ErrTimeout) {
		t.Error("errors.Is(err, ErrTimeout) = false, want true")
	}
	if errors.Is(err, ErrDevice) {
		t.Error("errors.Is(err, ErrDevice) = true, want false")
	}
	if !IsTimeoutError(err) {
		t.Error("IsTimeoutError() = false, want true")
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "plain",
			err:  &Error{Type: ErrTypeNotConnected, Message: "not connected"},
			want: "Not Connected: not connected",
		},
		{
			name: "with command",
			err:  &Error{Type: ErrTypeDevice, Message: "rejected", Command: "INPT"},
			want: "Device Error: INPT: rejected",
		},
		{
			name: "with cause",
			err:  &Error{Type: ErrTypeWriteIncomplete, Message: "wrote 0 of 24 bytes", Err: errors.New("broken pipe")},
			want: "Write Incomplete: wrote 0 of 24 bytes (caused by: broken pipe)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantSubtype   NetworkErrorSubtype
		wantRetryable bool
	}{
		{
			name:          "timeout",
			err:           &net.OpError{Op: "dial", Net: "tcp", Err: &timeoutError{}},
			wantSubtype:   NetworkErrorTimeout,
			wantRetryable: true,
		},
		{
			name:          "refused",
			err:           &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED},
			wantSubtype:   NetworkErrorConnectionRefused,
			wantRetryable: true,
		},
		{
			name:          "host unreachable",
			err:           &net.OpError{Op: "dial", Net: "tcp", Err: syscall.EHOSTUNREACH},
			wantSubtype:   NetworkErrorHostUnreachable,
			wantRetryable: true,
		},
		{
			name:          "network unreachable",
			err:           &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ENETUNREACH},
			wantSubtype:   NetworkErrorNetworkUnreachable,
			wantRetryable: true,
		},
		{
			name:          "dns",
			err:           &net.DNSError{Err: "no such host", Name: "tv.local", IsNotFound: true},
			wantSubtype:   NetworkErrorDNS,
			wantRetryable: false,
		},
		{
			name:          "generic",
			err:           errors.New("something odd"),
			wantSubtype:   NetworkErrorGeneral,
			wantRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyNetworkError(tt.err, "192.168.1.20")
			if got.Type != ErrTypeConnection {
				t.Errorf("Type = %v, want %v", got.Type, ErrTypeConnection)
			}
			if got.NetworkSubtype != tt.wantSubtype {
				t.Errorf("NetworkSubtype = %v, want %v", got.NetworkSubtype, tt.wantSubtype)
			}
			if got.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", got.Retryable, tt.wantRetryable)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classified error does not wrap the cause")
			}
		})
	}

	if ClassifyNetworkError(nil, "") != nil {
		t.Error("ClassifyNetworkError(nil) != nil")
	}
}

func TestHelpers(t *testing.T) {
	validation := NewValidationError("volume %d out of range", 101)
	if !IsValidationError(validation) || IsConnectionError(validation) {
		t.Error("validation helpers mismatch")
	}
	if validation.Message != "volume 101 out of range" {
		t.Errorf("Message = %q", validation.Message)
	}

	unexpected := NewUnexpectedResponseError("POWR", "0000000000000002")
	if !errors.Is(unexpected, ErrUnexpectedResponse) {
		t.Error("errors.Is(unexpected, ErrUnexpectedResponse) = false")
	}

	if !IsStateError(&Error{Type: ErrTypeAlreadyConnecting}) || !IsStateError(&Error{Type: ErrTypeNotConnected}) {
		t.Error("IsStateError() = false for state errors")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("IsRetryable(plain) = true")
	}
	if !IsDeviceError(&Error{Type: ErrTypeDevice}) || !IsConnectionLost(&Error{Type: ErrTypeConnectionLost}) {
		t.Error("type helpers mismatch")
	}
}

func TestTroubleshootingHints(t *testing.T) {
	refused := ClassifyNetworkError(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, "192.168.1.20")
	if hint := GetTroubleshootingHint(refused); !strings.Contains(hint, "Simple IP control") || !strings.Contains(hint, urls.SimpleIPControl) {
		t.Errorf("hint for refused = %q", hint)
	}
	unreachable := ClassifyNetworkError(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.EHOSTUNREACH}, "192.168.1.20")
	if hint := GetTroubleshootingHint(unreachable); !strings.Contains(hint, "ping 192.168.1.20") {
		t.Errorf("hint for unreachable = %q", hint)
	}
	if hint := GetTroubleshootingHint(errors.New("x")); !strings.Contains(hint, "unexpected") {
		t.Errorf("hint for plain error = %q", hint)
	}

	if got := GetShortErrorMessage(&Error{Type: ErrTypeTimeout}); got != "TV not responding (timeout)" {
		t.Errorf("GetShortErrorMessage() = %q", got)
	}
	if got := GetShortErrorMessage(NewValidationError("bad input")); got != "bad input" {
		t.Errorf("GetShortErrorMessage() = %q", got)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Disconnected:  "disconnected",
		Connecting:    "connecting",
		Connected:     "connected",
		Disconnecting: "disconnecting",
		State(9):      "State(9)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

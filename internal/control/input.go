package control

import (
	"context"
	"fmt"
	"strings"

	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/protocol"
)

// MaxInputPort is the largest port number the parameter layout can carry.
const MaxInputPort = 9999

// Input returns the active input. The zero Input means none is active;
// the display reports that either as all zeros or with its error sentinel.
func (c *Controller) Input(ctx context.Context) (protocol.Input, error) {
	pkt, err := c.sender.Send(ctx, device.Request{
		Type:              protocol.Enquiry,
		Command:           protocol.CommandInput,
		IgnoreDeviceError: true,
	})
	if err != nil {
		return protocol.Input{}, err
	}
	if pkt.IsDeviceError() {
		return protocol.Input{}, nil
	}
	in, ok := protocol.ParseInput(pkt.Parameters)
	if !ok {
		return protocol.Input{}, device.NewUnexpectedResponseError(protocol.CommandInput, pkt.Parameters)
	}
	return in, nil
}

// ParseInputType normalizes an input type name.
func ParseInputType(s string) (string, error) {
	typ := strings.ToLower(strings.TrimSpace(s))
	if _, ok := protocol.InputTypeDigit(typ); !ok {
		return "", device.NewValidationError("input type must be hdmi, component or mirroring, got %q", s)
	}
	return typ, nil
}

// SetInput switches to the given input. It returns the zero Input when the
// display reports the input as not available.
func (c *Controller) SetInput(ctx context.Context, typ string, port int) (protocol.Input, error) {
	typ, err := ParseInputType(typ)
	if err != nil {
		return protocol.Input{}, err
	}
	if port < 1 || port > MaxInputPort {
		return protocol.Input{}, device.NewValidationError("input port must be between 1 and %d, got %d", MaxInputPort, port)
	}

	digit, _ := protocol.InputTypeDigit(typ)
	params := fmt.Sprintf("0000000%c0000%04d", digit, port)

	pkt, err := c.control(ctx, protocol.CommandInput, params)
	if err != nil {
		return protocol.Input{}, err
	}
	switch pkt.Parameters {
	case protocol.SuccessParameters:
		return protocol.Input{Type: typ, Port: port}, nil
	case protocol.NotAvailableParameters:
		return protocol.Input{}, nil
	default:
		return protocol.Input{}, device.NewUnexpectedResponseError(protocol.CommandInput, pkt.Parameters)
	}
}

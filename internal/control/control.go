package control

import (
	"context"
	"strings"
	"time"

	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/protocol"
)

// DefaultPictureMuteSettle is how long TogglePictureMute waits before
// reading back the new state; the display answers the toggle before the
// panel has switched.
const DefaultPictureMuteSettle = 4 * time.Second

// Sender issues one request and returns the answer. *device.Device
// satisfies it.
type Sender interface {
	Send(ctx context.Context, req device.Request) (*protocol.Packet, error)
}

// Controller implements the named operations of the control protocol on
// top of a Sender.
type Controller struct {
	sender            Sender
	pictureMuteSettle time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithPictureMuteSettle overrides DefaultPictureMuteSettle.
func WithPictureMuteSettle(d time.Duration) Option {
	return func(c *Controller) {
		c.pictureMuteSettle = d
	}
}

// New returns a Controller that sends through s.
func New(s Sender, opts ...Option) *Controller {
	c := &Controller{
		sender:            s,
		pictureMuteSettle: DefaultPictureMuteSettle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send issues a raw request through the underlying Sender.
func (c *Controller) Send(ctx context.Context, req device.Request) (*protocol.Packet, error) {
	return c.sender.Send(ctx, req)
}

func (c *Controller) enquire(ctx context.Context, command, parameters string) (*protocol.Packet, error) {
	return c.sender.Send(ctx, device.Request{Type: protocol.Enquiry, Command: command, Parameters: parameters})
}

func (c *Controller) control(ctx context.Context, command, parameters string) (*protocol.Packet, error) {
	return c.sender.Send(ctx, device.Request{Type: protocol.Control, Command: command, Parameters: parameters})
}

// controlExpectSuccess sends a Control request whose only valid answer is
// the success value.
func (c *Controller) controlExpectSuccess(ctx context.Context, command, parameters string) error {
	pkt, err := c.control(ctx, command, parameters)
	if err != nil {
		return err
	}
	if pkt.Parameters != protocol.SuccessParameters {
		return device.NewUnexpectedResponseError(command, pkt.Parameters)
	}
	return nil
}

func (c *Controller) getBool(ctx context.Context, command string) (bool, error) {
	pkt, err := c.enquire(ctx, command, "")
	if err != nil {
		return false, err
	}
	v, ok := protocol.ParseBool(pkt.Parameters)
	if !ok {
		return false, device.NewUnexpectedResponseError(command, pkt.Parameters)
	}
	return v, nil
}

func boolParameters(on bool) string {
	if on {
		return protocol.ParametersOn
	}
	return protocol.ParametersOff
}

// padHash right-pads s with '#' to the parameter width.
func padHash(s string) string {
	if len(s) >= protocol.ParameterSize {
		return s
	}
	return s + strings.Repeat("#", protocol.ParameterSize-len(s))
}

func trimHash(s string) string {
	return strings.TrimRight(s, "#")
}

// sleep waits for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

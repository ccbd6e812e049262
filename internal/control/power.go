package control

import (
	"context"

	"github.com/muurk/bravia/internal/protocol"
)

// PowerStatus reports whether the display is on.
func (c *Controller) PowerStatus(ctx context.Context) (bool, error) {
	return c.getBool(ctx, protocol.CommandPower)
}

// SetPower turns the display on or off and returns the state read back
// afterwards.
func (c *Controller) SetPower(ctx context.Context, on bool) (bool, error) {
	if err := c.controlExpectSuccess(ctx, protocol.CommandPower, boolParameters(on)); err != nil {
		return false, err
	}
	return c.PowerStatus(ctx)
}

// PowerOn turns the display on
func (c *Controller) PowerOn(ctx context.Context) (bool, error) {
	return c.SetPower(ctx, true)
}

// PowerOff puts the display in standby
func (c *Controller) PowerOff(ctx context.Context) (bool, error) {
	return c.SetPower(ctx, false)
}

// TogglePower flips the power state and returns the new one.
func (c *Controller) TogglePower(ctx context.Context) (bool, error) {
	if err := c.controlExpectSuccess(ctx, protocol.CommandTogglePower, ""); err != nil {
		return false, err
	}
	return c.PowerStatus(ctx)
}

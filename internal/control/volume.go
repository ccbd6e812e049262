package control

import (
	"context"
	"fmt"

	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/protocol"
)

// Volume limits
const (
	MinVolume   = 0
	MaxVolume   = 100
	DefaultStep = 1
)

// Volume returns the current speaker volume.
func (c *Controller) Volume(ctx context.Context) (int, error) {
	pkt, err := c.enquire(ctx, protocol.CommandVolume, "")
	if err != nil {
		return 0, err
	}
	v, ok := protocol.ParseDigits(pkt.Parameters)
	if !ok {
		return 0, device.NewUnexpectedResponseError(protocol.CommandVolume, pkt.Parameters)
	}
	return v, nil
}

// SetVolume sets the volume (0-100) and returns the value read back.
func (c *Controller) SetVolume(ctx context.Context, volume int) (int, error) {
	if volume < MinVolume || volume > MaxVolume {
		return 0, device.NewValidationError("volume must be between %d and %d, got %d", MinVolume, MaxVolume, volume)
	}
	if err := c.controlExpectSuccess(ctx, protocol.CommandVolume, fmt.Sprintf("%016d", volume)); err != nil {
		return 0, err
	}
	return c.Volume(ctx)
}

// VolumeUp raises the volume by step, clamped to MaxVolume. A step of 0
// means DefaultStep.
func (c *Controller) VolumeUp(ctx context.Context, step int) (int, error) {
	return c.stepVolume(ctx, step, 1)
}

// VolumeDown lowers the volume by step, clamped to MinVolume. A step of 0
// means DefaultStep.
func (c *Controller) VolumeDown(ctx context.Context, step int) (int, error) {
	return c.stepVolume(ctx, step, -1)
}

func (c *Controller) stepVolume(ctx context.Context, step, sign int) (int, error) {
	if step == 0 {
		step = DefaultStep
	}
	if step < 1 || step > MaxVolume {
		return 0, device.NewValidationError("step must be between 1 and %d, got %d", MaxVolume, step)
	}

	current, err := c.Volume(ctx)
	if err != nil {
		return 0, err
	}
	target := current + sign*step
	if target > MaxVolume {
		target = MaxVolume
	}
	if target < MinVolume {
		target = MinVolume
	}
	return c.SetVolume(ctx, target)
}

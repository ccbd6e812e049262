package control

import (
	"context"

	"github.com/muurk/bravia/internal/protocol"
)

// AudioMute reports whether audio is muted.
func (c *Controller) AudioMute(ctx context.Context) (bool, error) {
	return c.getBool(ctx, protocol.CommandAudioMute)
}

// SetAudioMute mutes or unmutes audio.
func (c *Controller) SetAudioMute(ctx context.Context, muted bool) error {
	return c.controlExpectSuccess(ctx, protocol.CommandAudioMute, boolParameters(muted))
}

// Mute mutes audio
func (c *Controller) Mute(ctx context.Context) error {
	return c.SetAudioMute(ctx, true)
}

// Unmute unmutes audio
func (c *Controller) Unmute(ctx context.Context) error {
	return c.SetAudioMute(ctx, false)
}

// PictureMute reports whether the picture is blanked.
func (c *Controller) PictureMute(ctx context.Context) (bool, error) {
	return c.getBool(ctx, protocol.CommandPictureMute)
}

// SetPictureMute blanks or restores the picture.
func (c *Controller) SetPictureMute(ctx context.Context, muted bool) error {
	return c.controlExpectSuccess(ctx, protocol.CommandPictureMute, boolParameters(muted))
}

// MutePicture blanks the picture
func (c *Controller) MutePicture(ctx context.Context) error {
	return c.SetPictureMute(ctx, true)
}

// UnmutePicture restores the picture
func (c *Controller) UnmutePicture(ctx context.Context) error {
	return c.SetPictureMute(ctx, false)
}

// TogglePictureMute flips picture mute, waits for the panel to settle and
// returns the new state.
func (c *Controller) TogglePictureMute(ctx context.Context) (bool, error) {
	if err := c.controlExpectSuccess(ctx, protocol.CommandTogglePictureMute, ""); err != nil {
		return false, err
	}
	if err := sleep(ctx, c.pictureMuteSettle); err != nil {
		return false, err
	}
	return c.PictureMute(ctx)
}

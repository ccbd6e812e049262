package control

import (
	"context"
	"time"

	"github.com/muurk/bravia/internal/protocol"
)

// Snapshot is the display state as last read or notified. Nil fields were
// never read, or could not be read while the display was off.
type Snapshot struct {
	Power       bool              `json:"power"`
	Volume      *int              `json:"volume,omitempty"`
	AudioMute   *bool             `json:"audio_mute,omitempty"`
	PictureMute *bool             `json:"picture_mute,omitempty"`
	Input       *protocol.Input   `json:"input,omitempty"`
	Scene       *string           `json:"scene,omitempty"`
	Errors      map[string]string `json:"errors,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Snapshot reads power and, when the display is on, every other queryable
// setting. Failures of individual settings are recorded in Errors; only a
// failed power query fails the call.
func (c *Controller) Snapshot(ctx context.Context) (*Snapshot, error) {
	power, err := c.PowerStatus(ctx)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{Power: power, UpdatedAt: time.Now()}
	if !power {
		return s, nil
	}

	record := func(field string, err error) bool {
		if err == nil {
			return true
		}
		if s.Errors == nil {
			s.Errors = make(map[string]string)
		}
		s.Errors[field] = err.Error()
		return false
	}

	if v, err := c.Volume(ctx); record("volume", err) {
		s.Volume = &v
	}
	if v, err := c.AudioMute(ctx); record("audio_mute", err) {
		s.AudioMute = &v
	}
	if v, err := c.PictureMute(ctx); record("picture_mute", err) {
		s.PictureMute = &v
	}
	if v, err := c.Input(ctx); record("input", err) {
		s.Input = &v
	}
	if v, err := c.Scene(ctx); record("scene", err) {
		s.Scene = &v
	}
	return s, nil
}

// Apply folds a notification into the snapshot. It reports whether any
// field changed.
func (s *Snapshot) Apply(n protocol.Notification) bool {
	changed := false
	switch n.Command {
	case protocol.CommandPower:
		changed = s.Power != n.Status
		s.Power = n.Status
	case protocol.CommandVolume:
		changed = s.Volume == nil || *s.Volume != n.Volume
		v := n.Volume
		s.Volume = &v
	case protocol.CommandAudioMute:
		changed = s.AudioMute == nil || *s.AudioMute != n.Status
		v := n.Status
		s.AudioMute = &v
	case protocol.CommandPictureMute:
		changed = s.PictureMute == nil || *s.PictureMute != n.Status
		v := n.Status
		s.PictureMute = &v
	case protocol.CommandInput:
		changed = s.Input == nil || *s.Input != n.Input
		v := n.Input
		s.Input = &v
	default:
		return false
	}
	s.UpdatedAt = time.Now()
	return changed
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	if s.Volume != nil {
		v := *s.Volume
		out.Volume = &v
	}
	if s.AudioMute != nil {
		v := *s.AudioMute
		out.AudioMute = &v
	}
	if s.PictureMute != nil {
		v := *s.PictureMute
		out.PictureMute = &v
	}
	if s.Input != nil {
		v := *s.Input
		out.Input = &v
	}
	if s.Scene != nil {
		v := *s.Scene
		out.Scene = &v
	}
	if s.Errors != nil {
		out.Errors = make(map[string]string, len(s.Errors))
		for k, v := range s.Errors {
			out.Errors[k] = v
		}
	}
	return &out
}

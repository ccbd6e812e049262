package control

import (
	"context"
	"errors"
	"testing"

	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/protocol"
)

func TestSnapshotPoweredOff(t *testing.T) {
	c := New(newScript(t, enquiry("POWR", off)))
	s, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if s.Power || s.Volume != nil || s.Input != nil {
		t.Errorf("Snapshot() = %+v, want only power", s)
	}
}

func TestSnapshotPoweredOn(t *testing.T) {
	c := New(newScript(t,
		enquiry("POWR", on),
		enquiry("VOLU", "0000000000000025"),
		enquiry("AMUT", off),
		step{typ: protocol.Enquiry, command: "PMUT", err: &device.Error{Type: device.ErrTypeTimeout, Message: "no answer"}},
		step{typ: protocol.Enquiry, command: "INPT", ignore: true, answer: "0000000100000002"},
		enquiry("SCEN", "general#########"),
	))

	s, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if !s.Power {
		t.Error("Power = false")
	}
	if s.Volume == nil || *s.Volume != 25 {
		t.Errorf("Volume = %v, want 25", s.Volume)
	}
	if s.AudioMute == nil || *s.AudioMute {
		t.Errorf("AudioMute = %v, want false", s.AudioMute)
	}
	if s.PictureMute != nil {
		t.Errorf("PictureMute = %v, want nil", *s.PictureMute)
	}
	if _, ok := s.Errors["picture_mute"]; !ok {
		t.Errorf("Errors = %v, want picture_mute entry", s.Errors)
	}
	if s.Input == nil || *s.Input != (protocol.Input{Type: "hdmi", Port: 2}) {
		t.Errorf("Input = %v", s.Input)
	}
	if s.Scene == nil || *s.Scene != "general" {
		t.Errorf("Scene = %v", s.Scene)
	}
}

func TestSnapshotPowerFailure(t *testing.T) {
	c := New(newScript(t, step{typ: protocol.Enquiry, command: "POWR", err: &device.Error{Type: device.ErrTypeNotConnected}}))
	if _, err := c.Snapshot(context.Background()); !errors.Is(err, device.ErrNotConnected) {
		t.Errorf("Snapshot() error = %v, want ErrNotConnected", err)
	}
}

func TestSnapshotApply(t *testing.T) {
	s := &Snapshot{}

	tests := []struct {
		n           protocol.Notification
		wantChanged bool
	}{
		{protocol.Notification{Command: "POWR", Status: true}, true},
		{protocol.Notification{Command: "POWR", Status: true}, false},
		{protocol.Notification{Command: "VOLU", Volume: 12}, true},
		{protocol.Notification{Command: "VOLU", Volume: 12}, false},
		{protocol.Notification{Command: "AMUT", Status: true}, true},
		{protocol.Notification{Command: "PMUT", Status: false}, true},
		{protocol.Notification{Command: "INPT", Input: protocol.Input{Type: "hdmi", Port: 4}}, true},
		{protocol.Notification{Command: "SCEN"}, false},
	}
	for i, tt := range tests {
		if got := s.Apply(tt.n); got != tt.wantChanged {
			t.Errorf("step %d Apply(%+v) = %v, want %v", i, tt.n, got, tt.wantChanged)
		}
	}

	if !s.Power || *s.Volume != 12 || !*s.AudioMute || *s.PictureMute || s.Input.Port != 4 {
		t.Errorf("snapshot = %+v", s)
	}

	clone := s.Clone()
	*clone.Volume = 50
	if *s.Volume != 12 {
		t.Error("Clone() shares the volume pointer")
	}
}

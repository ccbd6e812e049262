package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/muurk/bravia/internal/control"
	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/discovery"
	"github.com/muurk/bravia/internal/protocol"
)

func TestSnapshotDetails(t *testing.T) {
	vol := 12
	mute := false
	input := protocol.Input{Type: protocol.InputHDMI, Port: 2}

	details := SnapshotDetails(&control.Snapshot{Power: true, Volume: &vol, AudioMute: &mute, Input: &input})

	want := map[string]string{
		"Volume":       "12",
		"Input":        "hdmi 2",
		"Scene":        "-",
		"Picture mute": "-",
	}
	for _, d := range details {
		if w, ok := want[d.Key]; ok && d.Value != w {
			t.Errorf("%s = %q, want %q", d.Key, d.Value, w)
		}
	}
	if details[0].Key != "Power" {
		t.Errorf("first detail = %q, want Power", details[0].Key)
	}

	if got := SnapshotDetails(&control.Snapshot{}); len(got) != 1 {
		t.Errorf("powered-off snapshot has %d details, want 1", len(got))
	}
}

func TestRenderDeviceTable(t *testing.T) {
	out := RenderDeviceTable([]*discovery.Device{
		{Address: "192.168.1.20", Model: "KD-55X85J"},
		{Address: "10.0.0.3", Name: "BRAVIA-abc"},
	})
	for _, s := range []string{"192.168.1.20", "KD-55X85J", "BRAVIA-abc"} {
		if !strings.Contains(out, s) {
			t.Errorf("table missing %q:\n%s", s, out)
		}
	}

	if out := RenderDeviceTable(nil); !strings.Contains(out, "No BRAVIA displays") {
		t.Errorf("empty table = %q", out)
	}
}

func TestTroubleshooting(t *testing.T) {
	err := &device.Error{Type: device.ErrTypeTimeout, Message: "no answer"}
	tips := troubleshooting(err)
	if len(tips) == 0 {
		t.Fatal("no tips for timeout error")
	}
	for _, tip := range tips {
		if strings.HasPrefix(tip, "•") {
			t.Errorf("tip %q keeps the bullet", tip)
		}
	}

	if tips := troubleshooting(errors.New("plain")); len(tips) != 0 {
		t.Errorf("plain error tips = %v, want none", tips)
	}
}

func TestShortErrorUnwraps(t *testing.T) {
	err := &device.Error{Type: device.ErrTypeTimeout, Message: "no answer"}
	short := shortError(err)
	if !errors.Is(short, device.ErrTimeout) {
		t.Error("short error lost its cause")
	}
	if !strings.Contains(short.Error(), "TV not responding") {
		t.Errorf("short error = %q", short.Error())
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		if got := Confirm(strings.NewReader(tt.input), &out, "Remove?"); got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestResultRender(t *testing.T) {
	out := NewSuccessResult("Volume set", Detail{Key: "Volume", Value: "20"}).SetWidth(80).Render()
	if !strings.Contains(out, "Volume set") || !strings.Contains(out, "20") {
		t.Errorf("Render() = %q", out)
	}

	out = NewFailureResult("Failed", errors.New("boom"), "check cable").SetWidth(80).Render()
	for _, s := range []string{"FAILED", "boom", "check cable"} {
		if !strings.Contains(out, s) {
			t.Errorf("failure box missing %q", s)
		}
	}
}

func TestDescribeNotification(t *testing.T) {
	tests := []struct {
		n    protocol.Notification
		want string
	}{
		{protocol.Notification{Command: protocol.CommandPower, Status: true}, "power on"},
		{protocol.Notification{Command: protocol.CommandVolume, Volume: 20}, "volume 20"},
		{protocol.Notification{Command: protocol.CommandAudioMute}, "audio mute off"},
		{protocol.Notification{Command: protocol.CommandPictureMute, Status: true}, "picture mute on"},
		{protocol.Notification{Command: protocol.CommandInput, Input: protocol.Input{Type: protocol.InputHDMI, Port: 2}}, "input hdmi 2"},
		{protocol.Notification{Command: protocol.CommandInput}, "input none"},
	}
	for _, tt := range tests {
		if got := DescribeNotification(tt.n); got != tt.want {
			t.Errorf("DescribeNotification(%+v) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

package simulator

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/muurk/bravia/internal/control"
	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/protocol"
)

func startSim(t *testing.T, st State) (*Simulator, *control.Controller, *device.Device) {
	t.Helper()
	sim := New(st)
	if err := sim.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	t.Cleanup(func() { _ = sim.Close() })

	dev, err := device.New("127.0.0.1", device.WithPort(sim.Port()), device.WithResponseTimeout(time.Second))
	if err != nil {
		t.Fatalf("device.New() error = %v", err)
	}
	if err := dev.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = dev.Disconnect(context.Background()) })
	return sim, control.New(dev, control.WithPictureMuteSettle(0)), dev
}

func TestControllerAgainstSimulator(t *testing.T) {
	_, ctl, _ := startSim(t, DefaultState())
	ctx := context.Background()

	if on, err := ctl.PowerStatus(ctx); err != nil || on {
		t.Fatalf("PowerStatus() = %v, %v, want false", on, err)
	}
	if _, err := ctl.Volume(ctx); !device.IsDeviceError(err) {
		t.Errorf("Volume() in standby error = %v, want device error", err)
	}

	if on, err := ctl.PowerOn(ctx); err != nil || !on {
		t.Fatalf("PowerOn() = %v, %v", on, err)
	}
	if v, err := ctl.SetVolume(ctx, 42); err != nil || v != 42 {
		t.Errorf("SetVolume(42) = %v, %v", v, err)
	}
	in, err := ctl.SetInput(ctx, "HDMI", 3)
	if err != nil || in != (protocol.Input{Type: protocol.InputHDMI, Port: 3}) {
		t.Errorf("SetInput(hdmi 3) = %v, %v", in, err)
	}
	if in, err := ctl.SetInput(ctx, "hdmi", 9); err != nil || !in.IsNone() {
		t.Errorf("SetInput(hdmi 9) = %v, %v, want none", in, err)
	}
	if sc, err := ctl.SetScene(ctx, "general"); err != nil || sc != "general" {
		t.Errorf("SetScene() = %q, %v", sc, err)
	}
	if mac, err := ctl.MACAddress(ctx, "eth0"); err != nil || mac != "01-23-45-67-89-AB" {
		t.Errorf("MACAddress() = %q, %v", mac, err)
	}
	if on, err := ctl.TogglePictureMute(ctx); err != nil || !on {
		t.Errorf("TogglePictureMute() = %v, %v", on, err)
	}

	snap, err := ctl.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if !snap.Power || *snap.Volume != 42 || *snap.Scene != "general" || !*snap.PictureMute || len(snap.Errors) != 0 {
		t.Errorf("Snapshot() = %+v", snap)
	}
}

func TestUpdateNotifiesClients(t *testing.T) {
	sim, _, dev := startSim(t, DefaultState())

	got := make(chan protocol.Notification, 4)
	dev.OnNotify(func(n protocol.Notification) { got <- n })

	sim.Update(func(s *State) {
		s.Power = true
		s.Volume = 30
	})

	want := []protocol.Notification{
		{Command: protocol.CommandPower, Status: true},
		{Command: protocol.CommandVolume, Volume: 30},
	}
	for _, w := range want {
		select {
		case n := <-got:
			if n != w {
				t.Errorf("notification = %+v, want %+v", n, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("no notification for %s", w.Command)
		}
	}
}

func TestDropClients(t *testing.T) {
	sim, _, dev := startSim(t, DefaultState())

	closed := make(chan device.CloseEvent, 1)
	dev.OnClose(func(ev device.CloseEvent) { closed <- ev })

	sim.DropClients()
	select {
	case ev := <-closed:
		if ev.Intentional {
			t.Error("close event is intentional, want unsolicited")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("device did not observe the drop")
	}
}

func TestIgnoresAnswerAndNotifyPackets(t *testing.T) {
	sim := New(DefaultState())
	if err := sim.Listen("127.0.0.1:0"); err != nil {
		t.Fatal(err)
	}
	defer sim.Close()

	conn, err := net.Dial("tcp", sim.ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	ignored, _ := protocol.Encode(protocol.Answer, "POWR", "")
	query, _ := protocol.Encode(protocol.Enquiry, "POWR", "")
	_, _ = conn.Write(append(ignored, query...))

	buf := make([]byte, protocol.PacketSize)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Read(buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	pkt, ok := protocol.Decode(buf)
	if !ok || pkt.Type != protocol.Answer || pkt.Parameters != protocol.ParametersOff {
		t.Errorf("answer = %+v", pkt)
	}
}

func TestParseState(t *testing.T) {
	st, err := ParseState(DefaultState(), "power=on volume=20 input=hdmi:2 mute=on scene=general")
	if err != nil {
		t.Fatalf("ParseState() error = %v", err)
	}
	if !st.Power || st.Volume != 20 || st.Input.Port != 2 || !st.AudioMute || st.Scene != "general" {
		t.Errorf("ParseState() = %+v", st)
	}

	for _, bad := range []string{"power", "volume=101", "input=hdmi", "color=red", "mute=maybe"} {
		if _, err := ParseState(DefaultState(), bad); err == nil {
			t.Errorf("ParseState(%q) error = nil", bad)
		}
	}
}

func TestNotificationParameters(t *testing.T) {
	tests := []struct {
		n    protocol.Notification
		want string
	}{
		{protocol.Notification{Command: protocol.CommandPower, Status: true}, "0000000000000001"},
		{protocol.Notification{Command: protocol.CommandVolume, Volume: 7}, "0000000000000007"},
		{protocol.Notification{Command: protocol.CommandInput, Input: protocol.Input{Type: protocol.InputHDMI, Port: 2}}, "0000000100000002"},
		{protocol.Notification{Command: protocol.CommandInput}, "0000000000000000"},
	}
	for _, tt := range tests {
		if got := NotificationParameters(tt.n); got != tt.want {
			t.Errorf("NotificationParameters(%+v) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

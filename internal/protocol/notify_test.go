package protocol

import "testing"

func TestDecodeNotification(t *testing.T) {
	tests := []struct {
		name   string
		packet *Packet
		want   Notification
		wantOK bool
	}{
		{
			name:   "power on",
			packet: &Packet{Type: Notify, Command: "POWR", Parameters: "0000000000000001"},
			want:   Notification{Command: "POWR", Status: true},
			wantOK: true,
		},
		{
			name:   "power off",
			packet: &Packet{Type: Notify, Command: "POWR", Parameters: "0000000000000000"},
			want:   Notification{Command: "POWR", Status: false},
			wantOK: true,
		},
		{
			name:   "power bad payload",
			packet: &Packet{Type: Notify, Command: "POWR", Parameters: "0000000000000002"},
		},
		{
			name:   "audio mute non-boolean",
			packet: &Packet{Type: Notify, Command: "AMUT", Parameters: "0000000100010001"},
		},
		{
			name:   "picture mute on",
			packet: &Packet{Type: Notify, Command: "PMUT", Parameters: "0000000000000001"},
			want:   Notification{Command: "PMUT", Status: true},
			wantOK: true,
		},
		{
			name:   "input hdmi 1",
			packet: &Packet{Type: Notify, Command: "INPT", Parameters: "0000000100000001"},
			want:   Notification{Command: "INPT", Input: Input{Type: "hdmi", Port: 1}},
			wantOK: true,
		},
		{
			name:   "input component 2",
			packet: &Packet{Type: Notify, Command: "INPT", Parameters: "0000000400000002"},
			want:   Notification{Command: "INPT", Input: Input{Type: "component", Port: 2}},
			wantOK: true,
		},
		{
			name:   "input mirroring",
			packet: &Packet{Type: Notify, Command: "INPT", Parameters: "0000000500000001"},
			want:   Notification{Command: "INPT", Input: Input{Type: "mirroring", Port: 1}},
			wantOK: true,
		},
		{
			name:   "input none",
			packet: &Packet{Type: Notify, Command: "INPT", Parameters: "0000000000000000"},
			want:   Notification{Command: "INPT", Input: Input{}},
			wantOK: true,
		},
		{
			name:   "input unknown type digit",
			packet: &Packet{Type: Notify, Command: "INPT", Parameters: "0000000300000001"},
		},
		{
			name:   "input bad port",
			packet: &Packet{Type: Notify, Command: "INPT", Parameters: "00000001000####1"},
		},
		{
			name:   "volume",
			packet: &Packet{Type: Notify, Command: "VOLU", Parameters: "0000000000000042"},
			want:   Notification{Command: "VOLU", Volume: 42},
			wantOK: true,
		},
		{
			name:   "volume not digits",
			packet: &Packet{Type: Notify, Command: "VOLU", Parameters: "FFFFFFFFFFFFFFFF"},
		},
		{
			name:   "unsupported command",
			packet: &Packet{Type: Notify, Command: "SCEN", Parameters: "auto############"},
		},
		{
			name:   "answer is not a notification",
			packet: &Packet{Type: Answer, Command: "POWR", Parameters: "0000000000000001"},
		},
		{
			name: "nil packet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeNotification(tt.packet)
			if ok != tt.wantOK {
				t.Fatalf("DecodeNotification() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("DecodeNotification() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInputTypeDigit(t *testing.T) {
	for _, typ := range []string{InputHDMI, InputComponent, InputMirroring} {
		d, ok := InputTypeDigit(typ)
		if !ok {
			t.Fatalf("InputTypeDigit(%q) not ok", typ)
		}
		params := "0000000" + string(d) + "00000003"
		in, ok := ParseInput(params)
		if !ok || in.Type != typ || in.Port != 3 {
			t.Errorf("ParseInput(%q) = %+v, %v", params, in, ok)
		}
	}
	if _, ok := InputTypeDigit("vga"); ok {
		t.Error("InputTypeDigit(vga) ok = true, want false")
	}
}

func TestInputString(t *testing.T) {
	if got := (Input{}).String(); got != "none" {
		t.Errorf("String() = %q, want none", got)
	}
	if got := (Input{Type: InputHDMI, Port: 2}).String(); got != "hdmi 2" {
		t.Errorf("String() = %q, want %q", got, "hdmi 2")
	}
}

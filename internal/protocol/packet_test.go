package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodePowerOn(t *testing.T) {
	got, err := Encode(Control, "POWR", "0000000000000001")
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := []byte{
		0x2A, 0x53, 0x43, 0x50, 0x4F, 0x57, 0x52,
		0x30, 0x30, 0x30, 0x30, 0x30, 0x30, 0x30, 0x30,
		0x30, 0x30, 0x30, 0x30, 0x30, 0x30, 0x30, 0x31,
		0x0A,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() = % X, want % X", got, want)
	}
}

func TestEncodeDefaultParameters(t *testing.T) {
	got, err := Encode(Enquiry, "VOLU", "")
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(got) != PacketSize {
		t.Fatalf("len = %d, want %d", len(got), PacketSize)
	}
	if string(got[7:23]) != DefaultParameters {
		t.Errorf("parameters = %q, want %q", got[7:23], DefaultParameters)
	}
	if got[2] != 'E' {
		t.Errorf("type byte = 0x%02X, want 0x45", got[2])
	}
}

func TestEncodeValidation(t *testing.T) {
	tests := []struct {
		name       string
		typ        MessageType
		command    string
		parameters string
		wantErr    error
	}{
		{"answer type", Answer, "POWR", "", ErrInvalidType},
		{"notify type", Notify, "POWR", "", ErrInvalidType},
		{"unknown type", MessageType('X'), "POWR", "", ErrInvalidType},
		{"lower case command", Control, "powr", "", ErrInvalidCommand},
		{"short command", Control, "POW", "", ErrInvalidCommand},
		{"long command", Control, "POWER", "", ErrInvalidCommand},
		{"digit in command", Control, "POW1", "", ErrInvalidCommand},
		{"short parameters", Control, "POWR", "0001", ErrInvalidParameters},
		{"long parameters", Control, "POWR", "00000000000000001", ErrInvalidParameters},
		{"bad character", Control, "POWR", "000000000000000-", ErrInvalidParameters},
		{"space", Control, "POWR", "auto24pSync #### ", ErrInvalidParameters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.typ, tt.command, tt.parameters)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Encode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		typ        MessageType
		command    string
		parameters string
	}{
		{Control, "POWR", "0000000000000001"},
		{Enquiry, "POWR", "################"},
		{Control, "SCEN", "auto24pSync#####"},
		{Enquiry, "MADR", "eth0############"},
		{Control, "INPT", "0000000100000004"},
		{Control, "ZZZZ", "AbCdEfGh01234567"},
	}

	for _, tt := range tests {
		buf, err := Encode(tt.typ, tt.command, tt.parameters)
		if err != nil {
			t.Fatalf("Encode(%c, %s, %s) error = %v", tt.typ, tt.command, tt.parameters, err)
		}
		pkt, ok := Decode(buf)
		if !ok {
			t.Fatalf("Decode(Encode(%s)) returned not ok", tt.command)
		}
		want := Packet{Type: tt.typ, Command: tt.command, Parameters: tt.parameters}
		if *pkt != want {
			t.Errorf("Decode(Encode()) = %+v, want %+v", *pkt, want)
		}
	}
}

func TestDecodeRejects(t *testing.T) {
	valid := func() []byte {
		return []byte("*SAPOWR0000000000000001\n")
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", valid()[:23]},
		{"long", append(valid(), '\n')},
		{"bad header byte 0", func() []byte { b := valid(); b[0] = 0x2B; return b }()},
		{"bad header byte 1", func() []byte { b := valid(); b[1] = 0x54; return b }()},
		{"bad footer", func() []byte { b := valid(); b[23] = 0x0D; return b }()},
		{"bad type", func() []byte { b := valid(); b[2] = 'X'; return b }()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if pkt, ok := Decode(tt.data); ok {
				t.Errorf("Decode() = %+v, want not ok", pkt)
			}
		})
	}

	if _, ok := Decode(valid()); !ok {
		t.Error("Decode() rejected a valid answer packet")
	}
}

func TestDecodeAllTypes(t *testing.T) {
	for _, typ := range []MessageType{Control, Enquiry, Answer, Notify} {
		data := []byte("*S?VOLU0000000000000030\n")
		data[2] = byte(typ)
		pkt, ok := Decode(data)
		if !ok {
			t.Fatalf("Decode() type %s not ok", typ)
		}
		if pkt.Type != typ {
			t.Errorf("Type = %s, want %s", pkt.Type, typ)
		}
		if pkt.Command != "VOLU" || pkt.Parameters != "0000000000000030" {
			t.Errorf("Decode() = %+v", pkt)
		}
	}
}

func TestParseMessageType(t *testing.T) {
	tests := []struct {
		in   string
		want MessageType
	}{
		{"C", Control},
		{"e", Enquiry},
		{"answer", Answer},
		{"NOTIFY", Notify},
	}
	for _, tt := range tests {
		got, err := ParseMessageType(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseMessageType(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseMessageType("X"); !errors.Is(err, ErrInvalidType) {
		t.Errorf("ParseMessageType(X) error = %v, want ErrInvalidType", err)
	}
}

func TestIsDeviceError(t *testing.T) {
	p := &Packet{Type: Answer, Command: "INPT", Parameters: DeviceErrorParameters}
	if !p.IsDeviceError() {
		t.Error("IsDeviceError() = false, want true")
	}
	p.Parameters = SuccessParameters
	if p.IsDeviceError() {
		t.Error("IsDeviceError() = true, want false")
	}
}

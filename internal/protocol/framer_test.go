package protocol

import (
	"bytes"
	"testing"
)

func mustEncode(t *testing.T, typ MessageType, command, parameters string) []byte {
	t.Helper()
	buf, err := Encode(typ, command, parameters)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return buf
}

func answerBytes(command, parameters string) []byte {
	return []byte("*SA" + command + parameters + "\n")
}

func notifyBytes(command, parameters string) []byte {
	return []byte("*SN" + command + parameters + "\n")
}

func TestFramerSinglePacket(t *testing.T) {
	f := NewFramer()
	pkts := f.Feed(answerBytes("POWR", ParametersOn))
	if len(pkts) != 1 {
		t.Fatalf("got %d packets, want 1", len(pkts))
	}
	if pkts[0].Command != "POWR" || pkts[0].Type != Answer {
		t.Errorf("packet = %+v", pkts[0])
	}
	if f.Buffered() != 0 {
		t.Errorf("Buffered() = %d, want 0", f.Buffered())
	}
}

func TestFramerSplitAcrossReads(t *testing.T) {
	data := answerBytes("VOLU", "0000000000000025")
	f := NewFramer()

	for i := 0; i < len(data)-1; i++ {
		if pkts := f.Feed(data[i : i+1]); len(pkts) != 0 {
			t.Fatalf("got packet after %d bytes", i+1)
		}
	}
	pkts := f.Feed(data[len(data)-1:])
	if len(pkts) != 1 {
		t.Fatalf("got %d packets, want 1", len(pkts))
	}
	if pkts[0].Parameters != "0000000000000025" {
		t.Errorf("Parameters = %q", pkts[0].Parameters)
	}
}

func TestFramerCoalescedPackets(t *testing.T) {
	var stream []byte
	stream = append(stream, notifyBytes("POWR", ParametersOn)...)
	stream = append(stream, answerBytes("POWR", SuccessParameters)...)
	stream = append(stream, notifyBytes("VOLU", "0000000000000010")...)

	f := NewFramer()
	pkts := f.Feed(stream)
	if len(pkts) != 3 {
		t.Fatalf("got %d packets, want 3", len(pkts))
	}
	wantTypes := []MessageType{Notify, Answer, Notify}
	for i, p := range pkts {
		if p.Type != wantTypes[i] {
			t.Errorf("packet %d type = %s, want %s", i, p.Type, wantTypes[i])
		}
	}
}

func TestFramerResyncsAfterNoise(t *testing.T) {
	var stream []byte
	stream = append(stream, []byte("garbage\r\n")...)
	stream = append(stream, answerBytes("AMUT", ParametersOff)...)
	// Header followed by a corrupt frame (wrong footer).
	bad := answerBytes("PMUT", ParametersOff)
	bad[23] = 'x'
	stream = append(stream, bad...)
	stream = append(stream, notifyBytes("INPT", "0000000100000002")...)

	f := NewFramer()
	pkts := f.Feed(stream)
	if len(pkts) != 2 {
		t.Fatalf("got %d packets, want 2", len(pkts))
	}
	if pkts[0].Command != "AMUT" || pkts[1].Command != "INPT" {
		t.Errorf("commands = %s, %s, want AMUT, INPT", pkts[0].Command, pkts[1].Command)
	}
	if d := f.Dropped(); d != len("garbage\r\n")+len(bad) {
		t.Errorf("Dropped() = %d, want %d", d, len("garbage\r\n")+len(bad))
	}
	if d := f.Dropped(); d != 0 {
		t.Errorf("Dropped() after reset = %d, want 0", d)
	}
}

func TestFramerKeepsTrailingHeaderByte(t *testing.T) {
	data := notifyBytes("PMUT", ParametersOn)
	f := NewFramer()

	if pkts := f.Feed(append([]byte("xx"), data[0])); len(pkts) != 0 {
		t.Fatal("unexpected packet")
	}
	if f.Buffered() != 1 {
		t.Fatalf("Buffered() = %d, want 1", f.Buffered())
	}
	pkts := f.Feed(data[1:])
	if len(pkts) != 1 {
		t.Fatalf("got %d packets, want 1", len(pkts))
	}
}

func TestFramerBoundsBuffer(t *testing.T) {
	f := NewFramer()
	f.Feed(bytes.Repeat([]byte{0x00}, MaxBufferedBytes*2))
	if f.Buffered() > MaxBufferedBytes {
		t.Errorf("Buffered() = %d, exceeds %d", f.Buffered(), MaxBufferedBytes)
	}

	// A header at the end of a long partial run is still usable.
	f = NewFramer()
	partial := mustEncode(t, Control, "POWR", ParametersOn)
	f.Feed(partial[:10])
	pkts := f.Feed(partial[10:])
	if len(pkts) != 1 || pkts[0].Type != Control {
		t.Errorf("Feed() = %v, want one control packet", pkts)
	}
}

package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// Wire layout constants
const (
	PacketSize    = 24
	HeaderByte0   = 0x2A
	HeaderByte1   = 0x53
	FooterByte    = 0x0A
	CommandSize   = 4
	ParameterSize = 16

	typeOffset       = 2
	commandOffset    = 3
	parametersOffset = 7
	footerOffset     = 23
)

// Reserved parameter values
const (
	DefaultParameters      = "################"
	DeviceErrorParameters  = "FFFFFFFFFFFFFFFF"
	SuccessParameters      = "0000000000000000"
	NotAvailableParameters = "NNNNNNNNNNNNNNNN"
)

// MessageType is the single type byte of a packet.
type MessageType byte

const (
	Control MessageType = 'C'
	Enquiry MessageType = 'E'
	Answer  MessageType = 'A'
	Notify  MessageType = 'N'
)

// String returns the protocol name of the message type
func (t MessageType) String() string {
	switch t {
	case Control:
		return "control"
	case Enquiry:
		return "enquiry"
	case Answer:
		return "answer"
	case Notify:
		return "notify"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(t))
	}
}

// Outbound reports whether the type may be sent by a client.
func (t MessageType) Outbound() bool {
	return t == Control || t == Enquiry
}

// ParseMessageType accepts a single letter (C, E, A, N) or the full name,
// case-insensitively.
func ParseMessageType(s string) (MessageType, error) {
	switch strings.ToUpper(s) {
	case "C", "CONTROL":
		return Control, nil
	case "E", "ENQUIRY":
		return Enquiry, nil
	case "A", "ANSWER":
		return Answer, nil
	case "N", "NOTIFY":
		return Notify, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// Encoding errors
var (
	ErrInvalidType       = errors.New("message type must be control or enquiry")
	ErrInvalidCommand    = errors.New("command must be exactly 4 upper case letters")
	ErrInvalidParameters = errors.New("parameters must be exactly 16 characters of [A-Za-z0-9#]")
)

// Packet is a decoded 24-byte protocol unit.
type Packet struct {
	Type       MessageType
	Command    string
	Parameters string
}

func (p *Packet) String() string {
	return fmt.Sprintf("%c %s %s", byte(p.Type), p.Command, p.Parameters)
}

// IsDeviceError reports whether the parameters carry the all-F sentinel.
func (p *Packet) IsDeviceError() bool {
	return p.Parameters == DeviceErrorParameters
}

// ValidCommand reports whether s is exactly 4 upper case ASCII letters.
func ValidCommand(s string) bool {
	if len(s) != CommandSize {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// ValidParameters reports whether s is exactly 16 characters of [A-Za-z0-9#].
func ValidParameters(s string) bool {
	if len(s) != ParameterSize {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '#':
		default:
			return false
		}
	}
	return true
}

// Encode builds the wire form of an outbound packet. An empty parameters
// string is replaced with DefaultParameters.
func Encode(t MessageType, command, parameters string) ([]byte, error) {
	if !t.Outbound() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidType, t)
	}
	if !ValidCommand(command) {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidCommand, command)
	}
	if parameters == "" {
		parameters = DefaultParameters
	}
	if !ValidParameters(parameters) {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidParameters, parameters)
	}

	buf := make([]byte, 0, PacketSize)
	buf = append(buf, HeaderByte0, HeaderByte1, byte(t))
	buf = append(buf, command...)
	buf = append(buf, parameters...)
	buf = append(buf, FooterByte)
	return buf, nil
}

// Decode parses exactly one 24-byte packet. It returns false for anything
// that is not a well-formed packet; malformed input is never an error.
func Decode(data []byte) (*Packet, bool) {
	if len(data) != PacketSize {
		return nil, false
	}
	if data[0] != HeaderByte0 || data[1] != HeaderByte1 || data[footerOffset] != FooterByte {
		return nil, false
	}

	t := MessageType(data[typeOffset])
	switch t {
	case Control, Enquiry, Answer, Notify:
	default:
		return nil, false
	}

	return &Packet{
		Type:       t,
		Command:    string(data[commandOffset:parametersOffset]),
		Parameters: string(data[parametersOffset:footerOffset]),
	}, true
}

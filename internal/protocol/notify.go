package protocol

import "strconv"

// Known command names
const (
	CommandPower             = "POWR"
	CommandInput             = "INPT"
	CommandVolume            = "VOLU"
	CommandAudioMute         = "AMUT"
	CommandPictureMute       = "PMUT"
	CommandTogglePower       = "TPOW"
	CommandTogglePictureMute = "TPMU"
	CommandScene             = "SCEN"
	CommandIRCC              = "IRCC"
	CommandBroadcast         = "BADR"
	CommandMACAddress        = "MADR"
)

// Boolean parameter values
const (
	ParametersOn  = "0000000000000001"
	ParametersOff = "0000000000000000"
)

// Input source types
const (
	InputHDMI      = "hdmi"
	InputComponent = "component"
	InputMirroring = "mirroring"
)

// Offsets inside the parameters of an INPT packet
const (
	inputTypeOffset = 7
	inputPortOffset = 12
)

// Input identifies an input source. The zero value means no input is active.
type Input struct {
	Type string `json:"type"`
	Port int    `json:"port"`
}

// IsNone reports whether no input is active.
func (i Input) IsNone() bool {
	return i.Type == ""
}

func (i Input) String() string {
	if i.IsNone() {
		return "none"
	}
	return i.Type + " " + strconv.Itoa(i.Port)
}

// Notification is a decoded, unsolicited state change. Which value field is
// meaningful depends on Command: Status for POWR, AMUT and PMUT, Volume for
// VOLU and Input for INPT.
type Notification struct {
	Command string `json:"command"`
	Status  bool   `json:"status"`
	Volume  int    `json:"volume"`
	Input   Input  `json:"input"`
}

// DecodeNotification turns a Notify packet into a Notification. It returns
// false for non-Notify packets, unsupported commands and malformed payloads.
func DecodeNotification(p *Packet) (Notification, bool) {
	if p == nil || p.Type != Notify {
		return Notification{}, false
	}

	n := Notification{Command: p.Command}
	switch p.Command {
	case CommandPower, CommandAudioMute, CommandPictureMute:
		status, ok := ParseBool(p.Parameters)
		if !ok {
			return Notification{}, false
		}
		n.Status = status
	case CommandInput:
		in, ok := ParseInput(p.Parameters)
		if !ok {
			return Notification{}, false
		}
		n.Input = in
	case CommandVolume:
		v, ok := ParseDigits(p.Parameters)
		if !ok {
			return Notification{}, false
		}
		n.Volume = v
	default:
		return Notification{}, false
	}
	return n, true
}

// ParseBool decodes the on/off parameter convention.
func ParseBool(parameters string) (bool, bool) {
	switch parameters {
	case ParametersOn:
		return true, true
	case ParametersOff:
		return false, true
	}
	return false, false
}

// ParseDigits decodes parameters made only of decimal digits.
func ParseDigits(parameters string) (int, bool) {
	if parameters == "" {
		return 0, false
	}
	for i := 0; i < len(parameters); i++ {
		if parameters[i] < '0' || parameters[i] > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(parameters)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseInput decodes INPT parameters. All zeros means no input.
func ParseInput(parameters string) (Input, bool) {
	if len(parameters) != ParameterSize {
		return Input{}, false
	}
	if parameters == ParametersOff {
		return Input{}, true
	}

	port, ok := ParseDigits(parameters[inputPortOffset:])
	if !ok {
		return Input{}, false
	}

	var typ string
	switch parameters[inputTypeOffset] {
	case '1':
		typ = InputHDMI
	case '4':
		typ = InputComponent
	case '5':
		typ = InputMirroring
	default:
		return Input{}, false
	}
	return Input{Type: typ, Port: port}, true
}

// InputTypeDigit returns the wire digit for an input type name.
func InputTypeDigit(typ string) (byte, bool) {
	switch typ {
	case InputHDMI:
		return '1', true
	case InputComponent:
		return '4', true
	case InputMirroring:
		return '5', true
	}
	return 0, false
}

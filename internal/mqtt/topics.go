package mqtt

import (
	"fmt"
	"strings"
)

// State fields published under <prefix>/<device>/state/<field>.
const (
	FieldPower       = "power"
	FieldVolume      = "volume"
	FieldMute        = "mute"
	FieldPictureMute = "picture_mute"
	FieldInput       = "input"
	FieldScene       = "scene"
)

// Set commands accepted on <prefix>/<device>/set/<command>.
var SetCommands = []string{FieldPower, FieldVolume, FieldMute, FieldPictureMute, FieldInput, FieldScene, "ircc"}

// Payloads of the status topic.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Topics builds the topic tree of one display.
//
//	topics := mqtt.Topics{Prefix: "bravia", Device: "lounge"}
//	topics.State("volume") // "bravia/lounge/state/volume"
type Topics struct {
	Prefix string
	Device string
}

func (t Topics) base() string {
	return t.Prefix + "/" + t.Device
}

// State returns the retained topic of a state field.
func (t Topics) State(field string) string {
	return fmt.Sprintf("%s/state/%s", t.base(), field)
}

// Status returns the online/offline topic, also used as the will topic.
func (t Topics) Status() string {
	return t.base() + "/status"
}

// Set returns the command topic for a set command.
func (t Topics) Set(command string) string {
	return fmt.Sprintf("%s/set/%s", t.base(), command)
}

// SetWildcard matches every set command of the display.
func (t Topics) SetWildcard() string {
	return t.base() + "/set/+"
}

// ParseSet extracts the command from a set topic of this display.
func (t Topics) ParseSet(topic string) (string, error) {
	command, ok := strings.CutPrefix(topic, t.base()+"/set/")
	if !ok || command == "" || strings.Contains(command, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	for _, c := range SetCommands {
		if c == command {
			return command, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSetCommand, command)
}

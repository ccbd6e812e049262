package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/muurk/bravia/internal/control"
	"github.com/muurk/bravia/internal/discovery"
	"github.com/muurk/bravia/internal/protocol"
)

const unknown = "-"

// SnapshotDetails lists a snapshot as ordered details. Values the display
// did not report show as "-".
func SnapshotDetails(s *control.Snapshot) []Detail {
	details := []Detail{{Key: "Power", Value: OnOff(s.Power)}}
	if !s.Power {
		return details
	}

	volume := unknown
	if s.Volume != nil {
		volume = fmt.Sprintf("%d", *s.Volume)
	}
	details = append(details, Detail{Key: "Volume", Value: volume})
	details = append(details, Detail{Key: "Mute", Value: optionalOnOff(s.AudioMute)})
	details = append(details, Detail{Key: "Picture mute", Value: optionalOnOff(s.PictureMute)})

	input := unknown
	if s.Input != nil {
		input = s.Input.String()
	}
	details = append(details, Detail{Key: "Input", Value: input})

	scene := unknown
	if s.Scene != nil {
		scene = *s.Scene
	}
	details = append(details, Detail{Key: "Scene", Value: scene})
	return details
}

func optionalOnOff(v *bool) string {
	if v == nil {
		return unknown
	}
	return OnOff(*v)
}

// PrintSnapshot prints the display state panel.
func (p *Printer) PrintSnapshot(title string, s *control.Snapshot) {
	details := SnapshotDetails(s)
	keys := make([]string, 0, len(s.Errors))
	for k := range s.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		details = append(details, Detail{Key: "! " + k, Value: ErrorMessageStyle.Render(s.Errors[k])})
	}
	p.PrintHeader(title, "read "+s.UpdatedAt.Format(time.TimeOnly), details...)
}

// RenderDeviceTable renders discovered displays as an aligned table.
func RenderDeviceTable(devices []*discovery.Device) string {
	if len(devices) == 0 {
		return SubtitleStyle.Render("No BRAVIA displays found.")
	}

	addrWidth := len("ADDRESS")
	for _, d := range devices {
		addrWidth = max(addrWidth, len(d.Address))
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("%-*s  %s", addrWidth, "ADDRESS", "MODEL")))
	for _, d := range devices {
		model := d.Model
		if model == "" {
			model = d.Name
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%-*s  %s", addrWidth, d.Address, model))
	}
	return b.String()
}

// DescribeNotification renders a notification as plain text, e.g.
// "volume 20" or "input hdmi 2".
func DescribeNotification(n protocol.Notification) string {
	switch n.Command {
	case protocol.CommandPower:
		return "power " + onOffText(n.Status)
	case protocol.CommandVolume:
		return "volume " + strconv.Itoa(n.Volume)
	case protocol.CommandAudioMute:
		return "audio mute " + onOffText(n.Status)
	case protocol.CommandPictureMute:
		return "picture mute " + onOffText(n.Status)
	case protocol.CommandInput:
		return "input " + n.Input.String()
	}
	return n.Command
}

func onOffText(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

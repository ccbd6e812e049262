package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/muurk/bravia/internal/control"
	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/protocol"
	"github.com/muurk/bravia/internal/ui"
)

// field is one named value of an outcome.
type field struct {
	Key   string
	Value any
}

// outcome is what a verb reports. Snapshot is set by verbs that read the
// whole display state.
type outcome struct {
	Title    string
	Fields   []field
	Snapshot *control.Snapshot
}

// verb is a display operation shared by the subcommands and the shell.
type verb struct {
	name    string
	aliases []string
	usage   string
	short   string
	minArgs int
	maxArgs int // -1 for no limit
	run     func(ctx context.Context, ctl *control.Controller, args []string) (*outcome, error)
}

var verbs = []*verb{
	{name: "state", aliases: []string{"s"}, usage: "state", short: "Read the whole display state", maxArgs: 0, run: runStateVerb},
	{name: "power", aliases: []string{"p"}, usage: "power [on|off|toggle]", short: "Read or change power", maxArgs: 1, run: runPowerVerb},
	{name: "volume", aliases: []string{"vol", "v"}, usage: "volume [N|up|down] [STEP]", short: "Read or change the volume", maxArgs: 2, run: runVolumeVerb},
	{name: "mute", aliases: []string{"m"}, usage: "mute [on|off|toggle]", short: "Read or change audio mute", maxArgs: 1, run: runMuteVerb},
	{name: "picture", aliases: []string{"pic"}, usage: "picture [on|off|toggle]", short: "Read or change picture mute", maxArgs: 1, run: runPictureVerb},
	{name: "input", aliases: []string{"in"}, usage: "input [TYPE PORT]", short: "Read or switch the input", maxArgs: 2, run: runInputVerb},
	{name: "scene", usage: "scene [" + strings.Join(control.Scenes, "|") + "]", short: "Read or change the scene setting", maxArgs: 1, run: runSceneVerb},
	{name: "ircc", aliases: []string{"key"}, usage: "ircc NAME|CODE", short: "Send a remote control button", minArgs: 1, maxArgs: -1, run: runIRCCVerb},
	{name: "network", aliases: []string{"net"}, usage: "network [NETIF]", short: "Read the MAC and broadcast address", maxArgs: 1, run: runNetworkVerb},
	{name: "send", usage: "send TYPE COMMAND [PARAMETERS]", short: "Send a raw packet", minArgs: 2, maxArgs: 3, run: runSendVerb},
}

// lookupVerb finds a verb by name or alias.
func lookupVerb(name string) *verb {
	name = strings.ToLower(name)
	for _, v := range verbs {
		if v.name == name {
			return v
		}
		for _, a := range v.aliases {
			if a == name {
				return v
			}
		}
	}
	return nil
}

func (v *verb) checkArgs(args []string) error {
	if len(args) < v.minArgs || (v.maxArgs >= 0 && len(args) > v.maxArgs) {
		return device.NewValidationError("usage: %s", v.usage)
	}
	return nil
}

// Run validates args and runs the verb.
func (v *verb) Run(ctx context.Context, ctl *control.Controller, args []string) (*outcome, error) {
	if err := v.checkArgs(args); err != nil {
		return nil, err
	}
	return v.run(ctx, ctl, args)
}

// parseSwitch reads an on/off/toggle argument.
func parseSwitch(s string) (on, toggle bool, err error) {
	switch strings.ToLower(s) {
	case "on", "true", "1", "yes":
		return true, false, nil
	case "off", "false", "0", "no":
		return false, false, nil
	case "toggle":
		return false, true, nil
	}
	return false, false, device.NewValidationError("want on, off or toggle, got %q", s)
}

// parseInputArgs accepts "hdmi 2", "hdmi:2" and "hdmi2".
func parseInputArgs(args []string) (string, int, error) {
	var typ, port string
	switch len(args) {
	case 2:
		typ, port = args[0], args[1]
	case 1:
		var ok bool
		if typ, port, ok = strings.Cut(args[0], ":"); !ok {
			i := strings.IndexFunc(args[0], unicode.IsDigit)
			if i <= 0 {
				return "", 0, device.NewValidationError("input must look like hdmi 2, hdmi:2 or hdmi2, got %q", args[0])
			}
			typ, port = args[0][:i], args[0][i:]
		}
	default:
		return "", 0, device.NewValidationError("input needs a type and a port")
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return "", 0, device.NewValidationError("invalid input port %q", port)
	}
	return typ, n, nil
}

func runStateVerb(ctx context.Context, ctl *control.Controller, _ []string) (*outcome, error) {
	snap, err := ctl.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &outcome{Title: "Display state", Snapshot: snap}, nil
}

func runPowerVerb(ctx context.Context, ctl *control.Controller, args []string) (*outcome, error) {
	var (
		on  bool
		err error
	)
	title := "Power"
	if len(args) == 0 {
		on, err = ctl.PowerStatus(ctx)
	} else {
		var toggle bool
		if on, toggle, err = parseSwitch(args[0]); err != nil {
			return nil, err
		}
		if toggle {
			on, err = ctl.TogglePower(ctx)
		} else {
			on, err = ctl.SetPower(ctx, on)
		}
		title = "Power changed"
	}
	if err != nil {
		return nil, err
	}
	return &outcome{Title: title, Fields: []field{{"power", on}}}, nil
}

func runVolumeVerb(ctx context.Context, ctl *control.Controller, args []string) (*outcome, error) {
	if len(args) == 0 {
		v, err := ctl.Volume(ctx)
		if err != nil {
			return nil, err
		}
		return &outcome{Title: "Volume", Fields: []field{{"volume", v}}}, nil
	}

	step := volumeStep
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, device.NewValidationError("invalid step %q", args[1])
		}
		step = n
	}

	var (
		v   int
		err error
	)
	switch strings.ToLower(args[0]) {
	case "up", "+":
		v, err = ctl.VolumeUp(ctx, step)
	case "down", "-":
		v, err = ctl.VolumeDown(ctx, step)
	default:
		if len(args) == 2 {
			return nil, device.NewValidationError("a step only applies to up and down")
		}
		n, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			return nil, device.NewValidationError("volume must be a number, up or down, got %q", args[0])
		}
		v, err = ctl.SetVolume(ctx, n)
	}
	if err != nil {
		return nil, err
	}
	return &outcome{Title: "Volume changed", Fields: []field{{"volume", v}}}, nil
}

func runMuteVerb(ctx context.Context, ctl *control.Controller, args []string) (*outcome, error) {
	if len(args) == 0 {
		muted, err := ctl.AudioMute(ctx)
		if err != nil {
			return nil, err
		}
		return &outcome{Title: "Audio mute", Fields: []field{{"mute", muted}}}, nil
	}
	on, toggle, err := parseSwitch(args[0])
	if err != nil {
		return nil, err
	}
	if toggle {
		muted, err := ctl.AudioMute(ctx)
		if err != nil {
			return nil, err
		}
		on = !muted
	}
	if err := ctl.SetAudioMute(ctx, on); err != nil {
		return nil, err
	}
	return &outcome{Title: "Audio mute changed", Fields: []field{{"mute", on}}}, nil
}

func runPictureVerb(ctx context.Context, ctl *control.Controller, args []string) (*outcome, error) {
	if len(args) == 0 {
		muted, err := ctl.PictureMute(ctx)
		if err != nil {
			return nil, err
		}
		return &outcome{Title: "Picture mute", Fields: []field{{"picture_mute", muted}}}, nil
	}
	on, toggle, err := parseSwitch(args[0])
	if err != nil {
		return nil, err
	}
	if toggle {
		on, err = ctl.TogglePictureMute(ctx)
	} else {
		err = ctl.SetPictureMute(ctx, on)
	}
	if err != nil {
		return nil, err
	}
	return &outcome{Title: "Picture mute changed", Fields: []field{{"picture_mute", on}}}, nil
}

func runInputVerb(ctx context.Context, ctl *control.Controller, args []string) (*outcome, error) {
	if len(args) == 0 {
		in, err := ctl.Input(ctx)
		if err != nil {
			return nil, err
		}
		return &outcome{Title: "Input", Fields: []field{{"input", in}}}, nil
	}
	typ, port, err := parseInputArgs(args)
	if err != nil {
		return nil, err
	}
	in, err := ctl.SetInput(ctx, typ, port)
	if err != nil {
		return nil, err
	}
	if in.IsNone() {
		return nil, fmt.Errorf("input %s %d is not available on this display", typ, port)
	}
	return &outcome{Title: "Input changed", Fields: []field{{"input", in}}}, nil
}

func runSceneVerb(ctx context.Context, ctl *control.Controller, args []string) (*outcome, error) {
	var (
		scene string
		err   error
	)
	title := "Scene"
	if len(args) == 0 {
		scene, err = ctl.Scene(ctx)
	} else {
		scene, err = ctl.SetScene(ctx, args[0])
		title = "Scene changed"
		if err == nil && scene == "" {
			return nil, fmt.Errorf("scene is not available for the current input")
		}
	}
	if err != nil {
		return nil, err
	}
	if scene == "" {
		scene = "not available"
	}
	return &outcome{Title: title, Fields: []field{{"scene", scene}}}, nil
}

func runIRCCVerb(ctx context.Context, ctl *control.Controller, args []string) (*outcome, error) {
	name := strings.Join(args, " ")
	if code, err := strconv.Atoi(name); err == nil {
		if err := ctl.SendIRCCCode(ctx, code); err != nil {
			return nil, err
		}
		return &outcome{Title: "Remote code sent", Fields: []field{{"code", code}}}, nil
	}
	if err := ctl.SendIRCC(ctx, name); err != nil {
		return nil, err
	}
	return &outcome{Title: "Remote button sent", Fields: []field{{"button", name}}}, nil
}

func runNetworkVerb(ctx context.Context, ctl *control.Controller, args []string) (*outcome, error) {
	netif := control.DefaultInterface
	if len(args) == 1 {
		netif = args[0]
	}
	mac, err := ctl.MACAddress(ctx, netif)
	if err != nil {
		return nil, err
	}
	broadcast, err := ctl.BroadcastAddress(ctx, netif)
	if err != nil {
		return nil, err
	}
	return &outcome{Title: "Network", Fields: []field{
		{"interface", netif},
		{"mac", mac},
		{"broadcast", broadcast},
	}}, nil
}

// volumeStep is the default for volume up and down, from the preferences.
var volumeStep = control.DefaultStep

// ignoreDeviceError is set by the send subcommand's flag.
var ignoreDeviceError bool

func runSendVerb(ctx context.Context, ctl *control.Controller, args []string) (*outcome, error) {
	t, err := protocol.ParseMessageType(args[0])
	if err != nil {
		return nil, device.NewValidationError("%v", err)
	}
	req := device.Request{
		Type:              t,
		Command:           strings.ToUpper(args[1]),
		IgnoreDeviceError: ignoreDeviceError,
	}
	if len(args) == 3 {
		req.Parameters = args[2]
	}
	pkt, err := ctl.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return &outcome{Title: "Answer", Fields: []field{
		{"type", pkt.Type.String()},
		{"command", pkt.Command},
		{"parameters", pkt.Parameters},
	}}, nil
}

// render writes an outcome in the chosen format.
func render(w io.Writer, format string, o *outcome) error {
	if format == formatJSON {
		var v any = o.Snapshot
		if o.Snapshot == nil {
			m := make(map[string]any, len(o.Fields))
			for _, f := range o.Fields {
				m[f.Key] = f.Value
			}
			v = m
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	p := ui.NewPrinter(w)
	if o.Snapshot != nil {
		p.PrintSnapshot(o.Title, o.Snapshot)
		return nil
	}
	p.PrintSuccess(o.Title, details(o.Fields)...)
	return nil
}

func details(fields []field) []ui.Detail {
	out := make([]ui.Detail, len(fields))
	for i, f := range fields {
		value := fmt.Sprint(f.Value)
		if b, ok := f.Value.(bool); ok {
			value = ui.OnOff(b)
		}
		out[i] = ui.Detail{Key: displayKey(f.Key), Value: value}
	}
	return out
}

// displayKey turns "picture_mute" into "Picture mute".
func displayKey(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

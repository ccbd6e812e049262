package simulator

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/bravia/internal/logging"
	"github.com/muurk/bravia/internal/protocol"
)

// Scenes the simulated display accepts.
var scenes = []string{"auto", "auto24pSync", "general"}

// HDMIPorts is the number of HDMI inputs the simulated display has.
const HDMIPorts = 4

// State is the simulated display state.
type State struct {
	Power       bool
	Volume      int
	AudioMute   bool
	PictureMute bool
	Input       protocol.Input
	Scene       string
	MAC         string
	Broadcast   string
}

// DefaultState is a display in standby on HDMI 1.
func DefaultState() State {
	return State{
		Volume:    15,
		Input:     protocol.Input{Type: protocol.InputHDMI, Port: 1},
		Scene:     "auto",
		MAC:       "0123456789ab",
		Broadcast: "192.168.1.255",
	}
}

// Simulator is a display speaking simple IP control on a TCP listener.
// Every client receives notifications for every change, including
// changes made through Update.
type Simulator struct {
	mu    sync.Mutex
	state State
	ln    net.Listener
	conns map[net.Conn]*sync.Mutex
	wg    sync.WaitGroup
}

// New returns a simulator starting in initial.
func New(initial State) *Simulator {
	return &Simulator{
		state: initial,
		conns: make(map[net.Conn]*sync.Mutex),
	}
}

// Listen binds addr (e.g. "127.0.0.1:0" or ":20060") and serves clients
// until Close.
func (s *Simulator) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("simulator listen: %w", err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	logging.Info("Simulator listening", zap.String("addr", ln.Addr().String()))

	s.wg.Add(1)
	go s.acceptConnections(ln)
	return nil
}

// Port returns the bound TCP port.
func (s *Simulator) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return 0
	}
	return s.ln.Addr().(*net.TCPAddr).Port
}

// Clients returns the number of connected clients.
func (s *Simulator) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close stops the listener and drops every client.
func (s *Simulator) Close() error {
	s.mu.Lock()
	ln := s.ln
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.wg.Wait()
	return err
}

// DropClients closes every client connection, as a display does when it
// loses its network.
func (s *Simulator) DropClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		_ = c.Close()
	}
}

// State returns a copy of the current state.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update changes the state as a remote control would and notifies clients
// of the fields that changed.
func (s *Simulator) Update(fn func(*State)) {
	s.mu.Lock()
	before := s.state
	fn(&s.state)
	after := s.state
	s.mu.Unlock()

	s.broadcast(diff(before, after))
}

func (s *Simulator) acceptConnections(ln net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				logging.Error("Simulator accept failed", zap.Error(err))
			}
			return
		}

		s.mu.Lock()
		s.conns[conn] = &sync.Mutex{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Simulator) handleConnection(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	logging.LogConnection(remote, "simulator_client_connected")
	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		logging.LogConnection(remote, "simulator_client_closed")
	}()

	framer := protocol.NewFramer()
	buf := make([]byte, 512)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		for _, pkt := range framer.Feed(buf[:n]) {
			s.handlePacket(conn, pkt)
		}
	}
}

func (s *Simulator) handlePacket(conn net.Conn, pkt *protocol.Packet) {
	logging.LogPacket(conn.RemoteAddr().String(), "sim_received", byte(pkt.Type), pkt.Command, pkt.Parameters)

	var (
		answer  string
		changes []protocol.Notification
	)
	switch pkt.Type {
	case protocol.Enquiry:
		answer = s.enquire(pkt.Command, pkt.Parameters)
	case protocol.Control:
		answer, changes = s.control(pkt.Command, pkt.Parameters)
	default:
		return
	}

	s.writePacket(conn, protocol.Answer, pkt.Command, answer)
	s.broadcast(changes)
}

func (s *Simulator) enquire(command, parameters string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state

	if command == protocol.CommandPower {
		return boolParameters(st.Power)
	}
	if command == protocol.CommandBroadcast || command == protocol.CommandMACAddress {
		if strings.TrimRight(parameters, "#") != "eth0" {
			return protocol.DeviceErrorParameters
		}
		if command == protocol.CommandMACAddress {
			return padHash(st.MAC)
		}
		return padHash(st.Broadcast)
	}
	if !st.Power {
		return protocol.DeviceErrorParameters
	}

	switch command {
	case protocol.CommandVolume:
		return fmt.Sprintf("%016d", st.Volume)
	case protocol.CommandAudioMute:
		return boolParameters(st.AudioMute)
	case protocol.CommandPictureMute:
		return boolParameters(st.PictureMute)
	case protocol.CommandInput:
		return inputParameters(st.Input)
	case protocol.CommandScene:
		return padHash(st.Scene)
	}
	return protocol.DeviceErrorParameters
}

func (s *Simulator) control(command, parameters string) (string, []protocol.Notification) {
	s.mu.Lock()
	before := s.state
	answer := s.apply(command, parameters)
	after := s.state
	s.mu.Unlock()
	return answer, diff(before, after)
}

// apply changes the state for a Control request and returns the answer.
// Callers hold s.mu.
func (s *Simulator) apply(command, parameters string) string {
	st := &s.state

	switch command {
	case protocol.CommandPower:
		v, ok := protocol.ParseBool(parameters)
		if !ok {
			return protocol.DeviceErrorParameters
		}
		st.Power = v
		return protocol.SuccessParameters
	case protocol.CommandTogglePower:
		st.Power = !st.Power
		return protocol.SuccessParameters
	case protocol.CommandIRCC:
		if _, ok := protocol.ParseDigits(parameters); !ok {
			return protocol.DeviceErrorParameters
		}
		return protocol.SuccessParameters
	}

	if !st.Power {
		return protocol.DeviceErrorParameters
	}

	switch command {
	case protocol.CommandVolume:
		v, ok := protocol.ParseDigits(parameters)
		if !ok || v > 100 {
			return protocol.DeviceErrorParameters
		}
		st.Volume = v
	case protocol.CommandAudioMute:
		v, ok := protocol.ParseBool(parameters)
		if !ok {
			return protocol.DeviceErrorParameters
		}
		st.AudioMute = v
	case protocol.CommandPictureMute:
		v, ok := protocol.ParseBool(parameters)
		if !ok {
			return protocol.DeviceErrorParameters
		}
		st.PictureMute = v
	case protocol.CommandTogglePictureMute:
		st.PictureMute = !st.PictureMute
	case protocol.CommandInput:
		in, ok := protocol.ParseInput(parameters)
		if !ok || in.IsNone() {
			return protocol.DeviceErrorParameters
		}
		if in.Type != protocol.InputHDMI || in.Port < 1 || in.Port > HDMIPorts {
			return protocol.NotAvailableParameters
		}
		st.Input = in
	case protocol.CommandScene:
		scene := strings.TrimRight(parameters, "#")
		for _, sc := range scenes {
			if sc == scene {
				st.Scene = scene
				return protocol.SuccessParameters
			}
		}
		return protocol.NotAvailableParameters
	default:
		return protocol.DeviceErrorParameters
	}
	return protocol.SuccessParameters
}

// diff lists the notifications a display sends for a state change.
func diff(before, after State) []protocol.Notification {
	var out []protocol.Notification
	if before.Power != after.Power {
		out = append(out, protocol.Notification{Command: protocol.CommandPower, Status: after.Power})
	}
	if before.Volume != after.Volume {
		out = append(out, protocol.Notification{Command: protocol.CommandVolume, Volume: after.Volume})
	}
	if before.AudioMute != after.AudioMute {
		out = append(out, protocol.Notification{Command: protocol.CommandAudioMute, Status: after.AudioMute})
	}
	if before.PictureMute != after.PictureMute {
		out = append(out, protocol.Notification{Command: protocol.CommandPictureMute, Status: after.PictureMute})
	}
	if before.Input != after.Input {
		out = append(out, protocol.Notification{Command: protocol.CommandInput, Input: after.Input})
	}
	return out
}

func (s *Simulator) broadcast(changes []protocol.Notification) {
	if len(changes) == 0 {
		return
	}
	s.mu.Lock()
	conns := make([]net.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, n := range changes {
		params := NotificationParameters(n)
		for _, c := range conns {
			s.writePacket(c, protocol.Notify, n.Command, params)
		}
	}
}

func (s *Simulator) writePacket(conn net.Conn, t protocol.MessageType, command, parameters string) {
	frame, err := protocol.Encode(t, command, parameters)
	if err != nil {
		logging.Error("Simulator encode failed", zap.String("command", command), zap.Error(err))
		return
	}

	s.mu.Lock()
	wmu := s.conns[conn]
	s.mu.Unlock()
	if wmu == nil {
		return
	}
	wmu.Lock()
	_, err = conn.Write(frame)
	wmu.Unlock()
	if err != nil {
		logging.Debug("Simulator write failed", zap.Error(err))
	}
}

// NotificationParameters encodes the parameters of a Notify packet for n.
func NotificationParameters(n protocol.Notification) string {
	switch n.Command {
	case protocol.CommandVolume:
		return fmt.Sprintf("%016d", n.Volume)
	case protocol.CommandInput:
		return inputParameters(n.Input)
	}
	return boolParameters(n.Status)
}

func boolParameters(v bool) string {
	if v {
		return protocol.ParametersOn
	}
	return protocol.ParametersOff
}

func inputParameters(in protocol.Input) string {
	digit, ok := protocol.InputTypeDigit(in.Type)
	if !ok || in.IsNone() {
		return protocol.SuccessParameters
	}
	return "0000000" + string(digit) + "0000" + fmt.Sprintf("%04d", in.Port)
}

func padHash(s string) string {
	if len(s) >= protocol.ParameterSize {
		return s[:protocol.ParameterSize]
	}
	return s + strings.Repeat("#", protocol.ParameterSize-len(s))
}

// ParseState reads "key=value" pairs, e.g. "power=on volume=20 input=hdmi:2",
// on top of base.
func ParseState(base State, pairs string) (State, error) {
	st := base
	for _, field := range strings.Fields(pairs) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return st, fmt.Errorf("invalid state field %q (want key=value)", field)
		}
		var err error
		switch strings.ToLower(key) {
		case "power":
			st.Power, err = parseOnOff(value)
		case "volume":
			st.Volume, err = strconv.Atoi(value)
			if err == nil && (st.Volume < 0 || st.Volume > 100) {
				err = fmt.Errorf("volume %d out of range", st.Volume)
			}
		case "mute":
			st.AudioMute, err = parseOnOff(value)
		case "picture_mute":
			st.PictureMute, err = parseOnOff(value)
		case "input":
			typ, port, _ := strings.Cut(value, ":")
			p, perr := strconv.Atoi(port)
			if perr != nil {
				err = fmt.Errorf("invalid input %q (want type:port)", value)
				break
			}
			st.Input = protocol.Input{Type: strings.ToLower(typ), Port: p}
		case "scene":
			st.Scene = value
		default:
			err = fmt.Errorf("unknown state field %q", key)
		}
		if err != nil {
			return st, err
		}
	}
	return st, nil
}

func parseOnOff(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid on/off value %q", v)
}

package monitor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/bravia/internal/control"
	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/protocol"
	"github.com/muurk/bravia/internal/ui"
)

const (
	defaultConnectTimeout = 10 * time.Second
	actionTimeout         = 15 * time.Second
	eventBufferSize       = 64
	maxRecentEvents       = 6
	hdmiPorts             = 4
)

type connectedMsg struct {
	err error
}

type snapshotMsg struct {
	snap *control.Snapshot
	err  error
}

type notifyMsg struct {
	n  protocol.Notification
	at time.Time
}

type closedMsg struct {
	ev device.CloseEvent
}

type actionMsg struct {
	label string
	err   error
}

// dashboardKeyMap defines key bindings for the dashboard screen
type dashboardKeyMap struct {
	Power       key.Binding
	VolumeUp    key.Binding
	VolumeDown  key.Binding
	Mute        key.Binding
	PictureMute key.Binding
	Input       key.Binding
	Refresh     key.Binding
	Back        key.Binding
	Quit        key.Binding
}

func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Power, k.VolumeUp, k.VolumeDown, k.Mute, k.PictureMute, k.Input, k.Refresh, k.Back, k.Quit}
}

func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Power, k.VolumeUp, k.VolumeDown, k.Mute},
		{k.PictureMute, k.Input, k.Refresh},
		{k.Back, k.Quit},
	}
}

// Target is the display a dashboard connects to.
type Target struct {
	Name    string
	Address string
	Model   string
}

// DashboardModel shows the live state of one display and sends the key
// bound commands to it.
type DashboardModel struct {
	Target Target

	Connecting bool
	Connected  bool
	Lost       bool // the display dropped the connection
	Snapshot   *control.Snapshot
	Recent     []string
	Pending    int
	LastErr    error
	Back       bool

	Width   int
	Height  int
	Spinner spinner.Model
	Volume  progress.Model
	Help    help.Model
	Keys    dashboardKeyMap

	dev            *device.Device
	ctl            *control.Controller
	events         chan tea.Msg
	done           chan struct{}
	unsubscribe    []func()
	connectTimeout time.Duration
}

// NewDashboardModel creates the dashboard for target. Nothing connects
// until Init runs.
func NewDashboardModel(target Target, opts Options) (DashboardModel, error) {
	devOpts := append([]device.Option{device.WithModel(target.Model)}, opts.DeviceOptions...)
	dev, err := device.New(target.Address, devOpts...)
	if err != nil {
		return DashboardModel{}, err
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	vol := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	vol.Width = 30

	m := DashboardModel{
		Target:     target,
		Connecting: true,
		Spinner:    s,
		Volume:     vol,
		Help:       help.New(),
		Keys: dashboardKeyMap{
			Power:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "power")),
			VolumeUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "vol up")),
			VolumeDown:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "vol down")),
			Mute:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
			PictureMute: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "picture")),
			Input:       key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "input")),
			Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
			Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
			Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		},
		dev:            dev,
		ctl:            control.New(dev, opts.ControlOptions...),
		events:         make(chan tea.Msg, eventBufferSize),
		done:           make(chan struct{}),
		connectTimeout: opts.ConnectTimeout,
	}
	if m.connectTimeout <= 0 {
		m.connectTimeout = defaultConnectTimeout
	}

	// Observers run on the reader goroutine and must not block.
	post := func(msg tea.Msg) {
		select {
		case m.events <- msg:
		default:
		}
	}
	m.unsubscribe = []func(){
		dev.OnNotify(func(n protocol.Notification) { post(notifyMsg{n: n, at: time.Now()}) }),
		dev.OnClose(func(ev device.CloseEvent) { post(closedMsg{ev: ev}) }),
	}
	return m, nil
}

// Init connects and starts listening for display events.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.connectCmd(), m.waitForEvent(), m.Spinner.Tick)
}

// Close disconnects the display and stops event delivery. It is safe to
// call more than once.
func (m DashboardModel) Close() {
	if m.dev == nil {
		return
	}
	for _, unsub := range m.unsubscribe {
		unsub()
	}
	select {
	case <-m.done:
	default:
		close(m.done)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
	defer cancel()
	_ = m.dev.Disconnect(ctx)
}

// IsBackRequested reports whether the user asked to leave the dashboard.
func (m DashboardModel) IsBackRequested() bool {
	return m.Back
}

func (m DashboardModel) connectCmd() tea.Cmd {
	dev, timeout := m.dev, m.connectTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return connectedMsg{err: dev.Connect(ctx)}
	}
}

func (m DashboardModel) snapshotCmd() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		snap, err := ctl.Snapshot(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

// waitForEvent delivers the next notification or close event. It is
// re-armed after every event.
func (m DashboardModel) waitForEvent() tea.Cmd {
	events, done := m.events, m.done
	return func() tea.Msg {
		select {
		case msg := <-events:
			return msg
		case <-done:
			return nil
		}
	}
}

func (m DashboardModel) actionCmd(label string, fn func(ctx context.Context, ctl *control.Controller) error) tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionMsg{label: label, err: fn(ctx, ctl)}
	}
}

// Update handles messages for the dashboard.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case connectedMsg:
		m.Connecting = false
		if msg.err != nil {
			m.Connected = false
			m.LastErr = msg.err
			return m, nil
		}
		m.Connected = true
		m.Lost = false
		m.LastErr = nil
		return m, m.snapshotCmd()

	case snapshotMsg:
		if msg.err != nil {
			m.LastErr = msg.err
			return m, nil
		}
		m.Snapshot = msg.snap
		return m, nil

	case notifyMsg:
		m.addRecent(msg.at, ui.DescribeNotification(msg.n))
		if m.Snapshot == nil || (msg.n.Command == protocol.CommandPower && !msg.n.Status) {
			m.Snapshot = &control.Snapshot{}
		}
		m.Snapshot.Apply(msg.n)
		if msg.n.Command == protocol.CommandPower && msg.n.Status {
			return m, tea.Batch(m.waitForEvent(), m.snapshotCmd())
		}
		return m, m.waitForEvent()

	case closedMsg:
		m.Connected = false
		if !msg.ev.Intentional {
			m.Lost = true
			m.LastErr = msg.ev.Err
			m.addRecent(time.Now(), "connection lost")
		}
		return m, m.waitForEvent()

	case actionMsg:
		if m.Pending > 0 {
			m.Pending--
		}
		if msg.err != nil {
			m.LastErr = fmt.Errorf("%s: %w", msg.label, msg.err)
		} else {
			m.LastErr = nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m DashboardModel) updateKeys(msg tea.KeyMsg) (DashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Back):
		m.Back = true
		return m, nil
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Refresh):
		if m.Connected {
			return m, m.snapshotCmd()
		}
		if m.Connecting {
			return m, nil
		}
		m.Connecting = true
		m.LastErr = nil
		return m, m.connectCmd()
	}

	if !m.Connected {
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.Keys.Power):
		cmd = m.actionCmd("power", func(ctx context.Context, ctl *control.Controller) error {
			_, err := ctl.TogglePower(ctx)
			return err
		})
	case key.Matches(msg, m.Keys.VolumeUp):
		cmd = m.actionCmd("volume", func(ctx context.Context, ctl *control.Controller) error {
			_, err := ctl.VolumeUp(ctx, 1)
			return err
		})
	case key.Matches(msg, m.Keys.VolumeDown):
		cmd = m.actionCmd("volume", func(ctx context.Context, ctl *control.Controller) error {
			_, err := ctl.VolumeDown(ctx, 1)
			return err
		})
	case key.Matches(msg, m.Keys.Mute):
		muted := m.Snapshot != nil && m.Snapshot.AudioMute != nil && *m.Snapshot.AudioMute
		cmd = m.actionCmd("mute", func(ctx context.Context, ctl *control.Controller) error {
			return ctl.SetAudioMute(ctx, !muted)
		})
	case key.Matches(msg, m.Keys.PictureMute):
		cmd = m.actionCmd("picture mute", func(ctx context.Context, ctl *control.Controller) error {
			_, err := ctl.TogglePictureMute(ctx)
			return err
		})
	case key.Matches(msg, m.Keys.Input):
		port := nextHDMIPort(m.Snapshot)
		cmd = m.actionCmd("input", func(ctx context.Context, ctl *control.Controller) error {
			in, err := ctl.SetInput(ctx, protocol.InputHDMI, port)
			if err == nil && in.IsNone() {
				return fmt.Errorf("HDMI %d is not available", port)
			}
			return err
		})
	default:
		return m, nil
	}
	m.Pending++
	return m, cmd
}

// nextHDMIPort cycles HDMI 1 to 4, starting at 1 from any other input.
func nextHDMIPort(s *control.Snapshot) int {
	if s == nil || s.Input == nil || s.Input.Type != protocol.InputHDMI {
		return 1
	}
	return s.Input.Port%hdmiPorts + 1
}

func (m *DashboardModel) addRecent(at time.Time, text string) {
	line := at.Format("15:04:05") + "  " + text
	m.Recent = append([]string{line}, m.Recent...)
	if len(m.Recent) > maxRecentEvents {
		m.Recent = m.Recent[:maxRecentEvents]
	}
}

// View renders the dashboard
func (m DashboardModel) View() string {
	return RenderApplicationContainer(m.renderContent(), m.Help.View(m.Keys), m.Width, m.Height)
}

func (m DashboardModel) renderContent() string {
	var b strings.Builder

	title := m.Target.Model
	if title == "" {
		title = "BRAVIA"
	}
	b.WriteString(RenderTitle(title))
	b.WriteString("\n")
	name := m.Target.Address
	if m.Target.Name != "" {
		name = m.Target.Name + " • " + m.Target.Address
	}
	b.WriteString(RenderSubtitle(name))
	b.WriteString("\n\n")

	switch {
	case m.Lost:
		b.WriteString(RenderError("Connection lost. Press r to reconnect."))
		b.WriteString("\n\n")
	case m.Connecting:
		b.WriteString(m.Spinner.View() + " Connecting...\n\n")
	case !m.Connected && m.LastErr != nil:
		b.WriteString(RenderError(device.GetShortErrorMessage(m.LastErr) + ". Press r to retry."))
		b.WriteString("\n\n")
	}

	b.WriteString(PanelStyle.Render(m.renderState()))
	b.WriteString("\n")

	if m.Pending > 0 {
		b.WriteString(m.Spinner.View() + " working...\n")
	} else if m.LastErr != nil && m.Connected {
		b.WriteString(ui.ErrorMessageStyle.Render(ui.FailureMarker+" "+m.LastErr.Error()) + "\n")
	}

	if len(m.Recent) > 0 {
		b.WriteString("\n")
		b.WriteString(ui.SubtitleStyle.Render("Recent events"))
		b.WriteString("\n")
		for _, line := range m.Recent {
			b.WriteString(EventStyle.Render("  "+line) + "\n")
		}
	}
	return b.String()
}

func (m DashboardModel) renderState() string {
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), value)
	}
	unknown := ui.OffStyle.Render("-")

	s := m.Snapshot
	if s == nil {
		return row("Power", unknown)
	}

	rows := []string{row("Power", ui.OnOff(s.Power))}
	if !s.Power {
		rows = append(rows, "", ui.SubtitleStyle.Render("Standby: only power can be read."))
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	vol := unknown
	if s.Volume != nil {
		vol = m.Volume.ViewAs(float64(*s.Volume)/100) + " " + ValueStyle.Render(strconv.Itoa(*s.Volume))
	}
	boolRow := func(v *bool) string {
		if v == nil {
			return unknown
		}
		return ui.OnOff(*v)
	}
	input := unknown
	if s.Input != nil {
		input = ValueStyle.Render(s.Input.String())
	}
	scene := unknown
	if s.Scene != nil && *s.Scene != "" {
		scene = ValueStyle.Render(*s.Scene)
	}

	rows = append(rows,
		row("Volume", vol),
		row("Audio mute", boolRow(s.AudioMute)),
		row("Picture mute", boolRow(s.PictureMute)),
		row("Input", input),
		row("Scene", scene),
	)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

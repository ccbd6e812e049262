package monitor

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/bravia/internal/control"
	"github.com/muurk/bravia/internal/device"
)

// Screen identifies the active screen
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenDashboard Screen = "dashboard"
)

// Options configures the monitor.
type Options struct {
	// Scan finds displays for the discovery screen. Nil leaves only
	// manual entry.
	Scan ScanFunc

	ConnectTimeout time.Duration
	DeviceOptions  []device.Option
	ControlOptions []control.Option
}

// AppModel switches between the discovery screen and the dashboard.
type AppModel struct {
	CurrentScreen Screen

	Discovery DiscoveryModel
	Dashboard DashboardModel
	LastError error

	Width  int
	Height int

	opts Options
}

// NewAppModel starts on the dashboard for target, or on the discovery
// screen when target is nil.
func NewAppModel(opts Options, target *Target) (AppModel, error) {
	m := AppModel{
		CurrentScreen: ScreenDiscovery,
		Discovery:     NewDiscoveryModel(opts.Scan),
		opts:          opts,
	}
	if target != nil {
		dash, err := NewDashboardModel(*target, opts)
		if err != nil {
			return AppModel{}, err
		}
		m.Dashboard = dash
		m.CurrentScreen = ScreenDashboard
	}
	return m, nil
}

// Init starts the current screen
func (m AppModel) Init() tea.Cmd {
	if m.CurrentScreen == ScreenDashboard {
		return m.Dashboard.Init()
	}
	return m.Discovery.Init()
}

// Update routes messages to the current screen and handles transitions
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		var cmd tea.Cmd
		m.Discovery, cmd = m.Discovery.Update(msg)
		m.Dashboard, _ = m.Dashboard.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.CurrentScreen {
	case ScreenDiscovery:
		if km, ok := msg.(tea.KeyMsg); ok && !m.Discovery.ManualMode {
			if km.String() == "q" || km.String() == "esc" {
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.Discovery, cmd = m.Discovery.Update(msg)
		if d := m.Discovery.Selected; d != nil {
			m.Discovery.Selected = nil
			return m.openDashboard(Target{Name: d.Name, Address: d.Address, Model: d.Model})
		}
		return m, cmd

	case ScreenDashboard:
		var cmd tea.Cmd
		m.Dashboard, cmd = m.Dashboard.Update(msg)
		if m.Dashboard.IsBackRequested() {
			return m.backToDiscovery()
		}
		return m, cmd
	}
	return m, nil
}

func (m AppModel) openDashboard(target Target) (tea.Model, tea.Cmd) {
	dash, err := NewDashboardModel(target, m.opts)
	if err != nil {
		m.LastError = err
		m.Discovery.Err = err
		return m, nil
	}
	dash.Width, dash.Height = m.Width, m.Height
	m.Dashboard = dash
	m.CurrentScreen = ScreenDashboard
	m.LastError = nil
	return m, dash.Init()
}

func (m AppModel) backToDiscovery() (tea.Model, tea.Cmd) {
	old := m.Dashboard
	m.Dashboard = DashboardModel{}
	m.CurrentScreen = ScreenDiscovery

	var cmd tea.Cmd
	if len(m.Discovery.DeviceList.Items()) == 0 && !m.Discovery.Scanning {
		cmd = m.Discovery.startScan()
	}
	return m, tea.Batch(func() tea.Msg { old.Close(); return nil }, cmd)
}

// Close releases the dashboard connection, if any.
func (m AppModel) Close() {
	m.Dashboard.Close()
}

// View renders the current screen
func (m AppModel) View() string {
	if m.CurrentScreen == ScreenDashboard {
		return m.Dashboard.View()
	}
	return m.Discovery.View()
}

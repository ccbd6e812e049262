package monitor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/discovery"
	"github.com/muurk/bravia/internal/ui"
)

// ScanFunc finds displays on the network.
type ScanFunc func(ctx context.Context) ([]*discovery.Device, error)

// scanTimeout bounds a scan started from the discovery screen; the
// scanner's own wait is shorter.
const scanTimeout = 15 * time.Second

type scanStartMsg struct{}

type scanCompleteMsg struct {
	devices []*discovery.Device
	err     error
}

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualKeyMap defines key bindings while an address is typed
type manualKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

func (k manualKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

func (k manualKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}

type deviceItem struct {
	device *discovery.Device
}

func (d deviceItem) FilterValue() string {
	return d.device.Name + " " + d.device.Address + " " + d.device.Model
}

func (d deviceItem) Title() string {
	if d.device.Model != "" {
		return d.device.Model
	}
	return "BRAVIA"
}

func (d deviceItem) Description() string {
	if d.device.Name == "" {
		return d.device.Address
	}
	return fmt.Sprintf("%s • %s", d.device.Address, d.device.Name)
}

// deviceDelegate renders one display per two lines
type deviceDelegate struct{}

func (deviceDelegate) Height() int                             { return 2 }
func (deviceDelegate) Spacing() int                            { return 1 }
func (deviceDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (deviceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(deviceItem)
	if !ok {
		return
	}
	title := "  " + it.Title()
	if index == m.Index() {
		title = SelectedItemStyle.Render("→ " + it.Title())
	}
	fmt.Fprintf(w, "%s\n    %s", title, SubtitleStyle.Render(it.Description()))
}

// DiscoveryModel is the screen that finds a display to monitor.
type DiscoveryModel struct {
	Scanning   bool
	DeviceList list.Model
	Selected   *discovery.Device
	Err        error

	ManualMode bool
	IPInput    textinput.Model
	InputErr   error

	Width      int
	Height     int
	Spinner    spinner.Model
	Help       help.Model
	Keys       discoveryKeyMap
	ManualKeys manualKeyMap

	scan ScanFunc
}

// NewDiscoveryModel creates the discovery screen. scan may be nil, in which
// case only manual entry is possible.
func NewDiscoveryModel(scan ScanFunc) DiscoveryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.Placeholder = "192.168.1.20"
	input.CharLimit = 15
	input.Width = 20

	devices := list.New([]list.Item{}, deviceDelegate{}, 0, 0)
	devices.Title = "Displays"
	devices.SetShowStatusBar(false)
	devices.SetShowHelp(false)
	devices.SetFilteringEnabled(false)
	devices.KeyMap.Quit.SetEnabled(false)
	devices.KeyMap.ForceQuit.SetEnabled(false)
	devices.Styles.Title = TitleStyle

	return DiscoveryModel{
		DeviceList: devices,
		IPInput:    input,
		Spinner:    s,
		Help:       help.New(),
		Keys: discoveryKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
			Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "monitor")),
			Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
			Manual: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "enter IP")),
			Quit:   key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		},
		ManualKeys: manualKeyMap{
			Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
			Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		},
		scan: scan,
	}
}

// Init starts the first scan.
func (m DiscoveryModel) Init() tea.Cmd {
	return m.startScan()
}

func (m DiscoveryModel) startScan() tea.Cmd {
	if m.scan == nil {
		return nil
	}
	scan := m.scan
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
			defer cancel()
			devices, err := scan(ctx)
			return scanCompleteMsg{devices: devices, err: err}
		},
		m.Spinner.Tick,
	)
}

// Update handles messages for the discovery screen.
func (m DiscoveryModel) Update(msg tea.Msg) (DiscoveryModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DeviceList.SetSize(max(msg.Width-6, 20), max(msg.Height-10, 5))

	case scanStartMsg:
		m.Scanning = true

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.devices))
		for i, d := range msg.devices {
			items[i] = deviceItem{device: d}
		}
		m.DeviceList.SetItems(items)

	case spinner.TickMsg:
		if m.Scanning {
			m.Spinner, cmd = m.Spinner.Update(msg)
		}
		return m, cmd
	}

	return m, nil
}

func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (DiscoveryModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Enter):
		if item, ok := m.DeviceList.SelectedItem().(deviceItem); ok {
			m.Selected = item.device
		}
		return m, nil

	case key.Matches(msg, m.Keys.Rescan):
		if m.Scanning {
			return m, nil
		}
		m.DeviceList.SetItems(nil)
		m.Err = nil
		return m, m.startScan()

	case key.Matches(msg, m.Keys.Manual):
		m.ManualMode = true
		m.InputErr = nil
		m.IPInput.SetValue("")
		m.IPInput.Focus()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.DeviceList, cmd = m.DeviceList.Update(msg)
	return m, cmd
}

func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (DiscoveryModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.ManualKeys.Cancel):
		m.ManualMode = false
		m.InputErr = nil
		m.IPInput.Blur()
		return m, nil

	case key.Matches(msg, m.ManualKeys.Confirm):
		address := strings.TrimSpace(m.IPInput.Value())
		if err := device.ValidateAddress(address); err != nil {
			m.InputErr = err
			return m, nil
		}
		d := &discovery.Device{Address: address, Name: "manual", DiscoveredAt: time.Now()}
		items := append([]list.Item{deviceItem{device: d}}, m.DeviceList.Items()...)
		m.DeviceList.SetItems(items)
		m.DeviceList.Select(0)
		m.ManualMode = false
		m.IPInput.Blur()
		m.Selected = d
		return m, nil
	}

	var cmd tea.Cmd
	m.IPInput, cmd = m.IPInput.Update(msg)
	m.InputErr = nil
	return m, cmd
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	var content, helpText string
	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
		helpText = m.Help.View(m.ManualKeys)
	case m.Scanning:
		content = m.renderScanning()
		helpText = m.Help.View(m.Keys)
	default:
		content = m.renderResults()
		helpText = m.Help.View(m.Keys)
	}
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

func (m DiscoveryModel) renderScanning() string {
	width := m.Width
	if width == 0 {
		width = defaultWidth
	}
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(m.Spinner.View()+" SEARCHING FOR DISPLAYS"),
		"",
		RenderSubtitle("Browsing "+discovery.ServiceType+" on the local network..."),
		"",
	)
	return lipgloss.Place(width-4, 0, lipgloss.Center, lipgloss.Top, content)
}

func (m DiscoveryModel) renderResults() string {
	var b strings.Builder
	b.WriteString("\n")

	switch {
	case m.Err != nil:
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n  Press m to enter an address, r to scan again.\n")
	case len(m.DeviceList.Items()) == 0:
		b.WriteString(RenderWarning("No displays found"))
		b.WriteString("\n\n")
		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Make sure the display is on the same network\n")
		b.WriteString("    • Enable Simple IP control in the display's network settings\n")
		b.WriteString("    • Press m to enter the address by hand\n")
	default:
		b.WriteString(m.DeviceList.View())
	}
	return b.String()
}

func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder
	b.WriteString(RenderTitle("Connect by address"))
	b.WriteString("\n\n  IPv4 address: ")
	b.WriteString(m.IPInput.View())
	b.WriteString("\n")
	if m.InputErr != nil {
		b.WriteString("\n  ")
		b.WriteString(ui.ErrorMessageStyle.Render(m.InputErr.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

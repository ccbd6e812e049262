package monitor

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/bravia/internal/ui"
	"github.com/muurk/bravia/internal/urls"
	"github.com/muurk/bravia/internal/version"
)

// AppName is shown in the header.
const AppName = "BRAVIA MONITOR"

const (
	defaultWidth  = 72
	defaultHeight = 24
)

var (
	BorderColor    = ui.PrimaryColor
	HighlightColor = ui.SuccessColor

	TitleStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor).
			Bold(true).
			Padding(1, 0, 0, 0)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor).
			Italic(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor)

	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(HighlightColor).
				Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor).
			Width(14)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ui.TextColor).
			Bold(true)

	ErrorBannerStyle = lipgloss.NewStyle().
				Foreground(ui.ErrorColor).
				Bold(true).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ui.ErrorColor).
				Padding(0, 2)

	WarningBannerStyle = lipgloss.NewStyle().
				Foreground(ui.WarningColor).
				Bold(true).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ui.WarningColor).
				Padding(0, 2)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	EventStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor)
)

// RenderTitle renders a screen title
func RenderTitle(text string) string {
	return TitleStyle.Render(text)
}

// RenderSubtitle renders a subtitle
func RenderSubtitle(text string) string {
	return SubtitleStyle.Render(text)
}

// RenderError renders an error banner
func RenderError(text string) string {
	return ErrorBannerStyle.Render(ui.FailureMarker + " " + text)
}

// RenderWarning renders a warning banner
func RenderWarning(text string) string {
	return WarningBannerStyle.Render(ui.WarningMarker + " " + text)
}

func buildHeaderContent() string {
	left := lipgloss.NewStyle().
		Foreground(ui.TextColor).
		Bold(true).
		Render(AppName + " v" + version.Version)

	right := lipgloss.NewStyle().
		Foreground(ui.MutedColor).
		Render(urls.Repository)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

// RenderApplicationContainer wraps a screen with the shared header, the
// screen's help line as footer and an outer border filling the terminal.
func RenderApplicationContainer(content, footerText string, width, height int) string {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	header := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(width-4).
		Padding(0, 1).
		Render(buildHeaderContent())

	footer := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(width-4).
		Padding(0, 1).
		Foreground(ui.MutedColor).
		Render(footerText)

	body := lipgloss.NewStyle().Width(width - 4).Render(content)

	inner := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(width - 2).
		Height(height - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, bordered)
}

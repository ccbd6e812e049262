package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/bravia/internal/device"
)

// Printer writes styled CLI output.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth()}
}

// Width returns the content width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// SetWidth overrides the detected width.
func (p *Printer) SetWidth(width int) {
	p.width = clampWidth(width)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Printf writes formatted content.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// PrintHeader prints a title panel with a subtitle and optional details.
func (p *Printer) PrintHeader(title, subtitle string, details ...Detail) {
	p.Println(RenderHeader(title, subtitle, details, p.width))
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Detail) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Detail) {
	p.Println(NewWarningResult(title, details...).SetWidth(p.width).Render())
}

// PrintError prints a failure box. Errors from the device package get
// a short message and the matching troubleshooting tips.
func (p *Printer) PrintError(title string, err error) {
	p.Println(NewFailureResult(title, shortError(err), troubleshooting(err)...).SetWidth(p.width).Render())
}

// RenderHeader renders a title panel.
func RenderHeader(title, subtitle string, details []Detail, width int) string {
	width = clampWidth(width)
	lines := []string{TitleStyle.Render(strings.ToUpper(title))}
	if subtitle != "" {
		lines = append(lines, SubtitleStyle.Render(subtitle))
	}
	if len(details) > 0 {
		lines = append(lines, Divider(width-6))
		lines = append(lines, renderDetails(details)...)
	}
	return PanelStyle(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

type shortErr struct {
	msg string
	err error
}

func (e shortErr) Error() string { return e.msg }
func (e shortErr) Unwrap() error { return e.err }

func shortError(err error) error {
	if err == nil {
		return nil
	}
	msg := device.GetShortErrorMessage(err)
	if msg == "" || msg == err.Error() {
		return err
	}
	return shortErr{msg: msg + " (" + err.Error() + ")", err: err}
}

// troubleshooting extracts the bullet points from a device error hint.
func troubleshooting(err error) []string {
	if err == nil {
		return nil
	}
	var tips []string
	for _, line := range strings.Split(device.GetTroubleshootingHint(err), "\n") {
		if tip, ok := strings.CutPrefix(strings.TrimSpace(line), "• "); ok {
			tips = append(tips, tip)
		}
	}
	return tips
}

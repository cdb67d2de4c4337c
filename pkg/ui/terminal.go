package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	neonCyan    = lipgloss.Color("#00FFFF")
	neonMagenta = lipgloss.Color("#FF00FF")
	neonGreen   = lipgloss.Color("#39FF14")
	neonYellow  = lipgloss.Color("#FFFF00")
	neonRed     = lipgloss.Color("#FF3131")
)

type styles struct {
	label     lipgloss.Style
	value     lipgloss.Style
	success   lipgloss.Style
	failure   lipgloss.Style
	warning   lipgloss.Style
	highlight lipgloss.Style
	panel     lipgloss.Style
	title     lipgloss.Style
}

// Printer writes styled status lines. Colors are dropped automatically when
// the writer is not a terminal.
type Printer struct {
	out    io.Writer
	styles styles
}

// NewPrinter creates a Printer for w
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		out: w,
		styles: styles{
			label:     r.NewStyle().Foreground(neonCyan).Bold(true),
			value:     r.NewStyle().Foreground(neonYellow),
			success:   r.NewStyle().Foreground(neonGreen).Bold(true),
			failure:   r.NewStyle().Foreground(neonRed).Bold(true),
			warning:   r.NewStyle().Foreground(neonYellow),
			highlight: r.NewStyle().Foreground(neonMagenta),
			panel: r.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(neonMagenta).
				Padding(0, 1),
			title: r.NewStyle().Foreground(neonCyan).Bold(true).Underline(true),
		},
	}
}

// Info prints a label/value pair
func (p *Printer) Info(label, value string) {
	fmt.Fprintf(p.out, "%s: %s\n", p.styles.label.Render(label), p.styles.value.Render(value))
}

// Success prints a success message
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.out, p.styles.success.Render(msg))
}

// Error prints msg, followed by err when non-nil
func (p *Printer) Error(msg string, err error) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	fmt.Fprintln(p.out, p.styles.failure.Render(msg))
}

// Warning prints a warning message
func (p *Printer) Warning(msg string) {
	fmt.Fprintln(p.out, p.styles.warning.Render(msg))
}

// Highlight prints a highlighted message
func (p *Printer) Highlight(msg string) {
	fmt.Fprintln(p.out, p.styles.highlight.Render(msg))
}

// Field is one row of a summary panel
type Field struct {
	Label string
	Value string
}

// Summary prints fields inside a bordered panel
func (p *Printer) Summary(title string, fields []Field) {
	width := 0
	for _, f := range fields {
		if len(f.Label) > width {
			width = len(f.Label)
		}
	}

	lines := []string{p.styles.title.Render(title)}
	for _, f := range fields {
		label := f.Label + strings.Repeat(" ", width-len(f.Label))
		lines = append(lines, p.styles.label.Render(label)+"  "+p.styles.value.Render(f.Value))
	}
	fmt.Fprintln(p.out, p.styles.panel.Render(strings.Join(lines, "\n")))
}

var (
	stdout = NewPrinter(os.Stdout)
	stderr = NewPrinter(os.Stderr)
)

// PrintInfo prints a label/value pair to stdout
func PrintInfo(label, value string) { stdout.Info(label, value) }

// PrintSuccess prints a success message to stdout
func PrintSuccess(msg string) { stdout.Success(msg) }

// PrintWarning prints a warning message to stderr
func PrintWarning(msg string) { stderr.Warning(msg) }

// PrintError prints an error message to stderr
func PrintError(msg string, err error) { stderr.Error(msg, err) }

// PrintHighlight prints a highlighted message to stdout
func PrintHighlight(msg string) { stdout.Highlight(msg) }

// PrintSummary prints a bordered summary panel to stdout
func PrintSummary(title string, fields []Field) { stdout.Summary(title, fields) }

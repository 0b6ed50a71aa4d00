// Package console prints user-facing status lines, colored by severity and
// gated by a verbosity flag.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
)

// Severity selects the color of a status line.
type Severity string

const (
	Normal  Severity = "normal"
	Warning Severity = "warning"
	Error   Severity = "error"
	Info    Severity = "info"
	Success Severity = "success"
)

var palette = map[Severity]color.Color{
	Warning: color.FgLightYellow,
	Error:   color.FgLightRed,
	Info:    color.FgLightBlue,
	Success: color.FgLightGreen,
}

// ParseSeverity maps a label to a Severity; unknown labels are Normal.
func ParseSeverity(label string) Severity {
	switch s := Severity(strings.ToLower(label)); s {
	case Warning, Error, Info, Success:
		return s
	default:
		return Normal
	}
}

// Printer writes status lines to Out.
type Printer struct {
	Out     io.Writer
	Verbose bool
	Color   bool
}

// New returns a printer on stdout.
func New(verbose, useColor bool) *Printer {
	return &Printer{Out: os.Stdout, Verbose: verbose, Color: useColor}
}

// Discard returns a printer that never writes.
func Discard() *Printer {
	return &Printer{Out: io.Discard}
}

// Printv prints msg when verbose is set.
func (p *Printer) Printv(msg string, verbose bool, sev Severity) {
	if p == nil || !verbose {
		return
	}
	fmt.Fprintln(p.out(), p.render(msg, sev))
}

// Print prints msg gated by the printer's own verbosity.
func (p *Printer) Print(msg string, sev Severity) {
	if p == nil {
		return
	}
	p.Printv(msg, p.Verbose, sev)
}

// Always prints msg regardless of verbosity.
func (p *Printer) Always(msg string, sev Severity) {
	p.Printv(msg, true, sev)
}

func (p *Printer) render(msg string, sev Severity) string {
	if !p.Color {
		return msg
	}
	c, ok := palette[sev]
	if !ok {
		return msg
	}
	return c.Render(msg)
}

func (p *Printer) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

// Package output handles user-facing progress reporting on stderr.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Mode controls how much intermediate engine activity is shown.
type Mode int

const (
	// Quiet suppresses intermediate activity.
	Quiet Mode = iota
	// Summary shows one line per tool invocation.
	Summary
	// Echo shows tool invocations paired with their following output block.
	Echo
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	okColor     = color.New(color.FgGreen)
	failColor   = color.New(color.FgRed)
	dimColor    = color.New(color.Faint)
)

// Printer writes progress to stderr. Display modes are chosen per phase by
// the caller, so the printer itself carries no state.
type Printer struct{}

// NewPrinter creates a Printer.
func NewPrinter() *Printer {
	return &Printer{}
}

// Phase prints a phase banner.
func (p *Printer) Phase(title string) {
	fmt.Fprintln(os.Stderr)
	headerColor.Fprintln(os.Stderr, strings.Repeat("=", 60))
	headerColor.Fprintf(os.Stderr, "  %s\n", title)
	headerColor.Fprintln(os.Stderr, strings.Repeat("=", 60))
	fmt.Fprintln(os.Stderr)
}

// Progress prints a progress line.
func (p *Printer) Progress(message string) {
	fmt.Fprintf(os.Stderr, "  ... %s\n", message)
}

// Result prints a prominent outcome line, colored by success.
func (p *Printer) Result(ok bool, message string) {
	c := okColor
	if !ok {
		c = failColor
	}
	fmt.Fprintln(os.Stderr)
	c.Fprintf(os.Stderr, "  >> %s\n", message)
	fmt.Fprintln(os.Stderr)
}

// Error prints a one-line diagnostic.
func (p *Printer) Error(message string) {
	failColor.Fprintf(os.Stderr, "\n  !! ERROR: %s\n\n", message)
}

// ToolUse reports one tool invocation according to mode. Denied invocations
// are always shown; the engine was told why, and so is the operator.
func (p *Printer) ToolUse(mode Mode, tool, detail string, denied bool, reason string) {
	if denied {
		failColor.Fprintf(os.Stderr, "  [denied] %s: %s\n", tool, reason)
		return
	}
	if mode == Quiet {
		return
	}
	if detail != "" {
		dimColor.Fprintf(os.Stderr, "  [%s] %s\n", tool, truncate(detail, 120))
	} else {
		dimColor.Fprintf(os.Stderr, "  [%s]\n", tool)
	}
}

// EchoOutput prints the text block following a tool invocation in Echo mode.
// This pairing is display-only; the phase output always carries every text
// block regardless of mode.
func (p *Printer) EchoOutput(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		dimColor.Fprintf(os.Stderr, "      %s\n", line)
	}
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Printer writes styled status lines.
type Printer struct {
	w       io.Writer
	palette *Palette
}

// NewPrinter creates a [Printer] writing to w (default [os.Stdout]) with p (default [DefaultPalette]).
func NewPrinter(w io.Writer, p *Palette) *Printer {
	if w == nil {
		w = os.Stdout
	}
	if p == nil {
		p = DefaultPalette
	}
	return &Printer{w: w, palette: p}
}

func (p *Printer) line(s string) error {
	if _, err := fmt.Fprintln(p.w, s); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Header writes a title between two rules.
func (p *Printer) Header(title string) error {
	rule := strings.Repeat("═", 39)
	return p.line(rule + "\n" + p.palette.Title(title) + "\n" + rule)
}

func (p *Printer) Success(format string, args ...any) error {
	return p.line(p.palette.OK("✓ " + fmt.Sprintf(format, args...)))
}

func (p *Printer) Failure(format string, args ...any) error {
	return p.line(p.palette.Error("✗ " + fmt.Sprintf(format, args...)))
}

func (p *Printer) Warning(format string, args ...any) error {
	return p.line(p.palette.Warn("⚠ " + fmt.Sprintf(format, args...)))
}

// Step announces an action that is about to happen.
func (p *Printer) Step(format string, args ...any) error {
	return p.line("→ " + fmt.Sprintf(format, args...))
}

// Field writes an aligned "key: value" pair with a muted key.
func (p *Printer) Field(key string, value any) error {
	return p.line(p.palette.Muted(fmt.Sprintf("%-14s", key+":")) + " " + fmt.Sprint(value))
}

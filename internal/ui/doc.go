// Package ui renders styled terminal output for the CLI using lipgloss.
//
// A [Palette] holds the named styles (title, ok, error, warning, muted) and a [Printer] writes
// status lines built from them: "✓" for success, "✗" for failures, "⚠" for warnings and "→" for steps.
//
// Colors degrade to plain text automatically when the output is not a terminal.
package ui

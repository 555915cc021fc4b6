// Package ui provides the visual styling for hookify's terminal output.
// Diagnostics and reports are line-oriented; these styles only color and
// weight them, layout stays with the caller.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Semantic colors, shared by every command.
var (
	Destructive = lipgloss.Color("#e53935") // Red
	Success     = lipgloss.Color("#8BC34A") // Lime Green
	Warning     = lipgloss.Color("#FFC107") // Yellow
	Info        = lipgloss.Color("#2196F3") // Blue
	Muted       = lipgloss.Color("#9e9e9e") // Grey
)

// Styles holds the styled components.
type Styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Muted   lipgloss.Style
	Badge   lipgloss.Style
}

// NewStyles creates the default style set.
func NewStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		Muted: lipgloss.NewStyle().
			Foreground(Muted),

		Badge: lipgloss.NewStyle().
			Background(Success).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),
	}
}

// OK renders a success line.
func (s Styles) OK(msg string) string {
	return s.Success.Render("✓") + " " + msg
}

// Fail renders a failure line.
func (s Styles) Fail(msg string) string {
	return s.Error.Render("✗") + " " + msg
}

// Warn renders a warning line.
func (s Styles) Warn(msg string) string {
	return s.Warning.Render("!") + " " + msg
}

// Severity renders a colored severity tag.
func (s Styles) Severity(severity string) string {
	switch severity {
	case "error":
		return s.Error.Render("ERROR")
	case "warning":
		return s.Warning.Render("WARNING")
	default:
		return s.Info.Render(strings.ToUpper(severity))
	}
}

// Package ui defines the visual styling for toolup's terminal output.
//
// All styles use semantic names and adaptive colors that automatically
// adjust to light and dark terminal themes.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	// WarningLabel styles the "WARNING" prefix on fallback notices
	WarningLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD700"})

	// ErrorLabel styles the "error" prefix on fatal messages
	ErrorLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"})

	// Emphasis styles component, alias and channel names in listings
	Emphasis = lipgloss.NewStyle().Bold(true)

	// Heading styles section headers in help output
	Heading = lipgloss.NewStyle().Bold(true).Underline(true)
)

// Warning formats a fallback warning line for terminal display
func Warning(text string) string {
	return fmt.Sprintf("%s: %s", WarningLabel.Render("WARNING"), text)
}

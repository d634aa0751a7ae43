package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	neonCyan    = lipgloss.Color("#00FFFF")
	neonMagenta = lipgloss.Color("#FF00FF")
	neonGreen   = lipgloss.Color("#39FF14")
	neonYellow  = lipgloss.Color("#FFFF00")
	alertRed    = lipgloss.Color("#FF0000")
	dimWhite    = lipgloss.Color("#B0B0B0")

	successStyle = lipgloss.NewStyle().
			Foreground(neonGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(alertRed).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(neonCyan).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(neonYellow)

	dimStyle = lipgloss.NewStyle().
			Foreground(dimWhite).
			Faint(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(neonMagenta)
)

// Bar gradient, from an empty album to a finished one
const (
	barStartColor = "#FF00FF"
	barEndColor   = "#39FF14"
)

// render applies style unless colors are disabled
func render(style lipgloss.Style, text string) string {
	outputMu.Lock()
	plain := noColor
	outputMu.Unlock()
	if plain {
		return text
	}
	return style.Render(text)
}

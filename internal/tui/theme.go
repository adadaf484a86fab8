package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorSuccess = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#66bb6a"}
	colorError   = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ef5350"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#e65100", Dark: "#ffa726"}
	colorInfo    = lipgloss.AdaptiveColor{Light: "#0277bd", Dark: "#4fc3f7"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#6a1b9a", Dark: "#ce93d8"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9e9e9e"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#bdbdbd", Dark: "#616161"}
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).MarginBottom(1)
	stepStyle  = lipgloss.NewStyle().Foreground(colorInfo).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	labelStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)

	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)

	selectedStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	panelStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

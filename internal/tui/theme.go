package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha palette — true-color hex values
// https://catppuccin.com/palette

const (
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorBase     lipgloss.Color = "#1e1e2e"
)

// Semantic aliases
const (
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorMauve)

	statusStyle = lipgloss.NewStyle().Foreground(colorSubtext0)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError)
	helpStyle   = lipgloss.NewStyle().Foreground(colorOverlay1)

	gridStyle     = lipgloss.NewStyle().Foreground(colorSurface1)
	labelStyle    = lipgloss.NewStyle().Foreground(colorText)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFocus)

	cursorRowStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFocus)
	overStyle      = lipgloss.NewStyle().Foreground(colorError)
	okStyle        = lipgloss.NewStyle().Foreground(colorSuccess)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorOverlay0).
			Padding(0, 1)
)

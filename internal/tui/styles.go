package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorPurple = lipgloss.Color("#7D56F4")
	colorGreen  = lipgloss.Color("#04B575")
	colorRed    = lipgloss.Color("#FF4141")
	colorGray   = lipgloss.Color("#626262")
	colorYellow = lipgloss.Color("#FFB454")
	colorWhite  = lipgloss.Color("#FFFFFF")

	styleTitle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true).
			MarginBottom(1)

	styleTable = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPurple).
			Padding(0, 1)

	styleHeader = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true).
			BorderBottom(true).
			BorderForeground(colorGray)

	styleSelected = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(colorPurple).
			Bold(true)

	styleCompleted = lipgloss.NewStyle().Foreground(colorGreen)
	styleFailed    = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	styleRunning   = lipgloss.NewStyle().Foreground(colorYellow)
	stylePending   = lipgloss.NewStyle().Foreground(colorGray)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	styleHelp = lipgloss.NewStyle().
			Foreground(colorGray)
)

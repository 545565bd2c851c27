package tui

import "github.com/charmbracelet/lipgloss"

// Adaptive pairs keep the dashboard readable on light terminals.
var (
	colorOK     = lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#22c55e"}
	colorBad    = lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#ef4444"}
	colorWarn   = lipgloss.AdaptiveColor{Light: "#a16207", Dark: "#eab308"}
	colorAccent = lipgloss.AdaptiveColor{Light: "#1d4ed8", Dark: "#60a5fa"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginTop(1)
	readyStyle   = lipgloss.NewStyle().Foreground(colorOK)
	failedStyle  = lipgloss.NewStyle().Foreground(colorBad)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarn)
	dimStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	activeStyle  = lipgloss.NewStyle().Bold(true)

	progressBarFull  = lipgloss.NewStyle().Foreground(colorOK)
	progressBarEmpty = lipgloss.NewStyle().Foreground(colorMuted)

	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1)
)

// Status marks, shared with the static report renderer.
const (
	checkMark = "[OK]"
	crossMark = "[!!]"
	warnMark  = "[??]"
	pending   = "[  ]"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

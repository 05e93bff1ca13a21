package main

import "github.com/charmbracelet/lipgloss"

// Colors are 256-color codes so they read on most terminal themes.
var (
	// docStyle frames the whole screen.
	docStyle = lipgloss.NewStyle().Margin(0, 1)

	// Tab bar: inactive tabs are muted, the active one is highlighted.
	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	activeTabStyle = tabStyle.
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("63")).
			Bold(true)

	// addressStyle boxes the address bar input.
	addressStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	// statusStyle is the bottom line with back/forward state and messages.
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	// Back/forward arrows, dimmed when there is nowhere to go.
	navEnabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	navDisabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	// Status messages.
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))

	// spinnerStyle colors the loading spinner and the address prompt.
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

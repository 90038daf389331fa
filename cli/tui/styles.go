// Package tui provides the interactive results browser for webpify convert.
//
// The browser is opt-in (--tui) and shows the same results the non-TUI
// summary renders. Downloads go through the session like any other caller.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	successColor   = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	highlightColor = lipgloss.Color("#3B82F6") // Blue
)

// Styles for TUI components.
var (
	// TitleStyle for headers and titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// RowStyle for unfocused result rows.
	RowStyle = lipgloss.NewStyle().PaddingLeft(2)

	// CursorStyle for the focused result row.
	CursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlightColor)

	// MutedStyle for sizes and secondary text.
	MutedStyle = lipgloss.NewStyle().Foreground(mutedColor)

	// SuccessStyle for saved locations.
	SuccessStyle = lipgloss.NewStyle().Foreground(successColor)

	// WarningStyle for in-progress and partial states.
	WarningStyle = lipgloss.NewStyle().Foreground(warningColor)

	// ErrorStyle for failures.
	ErrorStyle = lipgloss.NewStyle().Foreground(errorColor)

	// BoxStyle for the results container.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)
)

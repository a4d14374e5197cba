package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/aristath/taskplanner/internal/model"
)

// Border styles
var (
	StyleFocusedBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62"))

	StyleUnfocusedBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))
)

// Status styles
var (
	StyleStatusInProgress = lipgloss.NewStyle().
				Foreground(lipgloss.Color("yellow")).
				Bold(true)

	StyleStatusComplete = lipgloss.NewStyle().
				Foreground(lipgloss.Color("green")).
				Bold(true)

	StyleStatusBlocked = lipgloss.NewStyle().
				Foreground(lipgloss.Color("red")).
				Bold(true)

	StyleStatusPending = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))
)

// UI element styles
var (
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	StyleHelp = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	StyleSelected = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("0"))

	StyleLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	StyleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)

// StatusStyle returns the style used to render status.
func StatusStyle(status model.TaskStatus) lipgloss.Style {
	switch status {
	case model.StatusInProgress:
		return StyleStatusInProgress
	case model.StatusCompleted:
		return StyleStatusComplete
	case model.StatusBlocked:
		return StyleStatusBlocked
	default:
		return StyleStatusPending
	}
}

// StatusIcon returns a styled status indicator.
func StatusIcon(status model.TaskStatus) string {
	switch status {
	case model.StatusInProgress:
		return StyleStatusInProgress.Render("●")
	case model.StatusCompleted:
		return StyleStatusComplete.Render("✓")
	case model.StatusBlocked:
		return StyleStatusBlocked.Render("✗")
	default:
		return StyleStatusPending.Render("○")
	}
}

package styles

import (
	"github.com/charmbracelet/lipgloss"

	"aio/internal/domain"
)

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Muted     = lipgloss.Color("#6B7280") // Gray
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	White     = lipgloss.Color("#FFFFFF")
	Black     = lipgloss.Color("#000000")

	// Status colors
	StatusInbox     = lipgloss.Color("#60A5FA") // Blue
	StatusNext      = Secondary
	StatusWaiting   = Warning
	StatusScheduled = lipgloss.Color("#8B5CF6") // Violet
	StatusSomeday   = Muted
	StatusCompleted = Muted

	// Base styles
	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Task row styles
	RowID = lipgloss.NewStyle().
		Foreground(Muted)

	RowTitle = lipgloss.NewStyle()

	RowSelected = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	RowOverdue = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	RowDueToday = lipgloss.NewStyle().
			Foreground(Warning)

	// Filter bar
	FilterActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Padding(0, 1)

	FilterInactive = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	// Input styles
	InputLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	InputField = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	InputFocused = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)

	// Help styles
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	// Message styles
	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// Muted text style (for using Muted color as a style)
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// StatusColor returns the color for a task status
func StatusColor(status domain.TaskStatus) lipgloss.Color {
	switch status {
	case domain.StatusInbox:
		return StatusInbox
	case domain.StatusNext:
		return StatusNext
	case domain.StatusWaiting:
		return StatusWaiting
	case domain.StatusScheduled:
		return StatusScheduled
	case domain.StatusSomeday:
		return StatusSomeday
	case domain.StatusCompleted:
		return StatusCompleted
	default:
		return Primary
	}
}

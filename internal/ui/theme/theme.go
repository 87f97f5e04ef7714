package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathlearn/internal/curriculum"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Heading = lipgloss.NewStyle().
		Bold(true).
		Foreground(Secondary)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// States
var (
	Good = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Bad = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	Warn = lipgloss.NewStyle().
		Foreground(Accent)
)

// Components
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	TableBorder = lipgloss.NewStyle().
			Foreground(Border)

	TableHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	TableCell = lipgloss.NewStyle().
			Foreground(Text).
			Padding(0, 1)

	ProgressFilled = lipgloss.NewStyle().
			Foreground(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Foreground(Border)
)

// ForStatus returns the style for a topic in state s. Locked topics are
// dimmed whatever their state.
func ForStatus(s curriculum.TopicStatus, locked bool) lipgloss.Style {
	switch {
	case s == curriculum.StatusMastered:
		return Good
	case locked:
		return Hint
	case s == curriculum.StatusPracticing:
		return Warn
	default:
		return Body
	}
}

package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathlearn/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64 // 0..1
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var b strings.Builder

	if p.Label != "" {
		b.WriteString(theme.Body.Render(p.Label))
		b.WriteString("  ")
	}

	labelWidth := lipgloss.Width(b.String())
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // "  100%"
	}

	barWidth := max(p.Width-labelWidth-percentWidth, 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)

	b.WriteString(theme.ProgressFilled.Render(strings.Repeat("█", filled)))
	b.WriteString(theme.ProgressEmpty.Render(strings.Repeat("░", barWidth-filled)))

	if p.ShowPercent {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  %d%%", int(p.Percent*100))))
	}
	return b.String()
}

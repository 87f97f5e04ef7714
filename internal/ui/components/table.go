package components

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/mathlearn/internal/ui/theme"
)

// Table renders rows under headers with the theme's border and cell styles.
func Table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(theme.TableBorder).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.TableHeader
			}
			return theme.TableCell
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

// Card wraps content in a rounded border with a title line.
func Card(title, content string) string {
	return theme.Card.Render(lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render(title),
		content,
	))
}

package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Yellow
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// Filter bar
	filterLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	filterValueStyle = lipgloss.NewStyle().
				Foreground(secondaryColor).
				Bold(true)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(errorColor)

	statusMutedStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	// Help style
	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	listPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	// Detail panel styles
	detailPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(mutedColor).
				Padding(0, 2)

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Width(12)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF"))
)

// CategoryBadge renders a category with its color
func CategoryBadge(category string) string {
	var color lipgloss.Color
	switch category {
	case "BASIC":
		color = mutedColor
	case "ADVANCED":
		color = secondaryColor
	case "PREMIUM":
		color = warningColor
	default:
		color = primaryColor
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(category)
}

// LevelBar renders level 1..100 as a ten cell bar
func LevelBar(level int) string {
	filled := level / 10
	if filled > 10 {
		filled = 10
	}
	if filled < 0 {
		filled = 0
	}
	return lipgloss.NewStyle().Foreground(secondaryColor).Render(repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(mutedColor).Render(repeat("░", 10-filled))
}

func repeat(s string, n int) string {
	result := ""
	for i := 0; i < n; i++ {
		result += s
	}
	return result
}

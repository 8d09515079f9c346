// Package report renders build summaries for terminal output.
package report

import "github.com/charmbracelet/lipgloss"

// Terminal styles for consistent output formatting. Lipgloss
// automatically degrades colors based on terminal capabilities.
var (
	// StyleCyan is used for file paths and section headers.
	StyleCyan = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	// StyleRed is used for transform failures.
	StyleRed = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	// StyleYellow is used for warnings.
	StyleYellow = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	// StyleGreen is used for success messages.
	StyleGreen = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	// StyleGray is used for hints and secondary counts.
	StyleGray = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Render applies a lipgloss style to text when colors are enabled;
// otherwise the text is returned unmodified.
func Render(style lipgloss.Style, text string, useColors bool) string {
	if !useColors {
		return text
	}
	return style.Render(text)
}

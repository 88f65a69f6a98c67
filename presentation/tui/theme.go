package tui

import "github.com/charmbracelet/lipgloss"

// Theme はライト・ダークそれぞれの配色
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Background lipgloss.Color
	Paper      lipgloss.Color
	Text       lipgloss.Color
	FaintText  lipgloss.Color
	Border     lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
}

var LightTheme = Theme{
	Name:       "light",
	Primary:    lipgloss.Color("#1976d2"),
	Background: lipgloss.Color("#f4f6f9"),
	Paper:      lipgloss.Color("#ffffff"),
	Text:       lipgloss.Color("#212121"),
	FaintText:  lipgloss.Color("#757575"),
	Border:     lipgloss.Color("#bdbdbd"),
	Success:    lipgloss.Color("#2e7d32"),
	Error:      lipgloss.Color("#d32f2f"),
}

var DarkTheme = Theme{
	Name:       "dark",
	Primary:    lipgloss.Color("#90caf9"),
	Background: lipgloss.Color("#121212"),
	Paper:      lipgloss.Color("#1d1d1d"),
	Text:       lipgloss.Color("#e0e0e0"),
	FaintText:  lipgloss.Color("#9e9e9e"),
	Border:     lipgloss.Color("#424242"),
	Success:    lipgloss.Color("#66bb6a"),
	Error:      lipgloss.Color("#f44336"),
}

func ThemeFor(dark bool) Theme {
	if dark {
		return DarkTheme
	}
	return LightTheme
}

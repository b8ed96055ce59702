package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/somnolab/somno/internal/usleep"
)

// Theme defines the colors for the watch view.
type Theme struct {
	Name string

	Text    string
	Muted   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Border  string
}

var themes = map[string]Theme{
	"dark": {
		Name:    "dark",
		Text:    "#E6E6E6",
		Muted:   "#6C6C6C",
		Accent:  "#8BE9FD",
		Success: "#50FA7B",
		Warning: "#F1FA8C",
		Danger:  "#FF5555",
		Border:  "#44475A",
	},
	"light": {
		Name:    "light",
		Text:    "#1C1C1C",
		Muted:   "#8A8A8A",
		Accent:  "#005F87",
		Success: "#008700",
		Warning: "#AF8700",
		Danger:  "#D70000",
		Border:  "#B2B2B2",
	},
}

// ThemeByName resolves a theme, falling back to dark for unknown names.
func ThemeByName(name string) Theme {
	if t, ok := themes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t
	}
	return themes["dark"]
}

// Styles holds the Lipgloss styles derived from a theme.
type Styles struct {
	Header    lipgloss.Style
	Muted     lipgloss.Style
	Status    lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Danger    lipgloss.Style
	LogFrame  lipgloss.Style
	Help      lipgloss.Style
	Separator lipgloss.Style
}

// Styles returns the Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.Accent)),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.Success)),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),
		Danger: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.Danger)),
		LogFrame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),
		Separator: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Border)),
	}
}

// statusStyle picks the style for a job status.
func (s Styles) statusStyle(status usleep.JobStatus) lipgloss.Style {
	switch status {
	case usleep.StatusSuccess:
		return s.Success
	case usleep.StatusFailed:
		return s.Danger
	case usleep.StatusRunning:
		return s.Warning
	}
	return s.Status
}

package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	muted  = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	danger = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
)

type styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	UserLabel lipgloss.Style
	UserText  lipgloss.Style
	BotLabel  lipgloss.Style
	Empty     lipgloss.Style
	Spinner   lipgloss.Style
	Input     lipgloss.Style
	Settings  lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Footer    lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		Subtitle:  lipgloss.NewStyle().Foreground(muted),
		UserLabel: lipgloss.NewStyle().Bold(true).Foreground(accent).MarginTop(1),
		UserText:  lipgloss.NewStyle().PaddingLeft(2),
		BotLabel:  lipgloss.NewStyle().Bold(true).MarginTop(1),
		Empty:     lipgloss.NewStyle().Foreground(muted).Align(lipgloss.Center),
		Spinner:   lipgloss.NewStyle().Foreground(accent),
		Input:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
		Settings:  lipgloss.NewStyle().Foreground(muted),
		Status:    lipgloss.NewStyle().Foreground(muted).Italic(true),
		Error:     lipgloss.NewStyle().Foreground(danger),
		Footer:    lipgloss.NewStyle().Foreground(muted),
	}
}

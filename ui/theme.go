package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/kelseyhightower/envconfig"
)

// Theme holds the palette of the terminal client.
type Theme struct {
	Primary   string `envconfig:"CHAT_THEME_PRIMARY" default:"#7C3AED"`
	Accent    string `envconfig:"CHAT_THEME_ACCENT" default:"#10B981"`
	Muted     string `envconfig:"CHAT_THEME_MUTED" default:"#9CA3AF"`
	Alert     string `envconfig:"CHAT_THEME_ALERT" default:"#EF4444"`
	Highlight string `envconfig:"CHAT_THEME_HIGHLIGHT" default:"#F59E0B"`
}

func LoadTheme() (Theme, error) {
	var theme Theme
	err := envconfig.Process("", &theme)
	return theme, err
}

type styles struct {
	title      lipgloss.Style
	muted      lipgloss.Style
	alert      lipgloss.Style
	online     lipgloss.Style
	selected   lipgloss.Style
	unselected lipgloss.Style
	pane       lipgloss.Style
	header     lipgloss.Style
	sent       lipgloss.Style
	received   lipgloss.Style
	badge      lipgloss.Style
	mark       lipgloss.Style
	toast      lipgloss.Style
}

func newStyles(t Theme) styles {
	primary := lipgloss.Color(t.Primary)
	accent := lipgloss.Color(t.Accent)
	muted := lipgloss.Color(t.Muted)
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			Padding(0, 1),
		muted: lipgloss.NewStyle().
			Foreground(muted),
		alert: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Alert)),
		online: lipgloss.NewStyle().
			Foreground(accent),
		selected: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			PaddingLeft(1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(accent),
		unselected: lipgloss.NewStyle().
			PaddingLeft(2),
		pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(muted).
			Padding(0, 1),
		sent: lipgloss.NewStyle().
			Foreground(accent),
		received: lipgloss.NewStyle().
			Foreground(primary),
		badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primary).
			Padding(0, 1),
		mark: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color(t.Highlight)),
		toast: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
	}
}

package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/conduit-lang/explorer/internal/explorer"
)

// Styles are the lipgloss styles of the browser, derived from a theme.
type Styles struct {
	Title   lipgloss.Style
	Status  lipgloss.Style
	Muted   lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Label   lipgloss.Style
	Table   table.Styles
}

// NewStyles builds styles from theme.
func NewStyles(theme explorer.Theme) Styles {
	def := explorer.DefaultTheme()
	accent := lipgloss.Color(orDefault(theme.Accent, def.Accent))
	muted := lipgloss.Color(orDefault(theme.Muted, def.Muted))
	fg := lipgloss.Color(orDefault(theme.Foreground, def.Foreground))

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(accent).
		BorderBottom(true).
		Foreground(accent).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("#000000")).
		Background(accent).
		Bold(false)
	ts.Cell = ts.Cell.Foreground(fg)

	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Status:  lipgloss.NewStyle().Foreground(muted),
		Muted:   lipgloss.NewStyle().Foreground(muted),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#e5c07b")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#e06c75")).Bold(true),
		Label:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		Table:   ts,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Package tui provides the terminal dashboard for browsing weekly reports.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/vendas/internal/tui/theme"
)

// Styles holds all lipgloss styles for the dashboard, derived from a theme.
type Styles struct {
	Title       lipgloss.Style
	Role        lipgloss.Style
	Range       lipgloss.Style
	TableHeader lipgloss.Style
	Row         lipgloss.Style
	RowSelected lipgloss.Style
	RowIdle     lipgloss.Style // actors with no records this week
	Total       lipgloss.Style
	Good        lipgloss.Style
	Weak        lipgloss.Style
	Error       lipgloss.Style
	Status      lipgloss.Style
	Prompt      lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme loads mocha.
func NewStyles(t *theme.Theme) *Styles {
	if t == nil {
		t, _ = theme.Load("mocha")
	}
	fg := theme.Color(t.Fg)
	muted := theme.Color(t.FgMuted)
	accent := theme.Color(t.Accent)

	return &Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(accent),
		Role:        lipgloss.NewStyle().Bold(true).Foreground(fg),
		Range:       lipgloss.NewStyle().Foreground(muted),
		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(accent),
		Row:         lipgloss.NewStyle().Foreground(fg),
		RowSelected: lipgloss.NewStyle().Foreground(fg).Background(theme.Color(t.BgSelection)),
		RowIdle:     lipgloss.NewStyle().Foreground(muted),
		Total:       lipgloss.NewStyle().Bold(true).Foreground(fg),
		Good:        lipgloss.NewStyle().Foreground(theme.Color(t.Good)),
		Weak:        lipgloss.NewStyle().Foreground(theme.Color(t.Weak)),
		Error:       lipgloss.NewStyle().Bold(true).Foreground(theme.Color(t.Warning)),
		Status:      lipgloss.NewStyle().Foreground(muted).Italic(true),
		Prompt:      lipgloss.NewStyle().Foreground(accent),
	}
}

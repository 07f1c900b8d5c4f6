package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/vendas/internal/bizweek"
	"github.com/javiermolinar/vendas/internal/report"
	"github.com/javiermolinar/vendas/internal/sales"
)

// reportLoadedMsg is sent when a weekly report has been computed.
type reportLoadedMsg struct {
	seq    int
	report report.WeekReport
	err    error
}

// linkDoneMsg is sent when a link run finishes.
type linkDoneMsg struct {
	week   bizweek.Week
	linked int
	err    error
}

func loadReport(src Source, role sales.Role, week bizweek.Week, seq int, fresh bool) tea.Cmd {
	return func() tea.Msg {
		load := src.Week
		if fresh {
			load = src.Refresh
		}
		r, err := load(context.Background(), role, week.Start)
		return reportLoadedMsg{seq: seq, report: r, err: err}
	}
}

func runLink(fn LinkFunc, week bizweek.Week) tea.Cmd {
	return func() tea.Msg {
		n, err := fn(context.Background(), week)
		return linkDoneMsg{week: week, linked: n, err: err}
	}
}

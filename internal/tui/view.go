package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/vendas/internal/report"
	"github.com/javiermolinar/vendas/internal/sales"
)

const (
	maxNameWidth = 24
	minNameWidth = 8
	// width of every column after the name, separators included
	fixedColumnsWidth = 54
	// header, blank line, table header, rule, total, status and help
	chromeLines = 8
)

// View renders the model.
func (m Model) View() string {
	var sections []string
	sections = append(sections, m.renderHeader(), "")

	switch {
	case m.err != nil:
		sections = append(sections, m.styles.Error.Render("Error: "+m.err.Error()))
	case m.report == nil:
		sections = append(sections, m.styles.Status.Render("Loading..."))
	default:
		sections = append(sections, m.renderTable()...)
	}

	sections = append(sections, "", m.renderFooter(), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render("Vendas")
	role := m.styles.Role.Render(strings.ToUpper(string(m.role)))
	week := m.styles.Role.Render(m.week.String())
	span := m.styles.Range.Render(report.WeekRange(m.week))

	header := title + "  " + role + "  " + week + "  " + span
	if m.loading {
		header += m.styles.Status.Render("  loading")
	}
	return header
}

func (m Model) renderTable() []string {
	nw := m.nameWidth()
	r := m.report

	lines := []string{
		m.styles.TableHeader.Render(fmt.Sprintf("%-*s %8s %5s %5s %13s %11s %6s",
			nw, "Name", countLabel(r.Role), "Conv", "Rate", "Value", "Payout", "Score")),
		m.styles.Range.Render(strings.Repeat("─", nw+fixedColumnsWidth)),
	}

	if len(r.Rows) == 0 {
		lines = append(lines, m.styles.RowIdle.Render("No "+strings.ToLower(countLabel(r.Role))+" this week"))
	}
	first, last := m.visibleRange(len(r.Rows))
	for i := first; i < last; i++ {
		lines = append(lines, m.renderRow(r.Rows[i], nw, i == m.cursor))
	}

	lines = append(lines, m.styles.Total.Render(fmt.Sprintf("%-*s %8d %5d %4d%% %13s %11s",
		nw, "Total", r.Total.Total, r.Total.Converted, r.Total.RatePercent(),
		report.FormatMoney(r.Total.Sum), report.FormatMoney(r.Payout()))))
	return lines
}

func (m Model) renderRow(row report.Row, nw int, selected bool) string {
	name := ansi.Truncate(row.Name, nw, "…")
	left := fmt.Sprintf("%-*s %8d %5d ", nw, name, row.Total, row.Converted)
	rate := fmt.Sprintf("%4d%%", row.RatePercent())
	right := fmt.Sprintf(" %13s %11s %6d", report.FormatMoney(row.Sum), report.FormatMoney(row.Payout), row.Score)

	if selected {
		return m.styles.RowSelected.Render(left + rate + right)
	}
	base := m.styles.Row
	if row.Total == 0 {
		base = m.styles.RowIdle
	}
	return base.Render(left) + m.rateStyle(row, base).Render(rate) + base.Render(right)
}

// rateStyle colors the top commission tier as good and the bottom one as weak.
func (m Model) rateStyle(row report.Row, base lipgloss.Style) lipgloss.Style {
	if m.plan == nil || row.Total == 0 {
		return base
	}
	tiers := m.plan.Tiers()
	switch {
	case len(tiers) == 0:
		return base
	case row.Rate >= tiers[len(tiers)-1].MinRate:
		return m.styles.Good
	case len(tiers) > 1 && row.Rate < tiers[1].MinRate:
		return m.styles.Weak
	}
	return base
}

func (m Model) renderFooter() string {
	if m.mode == ModeJump {
		return m.styles.Prompt.Render(m.jump.View())
	}
	return m.styles.Status.Render(m.statusMsg)
}

func (m Model) nameWidth() int {
	if m.width == 0 {
		return maxNameWidth
	}
	return max(minNameWidth, min(maxNameWidth, m.width-fixedColumnsWidth))
}

// visibleRange returns the rows that fit on screen, keeping the cursor visible.
func (m Model) visibleRange(n int) (first, last int) {
	visible := n
	if m.height > 0 {
		visible = max(1, m.height-chromeLines)
	}
	if visible >= n {
		return 0, n
	}
	first = max(0, m.cursor-visible+1)
	return first, first + visible
}

func countLabel(role sales.Role) string {
	if role == sales.RoleSDR {
		return "Meetings"
	}
	return "Sales"
}

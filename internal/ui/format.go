package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/javiermolinar/vendas/internal/report"
	"github.com/javiermolinar/vendas/internal/sales"
)

const (
	nameWidth = 20
	barWidth  = 10
	ruleWidth = 78
)

// RateBar draws the conversion rate as a bar of width cells.
func RateBar(rate float64, width int) string {
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	filled := int(rate*float64(width) + 0.5)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// roleNoun names what a role's records are.
func roleNoun(role sales.Role) string {
	if role == sales.RoleSDR {
		return "Meetings"
	}
	return "Sales"
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}

// formatRate colors a rate by whether it reached the bonus threshold.
func formatRate(rate, bonusRate float64) string {
	s := fmt.Sprintf("%3d%%", int(rate*100+0.5))
	switch {
	case bonusRate > 0 && rate >= bonusRate:
		return formatGood(s)
	case rate == 0:
		return formatMuted(s)
	default:
		return formatWeak(s)
	}
}

// reportOpts configures weekly report printing.
type reportOpts struct {
	BonusRate float64
	ShowBar   bool
}

// printWeekReport prints one role's weekly table with totals.
func printWeekReport(w io.Writer, r report.WeekReport, opts reportOpts) {
	header := fmt.Sprintf("%s  %s  (%s)", strings.ToUpper(string(r.Role)), r.Week, report.WeekRange(r.Week))
	fmt.Fprintf(w, "\n  %s\n", formatHeader(header))
	fmt.Fprintln(w, strings.Repeat("─", ruleWidth))

	if r.Err != nil {
		fmt.Fprintf(w, "  %s %v\n", formatError("failed:"), r.Err)
		return
	}
	if len(r.Rows) == 0 {
		fmt.Fprintln(w, formatMuted("  No team members with this role."))
		return
	}

	fmt.Fprintf(w, "  %-*s  %8s  %9s  %5s  %14s  %12s  %5s\n",
		nameWidth, "Name", roleNoun(r.Role), "Converted", "Rate", "Value", "Commission", "Score")
	for _, row := range r.Rows {
		fmt.Fprintf(w, "  %-*s  %8d  %9d  %s  %14s  %12s  %5d",
			nameWidth, truncate(row.Name, nameWidth),
			row.Total, row.Converted,
			formatRate(row.Rate, opts.BonusRate),
			report.FormatMoney(row.Sum), report.FormatMoney(row.Payout), row.Score)
		if opts.ShowBar {
			fmt.Fprintf(w, "  %s", formatMuted(RateBar(row.Rate, barWidth)))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("─", ruleWidth))
	fmt.Fprintf(w, "  %-*s  %8d  %9d  %s  %14s  %12s\n",
		nameWidth, "Total",
		r.Total.Total, r.Total.Converted,
		formatRate(r.Total.Rate, opts.BonusRate),
		report.FormatMoney(r.Total.Sum), report.FormatMoney(r.Payout()))
}

package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/javiermolinar/vendas/internal/bizweek"
)

// FormatMoney renders a value with thousands separators and two decimals.
func FormatMoney(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	n := decimal.RequireFromString(whole).IntPart()
	return sign + humanize.Comma(n) + "." + frac
}

// WeekRange renders week bounds as "Wed Aug 20 - Tue Aug 26, 2025".
func WeekRange(w bizweek.Week) string {
	return fmt.Sprintf("%s - %s", w.Start.Format("Mon Jan 2"), w.End.Format("Mon Jan 2, 2006"))
}

package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/vendas/internal/bizweek"
	"github.com/javiermolinar/vendas/internal/dateutil"
	"github.com/javiermolinar/vendas/internal/report"
)

func (a *App) weekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week [date]",
		Short: "Show the business week containing a date",
		Long: `Show the bounds and index of the business week containing a date.

Business weeks run from Wednesday 00:00 to Tuesday 23:59:59.999 in the
configured timezone. Without a date, today is used.`,
		Example: `  vendas week
  vendas week 2025-08-22`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var s string
			if len(args) == 1 {
				s = args[0]
			}
			ref, err := dateutil.ParseDate(s, a.loc)
			if err != nil {
				return err
			}
			if s == "" {
				ref = a.now().In(a.loc)
			}

			printWeek(cmd.OutOrStdout(), a.cal, a.cal.Resolve(ref))
			return nil
		},
	}
}

func (a *App) weeknumCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "weeknum [year] [week]",
		Short:   "Show the date range of a numbered business week",
		Example: `  vendas weeknum 2025 34`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q: %w", args[0], err)
			}
			number, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid week %q: %w", args[1], err)
			}

			w, err := a.cal.WeekRangeFor(year, number)
			if err != nil {
				return err
			}
			printWeek(cmd.OutOrStdout(), a.cal, w)
			return nil
		},
	}
}

func printWeek(out io.Writer, cal *bizweek.Calendar, w bizweek.Week) {
	fmt.Fprintf(out, "%s  %s\n", formatHeader(w.String()), report.WeekRange(w))
	fmt.Fprintf(out, "  start  %s\n", w.Start.Format("2006-01-02 15:04:05.000 MST"))
	fmt.Fprintf(out, "  end    %s\n", w.End.Format("2006-01-02 15:04:05.000 MST"))
	fmt.Fprintf(out, "  %s\n", formatMuted(fmt.Sprintf("week %d of %d in %d", w.Number, cal.WeeksInYear(w.Year), w.Year)))
}

package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/vendas/internal/dateutil"
	"github.com/javiermolinar/vendas/internal/report"
	"github.com/javiermolinar/vendas/internal/sales"
)

func (a *App) recordsCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
		kind      string
	)

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List meetings and sales in a date range",
		Long: `List every meeting and sale within a date range, grouped by day.

If no dates are specified, lists today's records.
If only --start is specified, lists the records of that single day.
If both --start and --end are specified, lists the range (inclusive).`,
		Example: `  vendas records
  vendas records --start=2025-08-20 --end=2025-08-26 --kind=sale`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dateRange, err := dateutil.NewDateRange(startDate, endDate, a.loc)
			if err != nil {
				return err
			}
			var only sales.Kind
			if kind != "" {
				if only, err = sales.ParseKind(kind); err != nil {
					return err
				}
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			ctx := cmd.Context()
			records, err := a.repo.ListRecordsByWindow(ctx, dateRange.Start, dateutil.EndOfDay(dateRange.End))
			if err != nil {
				return fmt.Errorf("listing records: %w", err)
			}
			actors, err := a.repo.ListAllActors(ctx)
			if err != nil {
				return fmt.Errorf("listing actors: %w", err)
			}
			names := make(map[string]string, len(actors))
			for _, act := range actors {
				names[act.ID] = act.Name
			}

			out := cmd.OutOrStdout()
			var (
				currentDate string
				shown       int
				approved    []*sales.Record
			)
			for _, r := range records {
				if only != "" && r.Kind != only {
					continue
				}
				date := r.OccurredAt.In(a.loc).Format("Mon 2006-01-02")
				if date != currentDate {
					if currentDate != "" {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "=== %s ===\n", formatHeader(date))
					currentDate = date
				}
				fmt.Fprintf(out, "  %s  %s  %-8s %-10s %-*s %s\n",
					r.OccurredAt.In(a.loc).Format("15:04"),
					r.ID,
					r.Kind,
					r.Outcome,
					nameWidth, truncate(names[r.ActorID], nameWidth),
					recordDetail(r, names),
				)
				shown++
				if r.IsApprovedSale() {
					approved = append(approved, r)
				}
			}

			if shown == 0 {
				fmt.Fprintln(out, "No records found in the specified date range.")
				return nil
			}
			fmt.Fprintf(out, "\n%d record(s), approved sales %s\n", shown, report.FormatMoney(sales.SumValues(approved)))
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD, default: start date)")
	cmd.Flags().StringVar(&kind, "kind", "", "Only show meetings or sales")
	return cmd
}

// recordDetail describes who a record involves and what it is worth.
func recordDetail(r *sales.Record, names map[string]string) string {
	if r.IsMeeting() {
		return formatMuted("with " + names[r.Counterpart()])
	}
	detail := report.FormatMoney(r.Value)
	if r.Counterpart() != "" {
		detail += formatMuted(" via " + names[r.Counterpart()])
	}
	return detail
}

package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/vendas/internal/dateutil"
	"github.com/javiermolinar/vendas/internal/sales"
)

func (a *App) statsCmd() *cobra.Command {
	var (
		role string
		date string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a role's figures for one business week",
		Long: `Show totals, conversions, conversion rate, value, commission and
score per team member for the business week containing --date.

SDRs are measured on the meetings they booked, salespeople on the sales
they closed and supervisors on the sales of their team.`,
		Example: `  vendas stats --role=sdr
  vendas stats --role=salesperson --date=2025-08-22`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := sales.ParseRole(role)
			if err != nil {
				return err
			}
			ref, err := dateutil.ParseDate(date, a.loc)
			if err != nil {
				return err
			}
			if date == "" {
				ref = a.now().In(a.loc)
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			rep, err := a.reports.Week(cmd.Context(), r, ref)
			if err != nil {
				return err
			}
			printWeekReport(cmd.OutOrStdout(), rep, a.reportOpts())
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Role: sdr, salesperson or supervisor (required)")
	cmd.Flags().StringVar(&date, "date", "", "Any date in the week (YYYY-MM-DD, default: today)")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func (a *App) monthCmd() *cobra.Command {
	var (
		role  string
		month string
	)

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Show a role's figures for every business week of a month",
		Long: `Show one weekly table for each business week overlapping a month.

Weeks are fetched concurrently. A week that cannot be loaded is shown as
failed without hiding the others.`,
		Example: `  vendas month --role=salesperson --month=2025-08`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := sales.ParseRole(role)
			if err != nil {
				return err
			}
			year, m, err := dateutil.ParseMonth(month, a.loc)
			if err != nil {
				return err
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			reports, err := a.reports.Month(cmd.Context(), r, year, m)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, rep := range reports {
				printWeekReport(out, rep, a.reportOpts())
				if rep.Err != nil {
					failed++
				}
			}
			fmt.Fprintln(out)
			if failed > 0 {
				return fmt.Errorf("%d of %d weeks failed to load", failed, len(reports))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Role: sdr, salesperson or supervisor (required)")
	cmd.Flags().StringVar(&month, "month", "", "Month (YYYY-MM, default: current month)")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func (a *App) reportOpts() reportOpts {
	return reportOpts{
		BonusRate: a.config.Scoring.BonusRate,
		ShowBar:   termWidth() >= 100,
	}
}

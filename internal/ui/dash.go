package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/vendas/internal/bizweek"
	"github.com/javiermolinar/vendas/internal/dateutil"
	"github.com/javiermolinar/vendas/internal/logging"
	"github.com/javiermolinar/vendas/internal/sales"
	"github.com/javiermolinar/vendas/internal/tui"
	"github.com/javiermolinar/vendas/internal/tui/theme"
)

func (a *App) dashCmd() *cobra.Command {
	var (
		role string
		date string
	)

	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Browse weekly reports interactively",
		Long: `Open a terminal dashboard over the weekly reports.

Move between business weeks with h/l, switch roles with tab and press
a to link the week's approved sales to the meetings that produced them.`,
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

			// Log lines would draw over the alternate screen.
			if a.repo == nil && a.logLevel == "" {
				a.logger = logging.Discard()
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			th, err := theme.Load(a.config.UI.Theme)
			if err != nil {
				return fmt.Errorf("loading theme: %w", err)
			}
			plan, err := a.config.Plan()
			if err != nil {
				return err
			}

			m := tui.New(a.reports, a.cal,
				tui.WithRole(r),
				tui.WithDate(ref),
				tui.WithNow(a.now),
				tui.WithTheme(th),
				tui.WithPlan(plan),
				tui.WithLinker(a.linkWeek),
			)
			return tui.Run(m)
		},
	}

	cmd.Flags().StringVar(&role, "role", "sdr", "Role to show first: sdr, salesperson or supervisor")
	cmd.Flags().StringVar(&date, "date", "", "Open on the week containing this date (YYYY-MM-DD)")
	return cmd
}

// linkWeek links a week unthrottled and drops its cached reports.
func (a *App) linkWeek(ctx context.Context, week bizweek.Week) (int, error) {
	n, err := a.linker.Link(ctx, week)
	if err != nil {
		return n, err
	}
	if n > 0 {
		a.reports.Invalidate(week)
		a.reports.Flush()
	}
	return n, nil
}

package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/vendas/internal/dateutil"
)

func (a *App) linkCmd() *cobra.Command {
	var (
		date  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Credit SDRs with the sales their meetings produced",
		Long: `Match each approved sale without an SDR to the earliest converted
meeting held by the same salesperson in the same business week.

The job is skipped when it already ran for the same week within
linker.min_interval, unless --force is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			ctx := cmd.Context()
			week := a.cal.Resolve(ref)
			out := cmd.OutOrStdout()

			var linked int
			if force {
				linked, err = a.linker.Link(ctx, week)
			} else {
				var ran bool
				ran, linked, err = a.linker.LinkThrottled(ctx, week)
				if err == nil && !ran {
					fmt.Fprintf(out, "Skipped: linking %s ran less than %s ago (use --force)\n", week, a.config.LinkInterval())
					return nil
				}
			}
			if err != nil {
				return err
			}

			if linked > 0 {
				a.reports.Invalidate(week)
			}
			fmt.Fprintf(out, "Linked %d sale(s) in %s\n", linked, week)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Any date in the week (YYYY-MM-DD, default: today)")
	cmd.Flags().BoolVar(&force, "force", false, "Run even if the job ran recently")
	return cmd
}

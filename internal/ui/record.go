package ui

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/vendas/internal/dateutil"
	"github.com/javiermolinar/vendas/internal/report"
	"github.com/javiermolinar/vendas/internal/sales"
)

func (a *App) meetingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meeting",
		Short: "Record meetings booked by SDRs",
	}
	cmd.AddCommand(a.meetingAddCmd())
	return cmd
}

func (a *App) meetingAddCmd() *cobra.Command {
	var (
		sdr         string
		salesperson string
		at          string
		minutes     int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Book a meeting for a salesperson",
		Long: `Book a meeting on behalf of a salesperson.

The meeting must fall on a workday within work hours. Without --at the
next free 15-minute slot is used.`,
		Example: `  vendas meeting add --sdr=Ana --salesperson=Bruno --at=2025-08-20T14:00`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := cmd.Context()

			booker, err := a.resolveActor(ctx, sdr, sales.RoleSDR)
			if err != nil {
				return err
			}
			holder, err := a.resolveActor(ctx, salesperson, sales.RoleSalesperson)
			if err != nil {
				return err
			}

			sched := a.scheduler()
			when := sched.NextSlot(a.now().In(a.loc))
			if at != "" {
				if when, err = dateutil.ParseDateTime(at, a.loc); err != nil {
					return err
				}
			}

			duration := a.config.MeetingDuration()
			if minutes > 0 {
				duration = time.Duration(minutes) * time.Minute
			}
			if err := sched.ValidateSlot(when, duration); err != nil {
				return err
			}

			m, err := sales.NewMeeting(booker.ID, holder.ID, when)
			if err != nil {
				return err
			}
			if err := a.repo.CreateRecord(ctx, m); err != nil {
				return fmt.Errorf("creating meeting: %w", err)
			}
			week := a.cal.Resolve(when)
			a.reports.Invalidate(week)

			fmt.Fprintf(cmd.OutOrStdout(), "Booked meeting %s: %s for %s on %s (%s)\n",
				m.ID, booker.Name, holder.Name, when.Format("Mon Jan 2 15:04"), week)
			return nil
		},
	}

	cmd.Flags().StringVar(&sdr, "sdr", "", "SDR name or ID (required)")
	cmd.Flags().StringVar(&salesperson, "salesperson", "", "Salesperson name or ID (required)")
	cmd.Flags().StringVar(&at, "at", "", "Start time (YYYY-MM-DDTHH:MM, default: next free slot)")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "Meeting length in minutes (default from config)")
	_ = cmd.MarkFlagRequired("sdr")
	_ = cmd.MarkFlagRequired("salesperson")

	return cmd
}

func (a *App) saleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Record sales closed by salespeople",
	}
	cmd.AddCommand(a.saleAddCmd())
	return cmd
}

func (a *App) saleAddCmd() *cobra.Command {
	var (
		salesperson string
		value       string
		at          string
	)

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Record a pending sale",
		Example: `  vendas sale add --salesperson=Bruno --value=1500.50 --at=2025-08-21T10:30`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := cmd.Context()

			seller, err := a.resolveActor(ctx, salesperson, sales.RoleSalesperson)
			if err != nil {
				return err
			}
			amount, err := sales.ParseValue(value)
			if err != nil {
				return err
			}
			when, err := dateutil.ParseDateTime(at, a.loc)
			if err != nil {
				return err
			}

			s, err := sales.NewSale(seller.ID, amount, when)
			if err != nil {
				return err
			}
			if err := a.repo.CreateRecord(ctx, s); err != nil {
				return fmt.Errorf("creating sale: %w", err)
			}
			week := a.cal.Resolve(when)
			a.reports.Invalidate(week)

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded sale %s: %s by %s on %s (%s)\n",
				s.ID, report.FormatMoney(amount), seller.Name, when.Format("Mon Jan 2 15:04"), week)
			return nil
		},
	}

	cmd.Flags().StringVar(&salesperson, "salesperson", "", "Salesperson name or ID (required)")
	cmd.Flags().StringVar(&value, "value", "", "Sale amount, e.g. 1500.50 (required)")
	cmd.Flags().StringVar(&at, "at", "", "Closing time (YYYY-MM-DDTHH:MM, default: now)")
	_ = cmd.MarkFlagRequired("salesperson")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func (a *App) outcomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outcome [record-id] [outcome]",
		Short: "Set the outcome of a meeting or the status of a sale",
		Long: `Set how a meeting went or whether a sale was approved.

Meeting outcomes:
  scheduled, attended, converted, no_show, cancelled

Sale statuses:
  pending, approved, rejected

Converting a meeting or approving a sale triggers the auto-link job,
which credits SDRs with the sales their meetings produced.`,
		Example: `  vendas outcome 3f2a... converted`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			outcome := sales.Outcome(args[1])
			if err := a.repo.SetRecordOutcome(ctx, args[0], outcome); err != nil {
				return fmt.Errorf("setting outcome: %w", err)
			}
			r, err := a.repo.GetRecord(ctx, args[0])
			if err != nil {
				return err
			}
			week := a.cal.Resolve(r.OccurredAt)
			a.reports.Invalidate(week)
			fmt.Fprintf(out, "Set %s %s to %s\n", r.Kind, r.ID, outcome)

			if !r.IsConvertedMeeting() && !r.IsApprovedSale() {
				return nil
			}
			ran, linked, err := a.linker.LinkThrottled(ctx, week)
			if err != nil {
				return fmt.Errorf("auto-linking %s: %w", week, err)
			}
			switch {
			case !ran:
				fmt.Fprintf(out, "Auto-link of %s skipped, it ran less than %s ago (run `vendas link --force`)\n",
					week, a.config.LinkInterval())
			case linked > 0:
				fmt.Fprintf(out, "Linked %d sale(s) to meetings in %s\n", linked, week)
			}
			return nil
		},
	}
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/vendas/internal/sales"
)

func (a *App) actorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actor",
		Short: "Manage SDRs, salespeople and supervisors",
	}
	cmd.AddCommand(a.actorAddCmd())
	cmd.AddCommand(a.actorListCmd())
	return cmd
}

func (a *App) actorAddCmd() *cobra.Command {
	var (
		role       string
		supervisor string
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a team member",
		Example: `  vendas actor add "Carla Souza" --role=supervisor
  vendas actor add "Bruno Lima" --role=salesperson --supervisor="Carla Souza"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			ctx := cmd.Context()

			var supervisorID *string
			if supervisor != "" {
				sup, err := a.resolveActor(ctx, supervisor, sales.RoleSupervisor)
				if err != nil {
					return err
				}
				supervisorID = &sup.ID
			}

			actor, err := sales.NewActor(args[0], role, supervisorID)
			if err != nil {
				return err
			}
			if err := a.repo.CreateActor(ctx, actor); err != nil {
				return fmt.Errorf("creating actor: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", actor.Role, actor.Name, actor.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Role: sdr, salesperson or supervisor (required)")
	cmd.Flags().StringVar(&supervisor, "supervisor", "", "Supervisor name or ID")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func (a *App) actorListCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active team members",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			var r sales.Role
			if role != "" {
				var err error
				if r, err = sales.ParseRole(role); err != nil {
					return err
				}
			}

			actors, err := a.repo.ListActors(cmd.Context(), r)
			if err != nil {
				return fmt.Errorf("listing actors: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(actors) == 0 {
				fmt.Fprintln(out, "No team members found.")
				return nil
			}

			names := make(map[string]string, len(actors))
			for _, actor := range actors {
				names[actor.ID] = actor.Name
			}
			for _, actor := range actors {
				line := fmt.Sprintf("  %-12s %-*s %s", actor.Role, nameWidth, truncate(actor.Name, nameWidth), formatMuted(actor.ID))
				if actor.SupervisorID != nil {
					sup := names[*actor.SupervisorID]
					if sup == "" {
						sup = *actor.SupervisorID
					}
					line += "  " + formatMuted("reports to "+sup)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Only list this role")
	return cmd
}

// resolveActor finds an actor by ID or, failing that, by unique
// case-insensitive name among active actors of role.
func (a *App) resolveActor(ctx context.Context, ref string, role sales.Role) (*sales.Actor, error) {
	ref = strings.TrimSpace(ref)
	actor, err := a.repo.GetActor(ctx, ref)
	switch {
	case err == nil:
		if actor.Role != role {
			return nil, fmt.Errorf("%s is a %s, expected a %s", actor.Name, actor.Role, role)
		}
		return actor, nil
	case !errors.Is(err, sales.ErrActorNotFound):
		return nil, err
	}

	actors, err := a.repo.ListActors(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("listing actors: %w", err)
	}
	var matches []*sales.Actor
	for _, candidate := range actors {
		if strings.EqualFold(candidate.Name, ref) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no %s named %q", sales.ErrActorNotFound, role, ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%d %ss are named %q, use the ID instead", len(matches), role, ref)
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/op-tournament-engine/internal/service"
	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// --------------------------------------------------------------------------
// tournament command
// --------------------------------------------------------------------------

func tournamentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tournament",
		Short: "Create and inspect tournaments",
	}
	cmd.AddCommand(tournamentCreateCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tournaments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, svc *service.Services) (any, error) {
				return svc.Tournaments.ListTournaments(ctx)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <tournament-id>",
		Short: "Show a tournament and its stages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, svc *service.Services) (any, error) {
				return svc.Tournaments.GetTournamentData(ctx, id)
			})
		},
	})
	return cmd
}

func tournamentCreateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tournament from a JSON definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readTournament(file)
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, svc *service.Services) (any, error) {
				return svc.Tournaments.CreateTournament(ctx, input)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Definition file, - for stdin")
	return cmd
}

func readTournament(path string) (service.TournamentInput, error) {
	var input service.TournamentInput

	r := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return input, err
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		return input, fmt.Errorf("decode tournament definition: %w", err)
	}
	return input, nil
}

// --------------------------------------------------------------------------
// stage command
// --------------------------------------------------------------------------

func stageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Assign teams and move stages through their lifecycle",
	}
	cmd.AddCommand(stageAssignCmd())
	cmd.AddCommand(stageIDCmd("show", "Show a stage with its groups and teams",
		func(ctx context.Context, svc *service.Services, id uuid.UUID) (any, error) {
			return svc.Stages.GetStage(ctx, id)
		}))
	cmd.AddCommand(stageIDCmd("activate", "Start a pending stage",
		func(ctx context.Context, svc *service.Services, id uuid.UUID) (any, error) {
			return svc.Stages.ActivateStage(ctx, id)
		}))
	cmd.AddCommand(stageIDCmd("complete", "Complete an active stage once every fixture is decided",
		func(ctx context.Context, svc *service.Services, id uuid.UUID) (any, error) {
			return svc.Stages.CompleteStage(ctx, id)
		}))
	cmd.AddCommand(stageIDCmd("cancel", "Cancel a stage",
		func(ctx context.Context, svc *service.Services, id uuid.UUID) (any, error) {
			return svc.Stages.CancelStage(ctx, id)
		}))
	return cmd
}

// stageIDCmd builds a command that takes a single ID argument.
func stageIDCmd(use, short string, fn func(ctx context.Context, svc *service.Services, id uuid.UUID) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, svc *service.Services) (any, error) {
				return fn(ctx, svc, id)
			})
		},
	}
}

func stageAssignCmd() *cobra.Command {
	var specs []string
	cmd := &cobra.Command{
		Use:   "assign <stage-id>",
		Short: "Assign teams to a stage as team-id[:seed[:group-id]]",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			assignments := make([]service.TeamAssignment, 0, len(specs))
			for _, spec := range specs {
				a, err := parseAssignment(spec)
				if err != nil {
					return err
				}
				assignments = append(assignments, a)
			}
			return run(func(ctx context.Context, svc *service.Services) (any, error) {
				return svc.Stages.AssignTeams(ctx, id, assignments)
			})
		},
	}
	cmd.Flags().StringArrayVar(&specs, "team", nil, "Team to assign, repeatable")
	cmd.MarkFlagRequired("team")
	return cmd
}

func parseAssignment(spec string) (service.TeamAssignment, error) {
	var a service.TeamAssignment
	parts := strings.Split(spec, ":")
	if len(parts) > 3 {
		return a, fmt.Errorf("invalid team %q: want team-id[:seed[:group-id]]", spec)
	}

	var err error
	if a.TeamID, err = parseID(parts[0]); err != nil {
		return a, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if a.Seed, err = parseSeed(parts[1]); err != nil {
			return a, err
		}
	}
	if len(parts) > 2 {
		group, err := parseID(parts[2])
		if err != nil {
			return a, err
		}
		a.GroupID = &group
	}
	return a, nil
}

func parseSeed(s string) (int, error) {
	seed, err := strconv.Atoi(s)
	if err != nil || seed < 1 {
		return 0, fmt.Errorf("invalid seed %q: want a positive integer", s)
	}
	return seed, nil
}

// --------------------------------------------------------------------------
// fixtures command
// --------------------------------------------------------------------------

func fixturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Generate fixtures and record results",
	}
	cmd.AddCommand(stageIDCmd("generate", "Generate the next batch of fixtures for a stage",
		func(ctx context.Context, svc *service.Services, id uuid.UUID) (any, error) {
			return svc.Fixtures.GenerateFixtures(ctx, id)
		}))
	cmd.AddCommand(stageIDCmd("list", "List the fixtures of a stage",
		func(ctx context.Context, svc *service.Services, id uuid.UUID) (any, error) {
			return svc.Fixtures.ListFixtures(ctx, id)
		}))
	cmd.AddCommand(stageIDCmd("cancel", "Cancel an upcoming fixture",
		func(ctx context.Context, svc *service.Services, id uuid.UUID) (any, error) {
			return svc.Fixtures.CancelFixture(ctx, id)
		}))
	cmd.AddCommand(&cobra.Command{
		Use:   "result <fixture-id> <home-score> <away-score>",
		Short: "Record the result of a fixture",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			home, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid home score %q: %w", args[1], err)
			}
			away, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid away score %q: %w", args[2], err)
			}
			return run(func(ctx context.Context, svc *service.Services) (any, error) {
				return svc.Fixtures.RecordResult(ctx, id, home, away)
			})
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// rankings command
// --------------------------------------------------------------------------

func rankingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "Show and recompute stage rankings",
	}
	cmd.AddCommand(stageIDCmd("list", "Show the stored ranking table",
		func(ctx context.Context, svc *service.Services, id uuid.UUID) (any, error) {
			return svc.Rankings.ListRankings(ctx, id)
		}))
	cmd.AddCommand(stageIDCmd("refresh", "Recompute rankings from completed fixtures",
		func(ctx context.Context, svc *service.Services, id uuid.UUID) (any, error) {
			return svc.Rankings.RefreshRankings(ctx, id)
		}))
	return cmd
}

// --------------------------------------------------------------------------
// promotion command
// --------------------------------------------------------------------------

func promotionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promotion",
		Short: "Simulate, execute and roll back stage promotions",
	}
	cmd.AddCommand(promotionSimulateCmd())
	cmd.AddCommand(promotionExecuteCmd())
	cmd.AddCommand(promotionRollbackCmd())
	cmd.AddCommand(stageIDCmd("audits", "Show the promotion audit log of a stage",
		func(ctx context.Context, svc *service.Services, id uuid.UUID) (any, error) {
			return svc.Promotions.ListAudits(ctx, id)
		}))
	cmd.AddCommand(stageIDCmd("status", "Show whether a stage can promote and the promotion in force",
		func(ctx context.Context, svc *service.Services, id uuid.UUID) (any, error) {
			can, err := svc.Stages.CanPromote(ctx, id)
			if err != nil {
				return nil, err
			}
			effective, err := svc.Promotions.EffectivePromotion(ctx, id)
			if err != nil {
				return nil, err
			}
			return struct {
				CanPromote bool                       `json:"can_promote"`
				Effective  *tournament.PromotionAudit `json:"effective"`
			}{can, effective}, nil
		}))
	return cmd
}

func promotionSimulateCmd() *cobra.Command {
	var opts service.SimulateOptions
	cmd := &cobra.Command{
		Use:   "simulate <stage-id>",
		Short: "Show which teams the promotion rule would advance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, svc *service.Services) (any, error) {
				return svc.Promotions.SimulatePromotion(ctx, id, opts)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.Record, "record", false, "Append a simulated audit row")
	cmd.Flags().StringVar(&opts.TriggeredBy, "by", "stagectl", "Actor recorded in the audit log")
	return cmd
}

func promotionExecuteCmd() *cobra.Command {
	var (
		specs       []string
		triggeredBy string
	)
	cmd := &cobra.Command{
		Use:   "execute <stage-id>",
		Short: "Advance teams into the next stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			override := make([]service.OverrideEntry, 0, len(specs))
			for _, spec := range specs {
				o, err := parseOverride(spec)
				if err != nil {
					return err
				}
				override = append(override, o)
			}
			return run(func(ctx context.Context, svc *service.Services) (any, error) {
				return svc.Promotions.ExecutePromotion(ctx, id, service.ExecuteOptions{
					Override:    override,
					TriggeredBy: triggeredBy,
				})
			})
		},
	}
	cmd.Flags().StringArrayVar(&specs, "override", nil, "Promote team-id[:seed] instead of the rule's selection, repeatable")
	cmd.Flags().StringVar(&triggeredBy, "by", "stagectl", "Actor recorded in the audit log")
	return cmd
}

func parseOverride(spec string) (service.OverrideEntry, error) {
	var o service.OverrideEntry
	teamID, seed, hasSeed := strings.Cut(spec, ":")

	var err error
	if o.TeamID, err = parseID(teamID); err != nil {
		return o, err
	}
	if hasSeed {
		if o.Seed, err = parseSeed(seed); err != nil {
			return o, err
		}
	}
	return o, nil
}

func promotionRollbackCmd() *cobra.Command {
	var triggeredBy string
	cmd := &cobra.Command{
		Use:   "rollback <audit-id>",
		Short: "Undo the promotion recorded by an audit row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, svc *service.Services) (any, error) {
				return svc.Promotions.RollbackPromotion(ctx, id, triggeredBy)
			})
		},
	}
	cmd.Flags().StringVar(&triggeredBy, "by", "stagectl", "Actor recorded in the audit log")
	return cmd
}

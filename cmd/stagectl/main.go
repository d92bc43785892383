// Command stagectl operates tournament stages from the shell.
//
// Usage:
//
//	stagectl migrate
//	stagectl tournament create --file cup.json
//	stagectl stage assign <stage-id> --team <team-id>[:seed] --team ...
//	stagectl stage activate <stage-id>
//	stagectl fixtures generate <stage-id>
//	stagectl fixtures result <fixture-id> 2 1
//	stagectl promotion simulate <stage-id>
//	stagectl promotion execute <stage-id> --by ops
//	stagectl promotion rollback <audit-id>
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/AdamBeresnev/op-tournament-engine/internal/config"
	"github.com/AdamBeresnev/op-tournament-engine/internal/db"
	"github.com/AdamBeresnev/op-tournament-engine/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "stagectl",
		Short:         "Multi-stage tournament operator CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(tournamentCmd())
	root.AddCommand(stageCmd())
	root.AddCommand(fixturesCmd())
	root.AddCommand(rankingsCmd())
	root.AddCommand(promotionCmd())

	if err := root.Execute(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// run loads config, opens the database and hands fn the services. Output is
// written as indented JSON.
func run(fn func(ctx context.Context, svc *service.Services) (any, error)) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		return err
	}

	out, err := fn(ctx, service.NewServices(database, service.OptionsFromConfig(cfg)))
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, svc *service.Services) (any, error) {
				slog.Info("Migrations applied")
				return nil, nil
			})
		},
	}
}

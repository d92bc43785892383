package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/AdamBeresnev/op-tournament-engine/internal/store"
	"github.com/AdamBeresnev/op-tournament-engine/internal/strategy"
	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// loadSnapshot reads everything a strategy needs for the stage through q.
func loadSnapshot(ctx context.Context, q sqlx.QueryerContext, st *store.TournamentStore, stage *tournament.Stage, rng *rand.Rand) (strategy.Snapshot, error) {
	t, err := st.GetTournament(ctx, q, stage.TournamentID)
	if err != nil {
		return strategy.Snapshot{}, fmt.Errorf("failed to get tournament: %w", err)
	}

	teams, err := st.ListStageTeams(ctx, q, stage.ID)
	if err != nil {
		return strategy.Snapshot{}, fmt.Errorf("failed to list stage teams: %w", err)
	}

	groups, err := st.ListGroups(ctx, q, stage.ID)
	if err != nil {
		return strategy.Snapshot{}, fmt.Errorf("failed to list groups: %w", err)
	}

	fixtures, err := st.ListFixtures(ctx, q, stage.ID)
	if err != nil {
		return strategy.Snapshot{}, fmt.Errorf("failed to list fixtures: %w", err)
	}

	return strategy.Snapshot{
		Stage:    *stage,
		Settings: t.Settings,
		Teams:    teams,
		Groups:   groups,
		Fixtures: fixtures,
		Rand:     rng,
	}, nil
}

// lockStage takes the stage's write lock and reads it back.
func lockStage(ctx context.Context, tx *sqlx.Tx, st *store.TournamentStore, stageID uuid.UUID) (*tournament.Stage, error) {
	if err := st.LockStage(ctx, tx, stageID); err != nil {
		return nil, err
	}
	return st.GetStage(ctx, tx, stageID)
}

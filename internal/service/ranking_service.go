package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/op-tournament-engine/internal/store"
	"github.com/AdamBeresnev/op-tournament-engine/internal/strategy"
	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type RankingService struct {
	db    *sqlx.DB
	store *store.TournamentStore
	opts  Options
}

func NewRankingService(db *sqlx.DB, store *store.TournamentStore, opts Options) *RankingService {
	return &RankingService{db: db, store: store, opts: opts.withDefaults()}
}

// RefreshRankings recomputes the stage table from its fixtures and replaces the
// stored rows in one transaction.
func (s *RankingService) RefreshRankings(ctx context.Context, stageID uuid.UUID) ([]tournament.Ranking, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stage, err := lockStage(ctx, tx, s.store, stageID)
	if err != nil {
		return nil, err
	}

	rankings, err := s.refresh(ctx, tx, stage)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rankings, nil
}

// refresh runs inside the caller's transaction. Stages that do not rank teams
// end up with no rows.
func (s *RankingService) refresh(ctx context.Context, tx *sqlx.Tx, stage *tournament.Stage) ([]tournament.Ranking, error) {
	strat, err := strategy.For(stage.Type)
	if err != nil {
		return nil, err
	}

	snap, err := loadSnapshot(ctx, tx, s.store, stage, s.opts.Rand())
	if err != nil {
		return nil, err
	}

	rows, err := strat.ComputeRankings(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rankings: %w", err)
	}

	rankings := make([]tournament.Ranking, len(rows))
	for i, row := range rows {
		rankings[i] = tournament.Ranking{
			ID:             uuid.New(),
			StageID:        stage.ID,
			GroupID:        row.GroupID,
			TeamID:         row.TeamID,
			Played:         row.Played,
			Wins:           row.Wins,
			Draws:          row.Draws,
			Losses:         row.Losses,
			GoalsFor:       row.GoalsFor,
			GoalsAgainst:   row.GoalsAgainst,
			GoalDifference: row.GoalDifference,
			Points:         row.Points,
			Rank:           row.Rank,
		}
	}

	if err := s.store.ReplaceRankings(ctx, tx, stage.ID, rankings); err != nil {
		return nil, err
	}

	slog.Info("Rankings refreshed", "stage_id", stage.ID, "rows", len(rankings))
	return rankings, nil
}

func (s *RankingService) ListRankings(ctx context.Context, stageID uuid.UUID) ([]tournament.Ranking, error) {
	if _, err := s.store.GetStage(ctx, s.db, stageID); err != nil {
		return nil, err
	}
	return s.store.ListRankings(ctx, s.db, stageID)
}

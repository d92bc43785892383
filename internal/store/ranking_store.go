package store

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ReplaceRankings deletes every ranking row of the stage and inserts rows in
// their place. Callers run it in the same transaction as the fixture reads it
// was computed from.
func (s *TournamentStore) ReplaceRankings(ctx context.Context, tx *sqlx.Tx, stageID uuid.UUID, rows []tournament.Ranking) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM rankings WHERE stage_id = ?", stageID); err != nil {
		return fmt.Errorf("failed to delete rankings: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	_, err := tx.NamedExecContext(ctx, `INSERT INTO rankings (id, stage_id, group_id, team_id, played, wins, draws, losses, goals_for, goals_against, goal_difference, points, rank)
		VALUES (:id, :stage_id, :group_id, :team_id, :played, :wins, :draws, :losses, :goals_for, :goals_against, :goal_difference, :points, :rank)`, rows)
	if err != nil {
		return fmt.Errorf("failed to insert rankings: %w", err)
	}
	return nil
}

// ListRankings returns rows grouped by group position, ungrouped rows last,
// then by rank.
func (s *TournamentStore) ListRankings(ctx context.Context, q sqlx.QueryerContext, stageID uuid.UUID) ([]tournament.Ranking, error) {
	var rows []tournament.Ranking
	err := sqlx.SelectContext(ctx, q, &rows, `SELECT r.* FROM rankings r
		LEFT JOIN stage_groups g ON g.id = r.group_id
		WHERE r.stage_id = ?
		ORDER BY g.position IS NULL, g.position, r.rank`, stageID)
	return rows, err
}

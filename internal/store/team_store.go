package store

import (
	"context"

	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (s *TournamentStore) CreateStageTeams(ctx context.Context, tx *sqlx.Tx, teams []tournament.StageTeam) error {
	if len(teams) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO stage_teams (id, stage_id, group_id, team_id, seed)
        VALUES (:id, :stage_id, :group_id, :team_id, :seed)`, teams)
	return err
}

func (s *TournamentStore) ListStageTeams(ctx context.Context, q sqlx.QueryerContext, stageID uuid.UUID) ([]tournament.StageTeam, error) {
	var teams []tournament.StageTeam
	err := sqlx.SelectContext(ctx, q, &teams, "SELECT * FROM stage_teams WHERE stage_id = ? ORDER BY seed ASC, rowid ASC", stageID)
	return teams, err
}

// UpdateStageTeamPlacement moves an existing stage team to a new seed and group.
func (s *TournamentStore) UpdateStageTeamPlacement(ctx context.Context, tx *sqlx.Tx, stageID, teamID uuid.UUID, seed int, groupID *uuid.UUID) error {
	res, err := tx.ExecContext(ctx, "UPDATE stage_teams SET seed = ?, group_id = ? WHERE stage_id = ? AND team_id = ?", seed, groupID, stageID, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, tournament.ErrTeamNotInStage)
}

func (s *TournamentStore) DeleteStageTeams(ctx context.Context, tx *sqlx.Tx, stageID uuid.UUID, teamIDs []uuid.UUID) error {
	if len(teamIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM stage_teams WHERE stage_id = ? AND team_id IN (?)", stageID, teamIDs)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
	return err
}

package store

import (
	"context"

	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, t *tournament.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, name, tournament_type, status, settings)
        VALUES (:id, :name, :tournament_type, :status, :settings)`, t)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*tournament.Tournament, error) {
	var t tournament.Tournament
	err := sqlx.GetContext(ctx, q, &t, "SELECT * FROM tournaments WHERE id = ?", id)
	if err != nil {
		return nil, notFound(err, tournament.ErrTournamentNotFound)
	}
	return &t, nil
}

func (s *TournamentStore) ListTournaments(ctx context.Context, q sqlx.QueryerContext) ([]tournament.Tournament, error) {
	var tournaments []tournament.Tournament
	err := sqlx.SelectContext(ctx, q, &tournaments, "SELECT * FROM tournaments ORDER BY created_at DESC, rowid DESC")
	return tournaments, err
}

func (s *TournamentStore) UpdateTournamentStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status tournament.TournamentStatus) error {
	res, err := tx.ExecContext(ctx, "UPDATE tournaments SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, tournament.ErrTournamentNotFound)
}

func (s *TournamentStore) CreateStages(ctx context.Context, tx *sqlx.Tx, stages []tournament.Stage) error {
	if len(stages) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO stages (id, tournament_id, name, stage_order, stage_type, settings, status, next_stage_id)
        VALUES (:id, :tournament_id, :name, :stage_order, :stage_type, :settings, :status, :next_stage_id)`, stages)
	return err
}

func (s *TournamentStore) GetStage(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*tournament.Stage, error) {
	var stage tournament.Stage
	err := sqlx.GetContext(ctx, q, &stage, "SELECT * FROM stages WHERE id = ?", id)
	if err != nil {
		return nil, notFound(err, tournament.ErrStageNotFound)
	}
	return &stage, nil
}

func (s *TournamentStore) ListStages(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]tournament.Stage, error) {
	var stages []tournament.Stage
	err := sqlx.SelectContext(ctx, q, &stages, "SELECT * FROM stages WHERE tournament_id = ? ORDER BY stage_order ASC", tournamentID)
	return stages, err
}

// LockStage writes to the stage row so the rest of the transaction holds the
// write lock for it before reading anything it depends on.
func (s *TournamentStore) LockStage(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, "UPDATE stages SET updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, tournament.ErrStageNotFound)
}

func (s *TournamentStore) UpdateStageStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status tournament.StageStatus) error {
	res, err := tx.ExecContext(ctx, "UPDATE stages SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, tournament.ErrStageNotFound)
}

func (s *TournamentStore) CreateGroups(ctx context.Context, tx *sqlx.Tx, groups []tournament.Group) error {
	if len(groups) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO stage_groups (id, stage_id, name, position)
        VALUES (:id, :stage_id, :name, :position)`, groups)
	return err
}

func (s *TournamentStore) ListGroups(ctx context.Context, q sqlx.QueryerContext, stageID uuid.UUID) ([]tournament.Group, error) {
	var groups []tournament.Group
	err := sqlx.SelectContext(ctx, q, &groups, "SELECT * FROM stage_groups WHERE stage_id = ? ORDER BY position ASC", stageID)
	return groups, err
}

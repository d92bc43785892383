package store

import (
	"context"

	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (s *TournamentStore) CreateFixtures(ctx context.Context, tx *sqlx.Tx, fixtures []tournament.Fixture) error {
	if len(fixtures) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO fixtures (id, stage_id, group_id, round, match_order, first_team_id, second_team_id, is_bye, is_second_leg, starts_at, duration_minutes, status, first_team_score, second_team_score)
		VALUES (:id, :stage_id, :group_id, :round, :match_order, :first_team_id, :second_team_id, :is_bye, :is_second_leg, :starts_at, :duration_minutes, :status, :first_team_score, :second_team_score)`, fixtures)
	return err
}

func (s *TournamentStore) GetFixture(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*tournament.Fixture, error) {
	var f tournament.Fixture
	err := sqlx.GetContext(ctx, q, &f, "SELECT * FROM fixtures WHERE id = ?", id)
	if err != nil {
		return nil, notFound(err, tournament.ErrFixtureNotFound)
	}
	return &f, nil
}

func (s *TournamentStore) ListFixtures(ctx context.Context, q sqlx.QueryerContext, stageID uuid.UUID) ([]tournament.Fixture, error) {
	var fixtures []tournament.Fixture
	err := sqlx.SelectContext(ctx, q, &fixtures, "SELECT * FROM fixtures WHERE stage_id = ? ORDER BY round ASC, match_order ASC, is_second_leg ASC", stageID)
	return fixtures, err
}

// UpdateFixtureResult stores the status and scores of a fixture.
func (s *TournamentStore) UpdateFixtureResult(ctx context.Context, tx *sqlx.Tx, f *tournament.Fixture) error {
	res, err := tx.NamedExecContext(ctx, `UPDATE fixtures SET status = :status, first_team_score = :first_team_score, second_team_score = :second_team_score
		WHERE id = :id`, f)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, tournament.ErrFixtureNotFound)
}

// CountUndecidedFixtures counts fixtures of the stage that are neither
// completed nor cancelled.
func (s *TournamentStore) CountUndecidedFixtures(ctx context.Context, q sqlx.QueryerContext, stageID uuid.UUID) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, q, &count, "SELECT COUNT(*) FROM fixtures WHERE stage_id = ? AND status NOT IN (?, ?)",
		stageID, tournament.FixtureCompleted, tournament.FixtureCancelled)
	return count, err
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/op-tournament-engine/internal/store"
	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type StageService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewStageService(db *sqlx.DB, store *store.TournamentStore) *StageService {
	return &StageService{db: db, store: store}
}

// TeamAssignment places a team in a stage. A zero Seed is filled in after the
// stage's current highest seed, in input order.
type TeamAssignment struct {
	TeamID  uuid.UUID  `json:"team_id"`
	Seed    int        `json:"seed,omitempty"`
	GroupID *uuid.UUID `json:"group_id,omitempty"`
}

// StageData is a stage with its groups and teams.
type StageData struct {
	Stage  *tournament.Stage      `json:"stage"`
	Groups []tournament.Group     `json:"groups"`
	Teams  []tournament.StageTeam `json:"teams"`
}

func (s *StageService) GetStage(ctx context.Context, stageID uuid.UUID) (*StageData, error) {
	stage, err := s.store.GetStage(ctx, s.db, stageID)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroups(ctx, s.db, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	teams, err := s.store.ListStageTeams(ctx, s.db, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage teams: %w", err)
	}

	return &StageData{Stage: stage, Groups: groups, Teams: teams}, nil
}

// AssignTeams adds teams to a stage that has no fixtures yet.
func (s *StageService) AssignTeams(ctx context.Context, stageID uuid.UUID, assignments []TeamAssignment) ([]tournament.StageTeam, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stage, err := lockStage(ctx, tx, s.store, stageID)
	if err != nil {
		return nil, err
	}
	if stage.IsTerminal() {
		return nil, tournament.ErrInvalidStageStatus
	}

	fixtures, err := s.store.ListFixtures(ctx, tx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures: %w", err)
	}
	if len(fixtures) > 0 {
		return nil, tournament.ErrStageHasFixtures
	}

	existing, err := s.store.ListStageTeams(ctx, tx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage teams: %w", err)
	}
	groups, err := s.store.ListGroups(ctx, tx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	taken := make(map[uuid.UUID]bool, len(existing)+len(assignments))
	nextSeed := 1
	for _, t := range existing {
		taken[t.TeamID] = true
		nextSeed = max(nextSeed, t.Seed+1)
	}
	validGroup := make(map[uuid.UUID]bool, len(groups))
	for _, g := range groups {
		validGroup[g.ID] = true
	}

	teams := make([]tournament.StageTeam, 0, len(assignments))
	for _, a := range assignments {
		if taken[a.TeamID] {
			return nil, fmt.Errorf("%w: %s", tournament.ErrDuplicateTeam, a.TeamID)
		}
		taken[a.TeamID] = true

		if a.GroupID != nil && !validGroup[*a.GroupID] {
			return nil, fmt.Errorf("%w: %s", tournament.ErrGroupNotFound, *a.GroupID)
		}

		seed := a.Seed
		if seed == 0 {
			seed = nextSeed
		}
		nextSeed = max(nextSeed, seed+1)

		teams = append(teams, tournament.StageTeam{
			ID:      uuid.New(),
			StageID: stageID,
			GroupID: a.GroupID,
			TeamID:  a.TeamID,
			Seed:    seed,
		})
	}

	if err := s.store.CreateStageTeams(ctx, tx, teams); err != nil {
		return nil, fmt.Errorf("failed to create stage teams: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("Teams assigned", "stage_id", stageID, "teams", len(teams))
	return teams, nil
}

// ActivateStage starts a pending stage. A tournament has at most one active
// stage; activating its first stage also starts the tournament.
func (s *StageService) ActivateStage(ctx context.Context, stageID uuid.UUID) (*tournament.Stage, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stage, err := lockStage(ctx, tx, s.store, stageID)
	if err != nil {
		return nil, err
	}
	if stage.Status != tournament.StagePending {
		return nil, tournament.ErrInvalidStageStatus
	}

	t, err := s.store.GetTournament(ctx, tx, stage.TournamentID)
	if err != nil {
		return nil, err
	}
	if t.IsFinished() {
		return nil, tournament.ErrTournamentFinished
	}

	stages, err := s.store.ListStages(ctx, tx, stage.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	for _, other := range stages {
		if other.Status == tournament.StageActive {
			return nil, fmt.Errorf("%w: %s", tournament.ErrActiveStageExists, other.Name)
		}
	}

	if err := s.store.UpdateStageStatus(ctx, tx, stageID, tournament.StageActive); err != nil {
		return nil, err
	}
	if t.Status == tournament.TournamentPending {
		if err := s.store.UpdateTournamentStatus(ctx, tx, t.ID, tournament.TournamentActive); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("Stage activated", "stage_id", stageID, "tournament_id", t.ID)
	stage.Status = tournament.StageActive
	return stage, nil
}

// CompleteStage closes an active stage once every fixture is decided. The
// last stage of a tournament completes the tournament with it.
func (s *StageService) CompleteStage(ctx context.Context, stageID uuid.UUID) (*tournament.Stage, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stage, err := lockStage(ctx, tx, s.store, stageID)
	if err != nil {
		return nil, err
	}
	if stage.Status != tournament.StageActive {
		return nil, tournament.ErrInvalidStageStatus
	}

	undecided, err := s.store.CountUndecidedFixtures(ctx, tx, stageID)
	if err != nil {
		return nil, err
	}
	if undecided > 0 {
		return nil, fmt.Errorf("%w: %d left", tournament.ErrIncompleteFixtures, undecided)
	}

	if err := s.store.UpdateStageStatus(ctx, tx, stageID, tournament.StageCompleted); err != nil {
		return nil, err
	}
	if stage.NextStageID == nil {
		if err := s.store.UpdateTournamentStatus(ctx, tx, stage.TournamentID, tournament.TournamentCompleted); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("Stage completed", "stage_id", stageID, "last_stage", stage.NextStageID == nil)
	stage.Status = tournament.StageCompleted
	return stage, nil
}

func (s *StageService) CancelStage(ctx context.Context, stageID uuid.UUID) (*tournament.Stage, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stage, err := lockStage(ctx, tx, s.store, stageID)
	if err != nil {
		return nil, err
	}
	if stage.IsTerminal() {
		return nil, tournament.ErrInvalidStageStatus
	}

	if err := s.store.UpdateStageStatus(ctx, tx, stageID, tournament.StageCancelled); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("Stage cancelled", "stage_id", stageID)
	stage.Status = tournament.StageCancelled
	return stage, nil
}

// CanPromote is true when the stage has a promotion rule and every fixture is
// completed or cancelled.
func (s *StageService) CanPromote(ctx context.Context, stageID uuid.UUID) (bool, error) {
	if _, err := s.store.GetStage(ctx, s.db, stageID); err != nil {
		return false, err
	}

	if _, err := s.store.GetPromotionRule(ctx, s.db, stageID); err != nil {
		if errors.Is(err, tournament.ErrMissingPromotionRule) {
			return false, nil
		}
		return false, err
	}

	undecided, err := s.store.CountUndecidedFixtures(ctx, s.db, stageID)
	if err != nil {
		return false, err
	}
	return undecided == 0, nil
}

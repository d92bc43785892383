package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/op-tournament-engine/internal/fixture"
	"github.com/AdamBeresnev/op-tournament-engine/internal/store"
	"github.com/AdamBeresnev/op-tournament-engine/internal/strategy"
	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/AdamBeresnev/op-tournament-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type FixtureGenerationService struct {
	db       *sqlx.DB
	store    *store.TournamentStore
	rankings *RankingService
	opts     Options
}

func NewFixtureGenerationService(db *sqlx.DB, store *store.TournamentStore, rankings *RankingService, opts Options) *FixtureGenerationService {
	return &FixtureGenerationService{db: db, store: store, rankings: rankings, opts: opts.withDefaults()}
}

// GenerateFixtures asks the stage's strategy for the next batch of pairings,
// schedules them and stores them in one transaction.
func (s *FixtureGenerationService) GenerateFixtures(ctx context.Context, stageID uuid.UUID) ([]tournament.Fixture, error) {
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

	strat, err := strategy.For(stage.Type)
	if err != nil {
		return nil, err
	}

	snap, err := loadSnapshot(ctx, tx, s.store, stage, s.opts.Rand())
	if err != nil {
		return nil, err
	}

	drafts, err := strat.GenerateFixtures(snap)
	if err != nil {
		return nil, err
	}

	for _, d := range drafts {
		if d.ForcedRematch {
			slog.Warn("Swiss pairing repeats an earlier match", "stage_id", stage.ID, "round", d.Round,
				"home_team_id", d.HomeTeamID, "away_team_id", utils.OrZero(d.AwayTeamID))
		}
	}

	fixtures := s.schedule(stage, snap.Fixtures, drafts)
	if err := s.store.CreateFixtures(ctx, tx, fixtures); err != nil {
		return nil, fmt.Errorf("failed to create fixtures: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("Fixtures generated", "stage_id", stage.ID, "stage_type", stage.Type, "fixtures", len(fixtures))
	return fixtures, nil
}

// schedule lays drafts out one after another. Slot i starts at
// start + i*(duration+interval). Start is the stage start time or the clock,
// pushed past the end of any fixture already scheduled. Byes take no slot.
func (s *FixtureGenerationService) schedule(stage *tournament.Stage, existing []tournament.Fixture, drafts []fixture.Draft) []tournament.Fixture {
	duration := s.opts.DefaultMatchDuration
	if stage.Settings.MatchDurationMinutes > 0 {
		duration = time.Duration(stage.Settings.MatchDurationMinutes) * time.Minute
	}
	interval := s.opts.DefaultMatchInterval
	if stage.Settings.MatchIntervalMinutes > 0 {
		interval = time.Duration(stage.Settings.MatchIntervalMinutes) * time.Minute
	}
	step := duration + interval

	start := s.opts.Now()
	if stage.Settings.StartTime != nil {
		start = stage.Settings.StartTime.UTC()
	}
	for _, f := range existing {
		if f.IsBye {
			continue
		}
		if next := f.StartsAt.Add(time.Duration(f.DurationMinutes)*time.Minute + interval); next.After(start) {
			start = next
		}
	}

	fixtures := make([]tournament.Fixture, 0, len(drafts))
	roundStart := make(map[int]time.Time)
	slot := 0
	for _, d := range drafts {
		f := tournament.Fixture{
			ID:           uuid.New(),
			StageID:      stage.ID,
			GroupID:      d.GroupID,
			Round:        d.Round,
			MatchOrder:   d.Slot,
			FirstTeamID:  d.HomeTeamID,
			SecondTeamID: d.AwayTeamID,
			IsBye:        d.IsBye,
			IsSecondLeg:  d.IsSecondLeg,
			Status:       tournament.FixtureUpcoming,
		}

		if d.IsBye {
			f.Status = tournament.FixtureCompleted
			f.SecondTeamID = nil
			if at, ok := roundStart[d.Round]; ok {
				f.StartsAt = at
			} else {
				f.StartsAt = start.Add(time.Duration(slot) * step)
			}
		} else {
			f.StartsAt = start.Add(time.Duration(slot) * step)
			f.DurationMinutes = int(duration / time.Minute)
			if _, ok := roundStart[d.Round]; !ok {
				roundStart[d.Round] = f.StartsAt
			}
			slot++
		}

		fixtures = append(fixtures, f)
	}
	return fixtures
}

// RecordResult scores an upcoming fixture of an active stage and refreshes the
// stage rankings in the same transaction.
func (s *FixtureGenerationService) RecordResult(ctx context.Context, fixtureID uuid.UUID, homeScore, awayScore int) (*tournament.Fixture, error) {
	if homeScore < 0 || awayScore < 0 {
		return nil, tournament.ErrInvalidScore
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	f, stage, err := s.lockFixture(ctx, tx, fixtureID)
	if err != nil {
		return nil, err
	}
	if stage.Status != tournament.StageActive {
		return nil, tournament.ErrInvalidStageStatus
	}
	if f.IsBye {
		return nil, tournament.ErrByeNotScorable
	}
	if f.Status != tournament.FixtureUpcoming {
		return nil, tournament.ErrFixtureNotUpcoming
	}

	f.Status = tournament.FixtureCompleted
	f.FirstTeamScore = utils.Ptr(homeScore)
	f.SecondTeamScore = utils.Ptr(awayScore)
	if err := s.store.UpdateFixtureResult(ctx, tx, f); err != nil {
		return nil, fmt.Errorf("failed to update fixture: %w", err)
	}

	if stage.Type.Ranked() {
		if _, err := s.rankings.refresh(ctx, tx, stage); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("Result recorded", "fixture_id", f.ID, "stage_id", stage.ID, "home_score", homeScore, "away_score", awayScore)
	return f, nil
}

// CancelFixture marks an upcoming fixture cancelled. Cancelled fixtures count
// as decided for stage completion and promotion. Knockout fixtures cannot be
// cancelled since the next round needs a winner from every tie.
func (s *FixtureGenerationService) CancelFixture(ctx context.Context, fixtureID uuid.UUID) (*tournament.Fixture, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	f, stage, err := s.lockFixture(ctx, tx, fixtureID)
	if err != nil {
		return nil, err
	}
	if stage.IsTerminal() {
		return nil, tournament.ErrInvalidStageStatus
	}
	if f.Status != tournament.FixtureUpcoming {
		return nil, tournament.ErrFixtureNotUpcoming
	}
	if stage.Type == tournament.StageKnockout {
		return nil, tournament.ErrTieNotCancellable
	}

	f.Status = tournament.FixtureCancelled
	if err := s.store.UpdateFixtureResult(ctx, tx, f); err != nil {
		return nil, fmt.Errorf("failed to update fixture: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("Fixture cancelled", "fixture_id", f.ID, "stage_id", stage.ID)
	return f, nil
}

func (s *FixtureGenerationService) lockFixture(ctx context.Context, tx *sqlx.Tx, fixtureID uuid.UUID) (*tournament.Fixture, *tournament.Stage, error) {
	f, err := s.store.GetFixture(ctx, tx, fixtureID)
	if err != nil {
		return nil, nil, err
	}
	stage, err := lockStage(ctx, tx, s.store, f.StageID)
	if err != nil {
		return nil, nil, err
	}
	return f, stage, nil
}

func (s *FixtureGenerationService) ListFixtures(ctx context.Context, stageID uuid.UUID) ([]tournament.Fixture, error) {
	if _, err := s.store.GetStage(ctx, s.db, stageID); err != nil {
		return nil, err
	}
	return s.store.ListFixtures(ctx, s.db, stageID)
}

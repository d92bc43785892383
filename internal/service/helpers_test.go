package service

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/op-tournament-engine/internal/db"
	"github.com/AdamBeresnev/op-tournament-engine/internal/store"
	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	// Every connection to :memory: is a separate database
	database.SetMaxOpenConns(1)

	err = db.RunMigrations(database.DB)
	require.NoError(t, err, "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

type services struct {
	db          *sqlx.DB
	store       *store.TournamentStore
	tournaments *TournamentService
	stages      *StageService
	fixtures    *FixtureGenerationService
	rankings    *RankingService
	promotions  *PromotionService
}

func newServices(t *testing.T) *services {
	t.Helper()
	database := setupTestDB(t)
	st := store.NewTournamentStore()
	opts := Options{
		Now:                  func() time.Time { return testNow },
		Rand:                 SeededRand(42),
		DefaultMatchDuration: 60 * time.Minute,
		DefaultMatchInterval: 15 * time.Minute,
	}

	rankings := NewRankingService(database, st, opts)
	return &services{
		db:          database,
		store:       st,
		tournaments: NewTournamentService(database, st),
		stages:      NewStageService(database, st),
		fixtures:    NewFixtureGenerationService(database, st, rankings, opts),
		rankings:    rankings,
		promotions:  NewPromotionService(database, st),
	}
}

func newTeams(n int) []uuid.UUID {
	teams := make([]uuid.UUID, n)
	for i := range teams {
		teams[i] = uuid.New()
	}
	return teams
}

// createLeagueToKnockout creates a league stage promoting its top two into a
// knockout stage, assigns teams to the league and activates it.
func (s *services) createLeagueToKnockout(t *testing.T, teams []uuid.UUID) (league, knockout tournament.Stage) {
	t.Helper()
	ctx := context.Background()

	data, err := s.tournaments.CreateTournament(ctx, TournamentInput{
		Name: "Summer League",
		Type: tournament.MultiStage,
		Stages: []StageInput{
			{
				Name:      "League",
				Type:      tournament.StageLeague,
				Promotion: &PromotionInput{RuleType: tournament.RuleTopN, RuleConfig: tournament.RuleConfig{N: 2}},
			},
			{Name: "Final", Type: tournament.StageKnockout},
		},
	})
	require.NoError(t, err)
	require.Len(t, data.Stages, 2)

	assignments := make([]TeamAssignment, len(teams))
	for i, id := range teams {
		assignments[i] = TeamAssignment{TeamID: id}
	}
	_, err = s.stages.AssignTeams(ctx, data.Stages[0].ID, assignments)
	require.NoError(t, err)

	_, err = s.stages.ActivateStage(ctx, data.Stages[0].ID)
	require.NoError(t, err)

	return data.Stages[0], data.Stages[1]
}

// playAll records a result for every upcoming fixture. score picks the result
// from the two team IDs.
func (s *services) playAll(t *testing.T, stageID uuid.UUID, score func(home, away uuid.UUID) (int, int)) {
	t.Helper()
	ctx := context.Background()

	fixtures, err := s.fixtures.ListFixtures(ctx, stageID)
	require.NoError(t, err)
	for _, f := range fixtures {
		if f.Status != tournament.FixtureUpcoming {
			continue
		}
		home, away := score(f.FirstTeamID, *f.SecondTeamID)
		_, err := s.fixtures.RecordResult(ctx, f.ID, home, away)
		require.NoError(t, err)
	}
}

// strongerWins makes the team listed earlier in order win 2-0.
func strongerWins(order []uuid.UUID) func(home, away uuid.UUID) (int, int) {
	pos := make(map[uuid.UUID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	return func(home, away uuid.UUID) (int, int) {
		if pos[home] < pos[away] {
			return 2, 0
		}
		return 0, 2
	}
}

func stageTeamIDs(t *testing.T, s *services, stageID uuid.UUID) []uuid.UUID {
	t.Helper()
	teams, err := s.store.ListStageTeams(context.Background(), s.db, stageID)
	require.NoError(t, err)
	ids := make([]uuid.UUID, len(teams))
	for i, team := range teams {
		ids[i] = team.TeamID
	}
	return ids
}

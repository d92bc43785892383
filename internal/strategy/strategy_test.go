package strategy

import (
	"math/rand/v2"
	"testing"

	"github.com/AdamBeresnev/op-tournament-engine/internal/fixture"
	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/AdamBeresnev/op-tournament-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	tests := []struct {
		stageType tournament.StageType
		want      Strategy
	}{
		{tournament.StageLeague, League{}},
		{tournament.StageGroup, Group{}},
		{tournament.StageKnockout, Knockout{}},
		{tournament.StageSwiss, Swiss{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.stageType), func(t *testing.T) {
			got, err := For(tt.stageType)
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}

	_, err := For("ladder")
	assert.ErrorIs(t, err, tournament.ErrUnknownStageType)
	assert.ErrorIs(t, err, tournament.ErrConfiguration)
}

func TestTeamIDsOrderedBySeed(t *testing.T) {
	s := newSnapshot(t, tournament.StageLeague, 3)
	s.Teams[0].Seed, s.Teams[2].Seed = 3, 1

	ids := s.TeamIDs()
	assert.Equal(t, []uuid.UUID{s.Teams[2].TeamID, s.Teams[1].TeamID, s.Teams[0].TeamID}, ids)
}

func TestLeagueGenerateFixtures(t *testing.T) {
	s := newSnapshot(t, tournament.StageLeague, 4)
	s.Stage.Settings.Rounds = 2

	drafts, err := League{}.GenerateFixtures(s)
	require.NoError(t, err)
	assert.Len(t, drafts, 12)

	s.Fixtures = played(drafts, homeWins)
	_, err = League{}.GenerateFixtures(s)
	assert.ErrorIs(t, err, tournament.ErrFixturesAlreadyGenerated)
}

func TestLeagueComputeRankings(t *testing.T) {
	s := newSnapshot(t, tournament.StageLeague, 3)
	drafts, err := League{}.GenerateFixtures(s)
	require.NoError(t, err)

	// Only the first fixture has been played
	first := true
	s.Fixtures = played(drafts, func(fixture.Draft) (int, int, bool) {
		if first {
			first = false
			return 2, 0, true
		}
		return 0, 0, false
	})

	rows, err := League{}.ComputeRankings(s)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, drafts[0].HomeTeamID, rows[0].TeamID)
	assert.Equal(t, 3, rows[0].Points)
	for i, row := range rows {
		assert.Equal(t, i+1, row.Rank)
	}
}

func TestLeagueRankingsUseStageScoring(t *testing.T) {
	s := newSnapshot(t, tournament.StageLeague, 2)
	s.Settings.Scoring = &tournament.Scoring{Win: 2}
	s.Stage.Settings.Scoring = &tournament.Scoring{Win: 5}

	drafts, err := League{}.GenerateFixtures(s)
	require.NoError(t, err)
	s.Fixtures = played(drafts, homeWins)

	rows, err := League{}.ComputeRankings(s)
	require.NoError(t, err)
	assert.Equal(t, 5, rows[0].Points)
}

func TestLeagueUnknownTieBreaker(t *testing.T) {
	s := newSnapshot(t, tournament.StageLeague, 2)
	s.Settings.TieBreakers = []string{"points", "coin_toss"}

	_, err := League{}.ComputeRankings(s)
	assert.ErrorIs(t, err, tournament.ErrUnknownTieBreaker)
}

func groupSnapshot(t *testing.T) Snapshot {
	t.Helper()
	s := newSnapshot(t, tournament.StageGroup, 8)
	a := tournament.Group{ID: uuid.New(), StageID: s.Stage.ID, Name: "A", Position: 1}
	b := tournament.Group{ID: uuid.New(), StageID: s.Stage.ID, Name: "B", Position: 2}
	// Listed out of position order on purpose
	s.Groups = []tournament.Group{b, a}
	for i := range s.Teams {
		if i%2 == 0 {
			s.Teams[i].GroupID = utils.Ptr(a.ID)
		} else {
			s.Teams[i].GroupID = utils.Ptr(b.ID)
		}
	}
	return s
}

func TestGroupGenerateFixtures(t *testing.T) {
	s := groupSnapshot(t)
	drafts, err := Group{}.GenerateFixtures(s)
	require.NoError(t, err)

	// Two groups of four: 6 matches each over 3 rounds
	require.Len(t, drafts, 12)

	groupOf := make(map[uuid.UUID]uuid.UUID)
	for _, team := range s.Teams {
		groupOf[team.TeamID] = *team.GroupID
	}

	round, slot := 0, 0
	for _, d := range drafts {
		require.NotNil(t, d.GroupID)
		assert.Equal(t, *d.GroupID, groupOf[d.HomeTeamID])
		assert.Equal(t, *d.GroupID, groupOf[*d.AwayTeamID])

		assert.GreaterOrEqual(t, d.Round, round)
		if d.Round != round {
			round, slot = d.Round, 0
		}
		slot++
		assert.Equal(t, slot, d.Slot)
	}
}

func TestGroupComputeRankingsPerGroup(t *testing.T) {
	s := groupSnapshot(t)
	s.Rand = rand.New(rand.NewPCG(3, 4))
	drafts, err := Group{}.GenerateFixtures(s)
	require.NoError(t, err)
	s.Fixtures = played(drafts, homeWins)

	rows, err := Group{}.ComputeRankings(s)
	require.NoError(t, err)
	require.Len(t, rows, 8)

	groupA := s.Groups[1].ID
	groupB := s.Groups[0].ID
	for i, row := range rows[:4] {
		assert.Equal(t, groupA, *row.GroupID)
		assert.Equal(t, i+1, row.Rank)
	}
	for i, row := range rows[4:] {
		assert.Equal(t, groupB, *row.GroupID)
		assert.Equal(t, i+1, row.Rank)
		assert.Equal(t, 3, row.Played)
	}
}

func TestGroupUnknownGroup(t *testing.T) {
	s := groupSnapshot(t)
	s.Teams[0].GroupID = utils.Ptr(uuid.New())

	_, err := Group{}.GenerateFixtures(s)
	assert.ErrorIs(t, err, tournament.ErrGroupNotFound)
}

func TestResultsSkipsUnplayed(t *testing.T) {
	home, away := uuid.New(), uuid.New()
	fixtures := []tournament.Fixture{
		{FirstTeamID: home, SecondTeamID: &away, Status: tournament.FixtureCompleted, FirstTeamScore: utils.Ptr(1), SecondTeamScore: utils.Ptr(1)},
		{FirstTeamID: home, SecondTeamID: &away, Status: tournament.FixtureUpcoming},
		{FirstTeamID: home, SecondTeamID: &away, Status: tournament.FixtureCancelled},
		{FirstTeamID: home, IsBye: true, Status: tournament.FixtureCompleted},
	}

	results := Results(fixtures)
	require.Len(t, results, 1)
	assert.Equal(t, home, results[0].HomeTeamID)
	assert.Equal(t, 1, results[0].AwayScore)
}

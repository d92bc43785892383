package strategy

import (
	"testing"

	"github.com/AdamBeresnev/op-tournament-engine/internal/fixture"
	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwissMaxRounds(t *testing.T) {
	s := newSnapshot(t, tournament.StageSwiss, 10)
	assert.Equal(t, 4, Swiss{}.MaxRounds(s))

	s.Stage.Settings.Rounds = 2
	assert.Equal(t, 2, Swiss{}.MaxRounds(s))
}

func TestSwissPlaysConfiguredRounds(t *testing.T) {
	s := newSnapshot(t, tournament.StageSwiss, 8)
	s.Stage.Settings.Rounds = 3

	seen := make(map[[2]string]bool)
	for round := 1; round <= 3; round++ {
		drafts, err := Swiss{}.GenerateFixtures(s)
		require.NoError(t, err)
		require.Len(t, drafts, 4)

		for _, d := range drafts {
			assert.Equal(t, round, d.Round)
			assert.False(t, d.ForcedRematch)

			a, b := d.HomeTeamID.String(), d.AwayTeamID.String()
			if a > b {
				a, b = b, a
			}
			assert.False(t, seen[[2]string{a, b}], "rematch in round %d", round)
			seen[[2]string{a, b}] = true
		}
		s.Fixtures = append(s.Fixtures, played(drafts, homeWins)...)
	}

	_, err := Swiss{}.GenerateFixtures(s)
	assert.ErrorIs(t, err, tournament.ErrNoRoundsRemaining)
}

func TestSwissWaitsForRound(t *testing.T) {
	s := newSnapshot(t, tournament.StageSwiss, 4)
	drafts, err := Swiss{}.GenerateFixtures(s)
	require.NoError(t, err)

	s.Fixtures = played(drafts, func(fixture.Draft) (int, int, bool) { return 0, 0, false })
	_, err = Swiss{}.GenerateFixtures(s)
	assert.ErrorIs(t, err, tournament.ErrRoundIncomplete)
}

func TestSwissByeIsNotRanked(t *testing.T) {
	s := newSnapshot(t, tournament.StageSwiss, 3)
	drafts, err := Swiss{}.GenerateFixtures(s)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	require.True(t, drafts[1].IsBye)

	s.Fixtures = played(drafts, homeWins)
	rows, err := Swiss{}.ComputeRankings(s)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for _, row := range rows {
		if row.TeamID == drafts[1].HomeTeamID {
			assert.Zero(t, row.Played)
			assert.Zero(t, row.Points)
		}
	}
}

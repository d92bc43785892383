package fixture

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBracketSize(t *testing.T) {
	testCases := map[int]int{0: 0, 1: 1, 2: 2, 3: 4, 5: 8, 8: 8, 9: 16}
	for count, expected := range testCases {
		assert.Equal(t, expected, BracketSize(count), "count %d", count)
	}
}

func TestSeedPairs(t *testing.T) {
	testCases := []struct {
		name        string
		bracketSize int
		expected    [][2]int
	}{
		{
			name:        "2 entries",
			bracketSize: 2,
			expected:    [][2]int{{0, 1}},
		},
		{
			name:        "4 entries",
			bracketSize: 4,
			expected:    [][2]int{{0, 3}, {1, 2}},
		},
		{
			name:        "8 entries",
			bracketSize: 8,
			expected:    [][2]int{{0, 7}, {3, 4}, {1, 6}, {2, 5}},
		},
		{
			name:        "Non-power of 2 (7 entries)",
			bracketSize: 7,
			expected:    [][2]int{{0, 7}, {3, 4}, {1, 6}, {2, 5}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, seedPairs(tc.bracketSize))
		})
	}
}

func TestKnockoutSeeding(t *testing.T) {
	teams := makeTeams(t, 8)
	drafts := Knockout(teams, true)
	require.Len(t, drafts, 4)

	var got [][2]uuid.UUID
	for _, d := range drafts {
		assert.Equal(t, 1, d.Round)
		got = append(got, [2]uuid.UUID{d.HomeTeamID, *d.AwayTeamID})
	}

	// Seed 1 v 8, 2 v 7, 3 v 6, 4 v 5
	expected := [][2]uuid.UUID{
		{teams[0], teams[7]},
		{teams[1], teams[6]},
		{teams[2], teams[5]},
		{teams[3], teams[4]},
	}
	assert.ElementsMatch(t, expected, got)

	// Seeds 1 and 2 sit in opposite halves
	assert.Equal(t, teams[0], drafts[0].HomeTeamID)
	assert.Equal(t, teams[1], drafts[2].HomeTeamID)
}

func TestKnockoutByes(t *testing.T) {
	teams := makeTeams(t, 5)
	drafts := Knockout(teams, true)

	assert.Less(t, len(drafts), 4)
	assert.Greater(t, len(drafts), 0)
	// Only seeds 4 and 5 play; everyone else has a bye
	require.Len(t, drafts, 1)
	assert.Equal(t, teams[3], drafts[0].HomeTeamID)
	assert.Equal(t, teams[4], *drafts[0].AwayTeamID)
	assert.Equal(t, 2, drafts[0].Slot)

	slots := BracketSlots(teams)
	require.Len(t, slots, 4)
	byes := 0
	for _, slot := range slots {
		if slot[0] == nil || slot[1] == nil {
			byes++
		}
	}
	assert.Equal(t, 3, byes)
}

func TestKnockoutSmallFields(t *testing.T) {
	assert.Empty(t, Knockout(nil, true))
	assert.Empty(t, Knockout(makeTeams(t, 1), true))

	teams := makeTeams(t, 2)
	drafts := Knockout(teams, true)
	require.Len(t, drafts, 1)
	assert.Equal(t, teams[0], drafts[0].HomeTeamID)
	assert.Equal(t, teams[1], *drafts[0].AwayTeamID)
}

func TestKnockoutTwoLegs(t *testing.T) {
	teams := makeTeams(t, 4)
	drafts := Knockout(teams, false)
	require.Len(t, drafts, 4)

	secondLegs := 0
	for i, d := range drafts {
		if d.IsSecondLeg {
			secondLegs++
			first := drafts[i-1]
			assert.Equal(t, first.HomeTeamID, *d.AwayTeamID)
			assert.Equal(t, *first.AwayTeamID, d.HomeTeamID)
			assert.Equal(t, first.Slot, d.Slot)
		}
	}
	assert.Equal(t, 2, secondLegs)
}

func TestKnockoutNextRound(t *testing.T) {
	winners := makeTeams(t, 4)
	drafts := KnockoutNextRound(winners, 1, true)
	require.Len(t, drafts, 2)

	assert.Equal(t, winners[0], drafts[0].HomeTeamID)
	assert.Equal(t, winners[1], *drafts[0].AwayTeamID)
	assert.Equal(t, winners[2], drafts[1].HomeTeamID)
	assert.Equal(t, winners[3], *drafts[1].AwayTeamID)
	for _, d := range drafts {
		assert.Equal(t, 2, d.Round)
	}

	assert.Len(t, KnockoutNextRound(winners[:2], 2, false), 2)
	assert.Empty(t, KnockoutNextRound(winners[:1], 3, true))
}

func TestTotalKnockoutRounds(t *testing.T) {
	assert.Equal(t, 0, TotalKnockoutRounds(1))
	assert.Equal(t, 1, TotalKnockoutRounds(2))
	assert.Equal(t, 3, TotalKnockoutRounds(5))
	assert.Equal(t, 3, TotalKnockoutRounds(8))
}

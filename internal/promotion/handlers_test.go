package promotion

import (
	"testing"

	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/AdamBeresnev/op-tournament-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// table builds ranking rows ranked in the order given, with descending points.
func table(groupID *uuid.UUID, n int) []tournament.Ranking {
	rows := make([]tournament.Ranking, n)
	for i := range rows {
		rows[i] = tournament.Ranking{
			ID:      uuid.New(),
			GroupID: groupID,
			TeamID:  uuid.New(),
			Points:  (n - i) * 3,
			Rank:    i + 1,
		}
	}
	return rows
}

func teamIDs(rows []tournament.Ranking) []uuid.UUID {
	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.TeamID
	}
	return ids
}

func TestHandlerFor(t *testing.T) {
	for _, rt := range []tournament.RuleType{tournament.RuleTopN, tournament.RulePlayoff, tournament.RuleThreshold, tournament.RuleManual} {
		h, err := HandlerFor(rt)
		require.NoError(t, err)
		assert.NotNil(t, h)
	}

	_, err := HandlerFor("lottery")
	assert.ErrorIs(t, err, tournament.ErrUnknownRuleType)
	assert.ErrorIs(t, err, tournament.ErrConfiguration)
}

func TestTopN(t *testing.T) {
	rows := table(nil, 6)
	// Rows arrive unordered from callers that do not sort
	shuffled := []tournament.Ranking{rows[3], rows[0], rows[5], rows[1], rows[4], rows[2]}

	got, err := TopN{}.SelectWinners(tournament.Stage{}, shuffled, tournament.RuleConfig{N: 3})
	require.NoError(t, err)
	assert.Equal(t, teamIDs(rows[:3]), got)

	got, err = TopN{}.SelectWinners(tournament.Stage{}, rows, tournament.RuleConfig{N: 10})
	require.NoError(t, err)
	assert.Len(t, got, 6)
}

func TestTopNPerGroup(t *testing.T) {
	a := table(utils.Ptr(uuid.New()), 4)
	b := table(utils.Ptr(uuid.New()), 4)
	rows := append(append([]tournament.Ranking{}, a...), b...)

	got, err := TopN{}.SelectWinners(tournament.Stage{}, rows, tournament.RuleConfig{N: 2, PerGroup: true})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a[0].TeamID, b[0].TeamID, a[1].TeamID, b[1].TeamID}, got)
}

func TestPlayoff(t *testing.T) {
	rows := table(nil, 8)

	got, err := Playoff{}.SelectWinners(tournament.Stage{}, rows, tournament.RuleConfig{From: 3, To: 6})
	require.NoError(t, err)
	assert.Equal(t, teamIDs(rows[2:6]), got)
}

func TestThreshold(t *testing.T) {
	rows := table(nil, 5) // points 15, 12, 9, 6, 3

	got, err := Threshold{}.SelectWinners(tournament.Stage{}, rows, tournament.RuleConfig{Points: utils.Ptr(9)})
	require.NoError(t, err)
	assert.Equal(t, teamIDs(rows[:3]), got)

	got, err = Threshold{}.SelectWinners(tournament.Stage{}, rows, tournament.RuleConfig{Points: utils.Ptr(100)})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestManual(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	got, err := Manual{}.SelectWinners(tournament.Stage{}, nil, tournament.RuleConfig{TeamIDs: ids})
	require.NoError(t, err)
	assert.Equal(t, ids, got)

	_, err = Manual{}.SelectWinners(tournament.Stage{}, nil, tournament.RuleConfig{})
	assert.ErrorIs(t, err, tournament.ErrManualSelectionRequired)

	_, err = Manual{}.SelectWinners(tournament.Stage{}, nil, tournament.RuleConfig{TeamIDs: []uuid.UUID{ids[0], ids[0]}})
	assert.ErrorIs(t, err, tournament.ErrDuplicateTeam)
}

func TestInvalidConfigs(t *testing.T) {
	rows := table(nil, 4)
	tests := []struct {
		name    string
		handler Handler
		cfg     tournament.RuleConfig
	}{
		{"top_n zero", TopN{}, tournament.RuleConfig{}},
		{"playoff reversed", Playoff{}, tournament.RuleConfig{From: 4, To: 2}},
		{"playoff from zero", Playoff{}, tournament.RuleConfig{From: 0, To: 2}},
		{"threshold without points", Threshold{}, tournament.RuleConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.handler.SelectWinners(tournament.Stage{}, rows, tt.cfg)
			assert.ErrorIs(t, err, tournament.ErrInvalidRuleConfig)
		})
	}
}

func TestRankedRulesNeedRankings(t *testing.T) {
	_, err := TopN{}.SelectWinners(tournament.Stage{}, nil, tournament.RuleConfig{N: 2})
	assert.ErrorIs(t, err, tournament.ErrRankingsUnavailable)

	_, err = Threshold{}.SelectWinners(tournament.Stage{}, nil, tournament.RuleConfig{Points: utils.Ptr(1)})
	assert.ErrorIs(t, err, tournament.ErrRankingsUnavailable)
}

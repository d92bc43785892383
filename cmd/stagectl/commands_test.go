package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssignment(t *testing.T) {
	team, group := uuid.New(), uuid.New()

	a, err := parseAssignment(team.String())
	require.NoError(t, err)
	assert.Equal(t, team, a.TeamID)
	assert.Zero(t, a.Seed)
	assert.Nil(t, a.GroupID)

	a, err = parseAssignment(team.String() + ":3")
	require.NoError(t, err)
	assert.Equal(t, 3, a.Seed)

	a, err = parseAssignment(team.String() + "::" + group.String())
	require.NoError(t, err)
	assert.Zero(t, a.Seed)
	require.NotNil(t, a.GroupID)
	assert.Equal(t, group, *a.GroupID)

	for _, bad := range []string{"nope", team.String() + ":0", team.String() + ":x", team.String() + ":1:nope", team.String() + ":1:" + group.String() + ":extra"} {
		_, err := parseAssignment(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseOverride(t *testing.T) {
	team := uuid.New()

	o, err := parseOverride(team.String() + ":2")
	require.NoError(t, err)
	assert.Equal(t, team, o.TeamID)
	assert.Equal(t, 2, o.Seed)

	o, err = parseOverride(team.String())
	require.NoError(t, err)
	assert.Zero(t, o.Seed)

	_, err = parseOverride(team.String() + ":-1")
	assert.Error(t, err)
}

func TestReadTournament(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cup.json")
	def := `{
		"name": "Cup",
		"type": "multi_stage",
		"stages": [
			{"name": "Groups", "stage_type": "group", "groups": ["A", "B"],
			 "promotion": {"rule_type": "top_n", "rule_config": {"n": 2, "per_group": true}}},
			{"name": "Finals", "stage_type": "knockout", "settings": {"two_legged": true}}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(def), 0o600))

	input, err := readTournament(path)
	require.NoError(t, err)
	assert.Equal(t, "Cup", input.Name)
	require.Len(t, input.Stages, 2)
	assert.Equal(t, tournament.StageGroup, input.Stages[0].Type)
	assert.Equal(t, []string{"A", "B"}, input.Stages[0].Groups)
	assert.True(t, input.Stages[0].Promotion.RuleConfig.PerGroup)
	assert.True(t, input.Stages[1].Settings.TwoLegged)

	require.NoError(t, os.WriteFile(path, []byte(`{"name": "Cup", "colour": "red"}`), 0o600))
	_, err = readTournament(path)
	assert.Error(t, err)
}

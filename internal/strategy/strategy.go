// Package strategy binds each stage type to its fixture generator and ranking
// rules behind one interface.
package strategy

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/AdamBeresnev/op-tournament-engine/internal/fixture"
	"github.com/AdamBeresnev/op-tournament-engine/internal/ranking"
	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
)

// Snapshot is everything a strategy may look at for one stage. The service
// layer loads it inside the transaction that persists the outcome.
type Snapshot struct {
	Stage    tournament.Stage
	Settings tournament.Settings
	Teams    []tournament.StageTeam
	Groups   []tournament.Group
	Fixtures []tournament.Fixture

	// Source for random tie-breaks and Swiss first-round shuffles. Nil keeps
	// seed order for shuffles and uses the global source for tie-breaks.
	Rand *rand.Rand
}

type Strategy interface {
	// GenerateFixtures returns the next batch of pairings for the stage. League
	// and group stages produce everything at once; knockout and Swiss stages
	// produce one round per call.
	GenerateFixtures(s Snapshot) ([]fixture.Draft, error)

	// ComputeRankings returns ranked rows built from completed fixtures, or nil
	// for stage types that do not rank teams.
	ComputeRankings(s Snapshot) ([]ranking.Row, error)
}

// For returns the strategy for a stage type.
func For(stageType tournament.StageType) (Strategy, error) {
	switch stageType {
	case tournament.StageLeague:
		return League{}, nil
	case tournament.StageGroup:
		return Group{}, nil
	case tournament.StageKnockout:
		return Knockout{}, nil
	case tournament.StageSwiss:
		return Swiss{}, nil
	}
	return nil, fmt.Errorf("%w: %q", tournament.ErrUnknownStageType, stageType)
}

// TeamIDs returns the stage's teams ordered by seed.
func (s Snapshot) TeamIDs() []uuid.UUID {
	teams := s.seeded()
	ids := make([]uuid.UUID, len(teams))
	for i, t := range teams {
		ids[i] = t.TeamID
	}
	return ids
}

func (s Snapshot) seeded() []tournament.StageTeam {
	teams := slices.Clone(s.Teams)
	slices.SortStableFunc(teams, func(a, b tournament.StageTeam) int {
		return cmp.Compare(a.Seed, b.Seed)
	})
	return teams
}

func (s Snapshot) Scoring() tournament.Scoring {
	return tournament.EffectiveScoring(s.Settings, s.Stage.Settings)
}

func (s Snapshot) TieBreakers() []string {
	return tournament.EffectiveTieBreakers(s.Settings, s.Stage.Settings)
}

// lastRound returns the highest round number among the stage's fixtures and
// whether every fixture of that round is decided.
func (s Snapshot) lastRound() (int, bool) {
	last := 0
	for _, f := range s.Fixtures {
		last = max(last, f.Round)
	}

	decided := true
	for _, f := range s.Fixtures {
		if f.Round == last && !f.IsDecided() {
			decided = false
		}
	}
	return last, decided
}

// Results converts scored fixtures into calculator input. Byes, cancelled and
// unscored fixtures are skipped.
func Results(fixtures []tournament.Fixture) []ranking.Result {
	results := make([]ranking.Result, 0, len(fixtures))
	for _, f := range fixtures {
		if !f.HasResult() {
			continue
		}
		results = append(results, ranking.Result{
			HomeTeamID: f.FirstTeamID,
			AwayTeamID: *f.SecondTeamID,
			HomeScore:  *f.FirstTeamScore,
			AwayScore:  *f.SecondTeamScore,
		})
	}
	return results
}

package strategy

import (
	"github.com/AdamBeresnev/op-tournament-engine/internal/fixture"
	"github.com/AdamBeresnev/op-tournament-engine/internal/ranking"
	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
)

// Swiss pairs one round per call against the current standings.
type Swiss struct{}

// MaxRounds is the configured round count, or the recommended count for the
// field size when none is set.
func (Swiss) MaxRounds(s Snapshot) int {
	if s.Stage.Settings.Rounds > 0 {
		return s.Stage.Settings.Rounds
	}
	return fixture.RecommendedRounds(len(s.Teams))
}

func (sw Swiss) GenerateFixtures(s Snapshot) ([]fixture.Draft, error) {
	generator := fixture.Swiss{Rand: s.Rand}
	if len(s.Fixtures) == 0 {
		return generator.Generate(s.TeamIDs(), nil, nil, 1), nil
	}

	last, decided := s.lastRound()
	if !decided {
		return nil, tournament.ErrRoundIncomplete
	}
	if last >= sw.MaxRounds(s) {
		return nil, tournament.ErrNoRoundsRemaining
	}

	rows, err := sw.ComputeRankings(s)
	if err != nil {
		return nil, err
	}
	standings := make([]fixture.Standing, len(rows))
	for i, row := range rows {
		standings[i] = fixture.Standing{
			TeamID:         row.TeamID,
			Points:         row.Points,
			GoalDifference: row.GoalDifference,
			GoalsFor:       row.GoalsFor,
		}
	}

	// Cancelled fixtures were never played, so those teams may meet again
	var previous []fixture.Draft
	for _, f := range s.Fixtures {
		if f.Status == tournament.FixtureCancelled {
			continue
		}
		previous = append(previous, fixture.Draft{
			HomeTeamID: f.FirstTeamID,
			AwayTeamID: f.SecondTeamID,
			Round:      f.Round,
			IsBye:      f.IsBye,
		})
	}

	return generator.Generate(s.TeamIDs(), standings, previous, last+1), nil
}

func (Swiss) ComputeRankings(s Snapshot) ([]ranking.Row, error) {
	return ranking.Rank(Results(s.Fixtures), s.TeamIDs(), s.Scoring(), s.TieBreakers(), s.Rand)
}

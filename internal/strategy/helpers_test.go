package strategy

import (
	"testing"

	"github.com/AdamBeresnev/op-tournament-engine/internal/fixture"
	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/AdamBeresnev/op-tournament-engine/internal/utils"
	"github.com/google/uuid"
)

func newSnapshot(t *testing.T, stageType tournament.StageType, n int) Snapshot {
	t.Helper()
	stage := tournament.Stage{ID: uuid.New(), Type: stageType, Status: tournament.StageActive}
	teams := make([]tournament.StageTeam, n)
	for i := range teams {
		teams[i] = tournament.StageTeam{ID: uuid.New(), StageID: stage.ID, TeamID: uuid.New(), Seed: i + 1}
	}
	return Snapshot{Stage: stage, Teams: teams}
}

// played turns drafts into fixtures. score decides each result; a nil score
// leaves the fixture upcoming.
func played(drafts []fixture.Draft, score func(d fixture.Draft) (int, int, bool)) []tournament.Fixture {
	fixtures := make([]tournament.Fixture, 0, len(drafts))
	for _, d := range drafts {
		f := tournament.Fixture{
			ID:           uuid.New(),
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
		} else if home, away, ok := score(d); ok {
			f.Status = tournament.FixtureCompleted
			f.FirstTeamScore = utils.Ptr(home)
			f.SecondTeamScore = utils.Ptr(away)
		}
		fixtures = append(fixtures, f)
	}
	return fixtures
}

func homeWins(fixture.Draft) (int, int, bool) { return 1, 0, true }

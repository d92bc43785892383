package strategy

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/AdamBeresnev/op-tournament-engine/internal/fixture"
	"github.com/AdamBeresnev/op-tournament-engine/internal/ranking"
	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
)

// Knockout builds a seeded single-elimination bracket one round at a time.
type Knockout struct{}

func (Knockout) GenerateFixtures(s Snapshot) ([]fixture.Draft, error) {
	singleLeg := !s.Stage.Settings.TwoLegged
	if len(s.Fixtures) == 0 {
		return fixture.Knockout(s.TeamIDs(), singleLeg), nil
	}

	last, decided := s.lastRound()
	if !decided {
		return nil, tournament.ErrRoundIncomplete
	}

	winners, err := Winners(s)
	if err != nil {
		return nil, err
	}
	if len(winners) < 2 {
		return nil, tournament.ErrNoRoundsRemaining
	}

	return fixture.KnockoutNextRound(winners, last, singleLeg), nil
}

// ComputeRankings returns nil: knockout stages only advance winners.
func (Knockout) ComputeRankings(Snapshot) ([]ranking.Row, error) {
	return nil, nil
}

// Winners returns the teams through to the round after the latest one, in
// bracket order. For round 1 that includes the teams that had a bye.
func Winners(s Snapshot) ([]uuid.UUID, error) {
	last, _ := s.lastRound()
	ties := tiesOf(s.Fixtures, last)

	if last <= 1 {
		var winners []uuid.UUID
		for i, slot := range fixture.BracketSlots(s.TeamIDs()) {
			switch {
			case slot[0] == nil && slot[1] == nil:
				continue
			case slot[1] == nil:
				winners = append(winners, *slot[0])
			case slot[0] == nil:
				winners = append(winners, *slot[1])
			default:
				w, err := tieWinner(ties[i+1])
				if err != nil {
					return nil, err
				}
				winners = append(winners, w)
			}
		}
		return winners, nil
	}

	slots := make([]int, 0, len(ties))
	for slot := range ties {
		slots = append(slots, slot)
	}
	slices.Sort(slots)

	winners := make([]uuid.UUID, 0, len(slots))
	for _, slot := range slots {
		w, err := tieWinner(ties[slot])
		if err != nil {
			return nil, err
		}
		winners = append(winners, w)
	}
	return winners, nil
}

func tiesOf(fixtures []tournament.Fixture, round int) map[int][]tournament.Fixture {
	ties := make(map[int][]tournament.Fixture)
	for _, f := range fixtures {
		if f.Round == round {
			ties[f.MatchOrder] = append(ties[f.MatchOrder], f)
		}
	}
	for _, legs := range ties {
		slices.SortStableFunc(legs, func(a, b tournament.Fixture) int {
			if a.IsSecondLeg == b.IsSecondLeg {
				return 0
			}
			if a.IsSecondLeg {
				return 1
			}
			return -1
		})
	}
	return ties
}

// tieWinner decides a tie on aggregate score over all of its legs.
func tieWinner(legs []tournament.Fixture) (uuid.UUID, error) {
	if len(legs) == 0 {
		return uuid.Nil, tournament.ErrUndecidedTie
	}

	first := legs[0].FirstTeamID
	var second uuid.UUID
	if legs[0].SecondTeamID != nil {
		second = *legs[0].SecondTeamID
	}

	goals := map[uuid.UUID]int{}
	for _, leg := range legs {
		if !leg.HasResult() {
			return uuid.Nil, fmt.Errorf("%w: fixture %s has no result", tournament.ErrUndecidedTie, leg.ID)
		}
		goals[leg.FirstTeamID] += *leg.FirstTeamScore
		goals[*leg.SecondTeamID] += *leg.SecondTeamScore
	}

	switch cmp.Compare(goals[first], goals[second]) {
	case 1:
		return first, nil
	case -1:
		return second, nil
	}
	return uuid.Nil, fmt.Errorf("%w: level on aggregate", tournament.ErrUndecidedTie)
}

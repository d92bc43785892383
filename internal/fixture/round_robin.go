package fixture

import (
	"slices"

	"github.com/AdamBeresnev/op-tournament-engine/internal/utils"
	"github.com/google/uuid"
)

// RoundRobin pairs every team with every other team using the circle method.
// Each pass takes len(teams)-1 rounds (len(teams) when odd, one bye per team per
// pass). With reverseHomeAway, every second pass swaps home and away.
func RoundRobin(teamIDs []uuid.UUID, passes int, reverseHomeAway bool) []Draft {
	n := len(teamIDs)
	if n < 2 {
		return nil
	}
	if passes < 1 {
		passes = 1
	}

	// nil is the bye sentinel
	circle := make([]*uuid.UUID, 0, n+1)
	for i := range teamIDs {
		circle = append(circle, &teamIDs[i])
	}
	if n%2 != 0 {
		circle = append(circle, nil)
	}

	size := len(circle)
	roundsPerPass := size - 1
	drafts := make([]Draft, 0, passes*n*(n-1)/2)

	for pass := 0; pass < passes; pass++ {
		swapPass := reverseHomeAway && pass%2 == 1
		rotation := slices.Clone(circle)

		for r := 0; r < roundsPerPass; r++ {
			round := pass*roundsPerPass + r + 1
			slot := 0

			for i := 0; i < size/2; i++ {
				home, away := rotation[i], rotation[size-1-i]
				if home == nil || away == nil {
					continue
				}
				// The pivot never moves, so alternate its side every round
				if i == 0 && r%2 == 1 {
					home, away = away, home
				}
				if swapPass {
					home, away = away, home
				}

				slot++
				drafts = append(drafts, Draft{
					HomeTeamID: *home,
					AwayTeamID: utils.Ptr(*away),
					Round:      round,
					Slot:       slot,
				})
			}

			rotate(rotation)
		}
	}

	return drafts
}

// rotate keeps the pivot at index 0 and moves every other slot one step.
func rotate(circle []*uuid.UUID) {
	if len(circle) < 3 {
		return
	}
	last := circle[len(circle)-1]
	copy(circle[2:], circle[1:len(circle)-1])
	circle[1] = last
}

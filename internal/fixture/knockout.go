package fixture

import (
	"math"

	"github.com/AdamBeresnev/op-tournament-engine/internal/utils"
	"github.com/google/uuid"
)

// BracketSize gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func BracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// seedPairs returns 0-based seed pairs in bracket order. Seeds are folded so
// that the top seeds can only meet in the latest rounds: for 8 that is
// {0,7} {3,4} {1,6} {2,5}.
func seedPairs(bracketSize int) [][2]int {
	if bracketSize < 2 {
		return [][2]int{}
	}

	rounds := []int{0}
	for len(rounds) < bracketSize {
		var nextRound []int
		currentCount := len(rounds) * 2

		for _, seed := range rounds {
			nextRound = append(nextRound, seed)
			nextRound = append(nextRound, (currentCount-1)-seed)
		}
		rounds = nextRound
	}

	pairs := make([][2]int, 0, bracketSize/2)
	for i := 0; i < len(rounds); i += 2 {
		matchup := [2]int{rounds[i], rounds[i+1]}
		pairs = append(pairs, matchup)
	}

	return pairs
}

// BracketSlots lays seed-ordered teams into the first round of a bracket.
// A nil side is a bye and its opponent advances without playing.
func BracketSlots(teamIDs []uuid.UUID) [][2]*uuid.UUID {
	if len(teamIDs) < 2 {
		return nil
	}

	pairs := seedPairs(BracketSize(len(teamIDs)))
	slots := make([][2]*uuid.UUID, 0, len(pairs))
	for _, pair := range pairs {
		var slot [2]*uuid.UUID
		for side, seed := range pair {
			if seed < len(teamIDs) {
				slot[side] = utils.Ptr(teamIDs[seed])
			}
		}
		slots = append(slots, slot)
	}
	return slots
}

// Knockout returns the first-round matches of a seeded bracket. Teams facing a
// bye get no fixture. Two-legged ties add a second leg with sides swapped.
func Knockout(teamIDs []uuid.UUID, singleLeg bool) []Draft {
	var drafts []Draft
	for i, slot := range BracketSlots(teamIDs) {
		if slot[0] == nil || slot[1] == nil {
			continue
		}
		drafts = append(drafts, legs(*slot[0], *slot[1], 1, i+1, singleLeg)...)
	}
	return drafts
}

// KnockoutNextRound pairs the previous round's winners in bracket order, winner
// 1 against winner 2 and so on. An unpaired last winner advances without a
// fixture.
func KnockoutNextRound(winnerIDs []uuid.UUID, previousRound int, singleLeg bool) []Draft {
	var drafts []Draft
	for i := 0; i+1 < len(winnerIDs); i += 2 {
		drafts = append(drafts, legs(winnerIDs[i], winnerIDs[i+1], previousRound+1, i/2+1, singleLeg)...)
	}
	return drafts
}

func legs(home, away uuid.UUID, round, slot int, singleLeg bool) []Draft {
	first := Draft{
		HomeTeamID: home,
		AwayTeamID: utils.Ptr(away),
		Round:      round,
		Slot:       slot,
	}
	if singleLeg {
		return []Draft{first}
	}

	second := Draft{
		HomeTeamID:  away,
		AwayTeamID:  utils.Ptr(home),
		Round:       round,
		Slot:        slot,
		IsSecondLeg: true,
	}
	return []Draft{first, second}
}

// TotalKnockoutRounds is the number of rounds a bracket for count teams needs.
func TotalKnockoutRounds(count int) int {
	size := BracketSize(count)
	if size < 2 {
		return 0
	}
	return int(math.Log2(float64(size)))
}

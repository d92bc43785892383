package fixture

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/AdamBeresnev/op-tournament-engine/internal/utils"
	"github.com/google/uuid"
)

// Standing is the part of a ranking row Swiss pairing orders teams by.
type Standing struct {
	TeamID         uuid.UUID
	Points         int
	GoalDifference int
	GoalsFor       int
}

// Swiss pairs teams of similar standing while avoiding rematches.
type Swiss struct {
	// Shuffles the first round. Nil keeps seed order.
	Rand *rand.Rand
}

// Generate pairs one Swiss round. Round 1 uses seed (or shuffled) order; later
// rounds sort by standings and pair each team with the nearest one below it
// that it has not met, revisiting earlier pairs when the rest of the field
// cannot be completed. Rematches are only used when no rematch-free round
// exists, as few as possible, and each is flagged ForcedRematch. With an odd
// field the bye goes to the lowest placed team with the fewest earlier byes.
func (s Swiss) Generate(teamIDs []uuid.UUID, standings []Standing, previous []Draft, round int) []Draft {
	if len(teamIDs) == 0 {
		return nil
	}
	if round < 1 {
		round = 1
	}

	order := slices.Clone(teamIDs)
	if round == 1 {
		if s.Rand != nil {
			s.Rand.Shuffle(len(order), func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
		}
	} else {
		sortByStandings(order, standings)
	}

	played := make(map[pairKey]bool)
	byes := make(map[uuid.UUID]int)
	for _, d := range previous {
		if d.IsBye || d.AwayTeamID == nil {
			byes[d.HomeTeamID]++
			continue
		}
		played[keyOf(d.HomeTeamID, *d.AwayTeamID)] = true
	}

	var byeTeam *uuid.UUID
	if len(order)%2 != 0 {
		idx := byeCandidate(order, byes)
		byeTeam = utils.Ptr(order[idx])
		order = slices.Delete(order, idx, idx+1)
	}

	p := pairer{order: order, played: played, paired: make([]bool, len(order))}
	for rematches := 0; rematches <= len(order)/2; rematches++ {
		if p.match(rematches) {
			break
		}
	}

	drafts := make([]Draft, 0, len(order)/2+1)
	slot := 0
	for _, pair := range p.pairs {
		home, away := order[pair[0]], order[pair[1]]
		slot++
		drafts = append(drafts, Draft{
			HomeTeamID:    home,
			AwayTeamID:    utils.Ptr(away),
			Round:         round,
			Slot:          slot,
			ForcedRematch: played[keyOf(home, away)],
		})
	}

	if byeTeam != nil {
		slot++
		drafts = append(drafts, Draft{
			HomeTeamID: *byeTeam,
			Round:      round,
			Slot:       slot,
			IsBye:      true,
		})
	}

	return drafts
}

// pairer searches depth first for a full pairing of order. The highest
// unpaired team always takes the nearest opponent that still lets the rest of
// the field be paired.
type pairer struct {
	order  []uuid.UUID
	played map[pairKey]bool
	paired []bool
	pairs  [][2]int
}

// match completes the pairing using at most rematches repeat pairs.
func (p *pairer) match(rematches int) bool {
	i := slices.Index(p.paired, false)
	if i < 0 {
		return true
	}

	p.paired[i] = true
	for k := i + 1; k < len(p.order); k++ {
		if p.paired[k] {
			continue
		}
		cost := 0
		if p.played[keyOf(p.order[i], p.order[k])] {
			cost = 1
		}
		if cost > rematches {
			continue
		}

		p.paired[k] = true
		p.pairs = append(p.pairs, [2]int{i, k})
		if p.match(rematches - cost) {
			return true
		}
		p.pairs = p.pairs[:len(p.pairs)-1]
		p.paired[k] = false
	}
	p.paired[i] = false
	return false
}

// byeCandidate scans from the bottom of the order so the lowest placed team
// among those with the fewest byes is chosen.
func byeCandidate(order []uuid.UUID, byes map[uuid.UUID]int) int {
	best := len(order) - 1
	for k := len(order) - 2; k >= 0; k-- {
		if byes[order[k]] < byes[order[best]] {
			best = k
		}
	}
	return best
}

// sortByStandings orders by points, goal difference, then goals for. Teams
// without a standing count as zero; ties keep the incoming order.
func sortByStandings(order []uuid.UUID, standings []Standing) {
	byTeam := make(map[uuid.UUID]Standing, len(standings))
	for _, st := range standings {
		byTeam[st.TeamID] = st
	}

	slices.SortStableFunc(order, func(a, b uuid.UUID) int {
		sa, sb := byTeam[a], byTeam[b]
		if c := cmp.Compare(sb.Points, sa.Points); c != 0 {
			return c
		}
		if c := cmp.Compare(sb.GoalDifference, sa.GoalDifference); c != 0 {
			return c
		}
		return cmp.Compare(sb.GoalsFor, sa.GoalsFor)
	})
}

// RecommendedRounds is ceil(log2(n)) for fields larger than 6 and 3 otherwise.
func RecommendedRounds(teamCount int) int {
	if teamCount > 6 {
		return int(math.Ceil(math.Log2(float64(teamCount))))
	}
	return 3
}

package fixture

import (
	"testing"

	"github.com/google/uuid"
)

func makeTeams(t *testing.T, n int) []uuid.UUID {
	t.Helper()
	teams := make([]uuid.UUID, n)
	for i := range teams {
		teams[i] = uuid.New()
	}
	return teams
}

func appearances(drafts []Draft) map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int)
	for _, d := range drafts {
		if d.IsBye {
			continue
		}
		counts[d.HomeTeamID]++
		counts[*d.AwayTeamID]++
	}
	return counts
}

func pairCounts(drafts []Draft) map[pairKey]int {
	counts := make(map[pairKey]int)
	for _, d := range drafts {
		if d.IsBye {
			continue
		}
		counts[keyOf(d.HomeTeamID, *d.AwayTeamID)]++
	}
	return counts
}

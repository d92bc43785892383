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
	"golang.org/x/sync/errgroup"
)

// League plays a full round robin between every team of the stage.
type League struct{}

func (League) GenerateFixtures(s Snapshot) ([]fixture.Draft, error) {
	if len(s.Fixtures) > 0 {
		return nil, tournament.ErrFixturesAlreadyGenerated
	}
	settings := s.Stage.Settings
	return fixture.RoundRobin(s.TeamIDs(), settings.Rounds, settings.ReverseHomeAway), nil
}

func (League) ComputeRankings(s Snapshot) ([]ranking.Row, error) {
	return ranking.Rank(Results(s.Fixtures), s.TeamIDs(), s.Scoring(), s.TieBreakers(), s.Rand)
}

// Group plays a round robin inside each group and ranks every group on its
// own. Teams without a group form one extra bucket placed after the groups.
type Group struct{}

type bucket struct {
	groupID *uuid.UUID
	teamIDs []uuid.UUID
}

func buckets(s Snapshot) ([]bucket, error) {
	groups := slices.Clone(s.Groups)
	slices.SortStableFunc(groups, func(a, b tournament.Group) int {
		return cmp.Compare(a.Position, b.Position)
	})

	index := make(map[uuid.UUID]int, len(groups))
	out := make([]bucket, 0, len(groups)+1)
	for _, g := range groups {
		index[g.ID] = len(out)
		out = append(out, bucket{groupID: &g.ID})
	}

	var ungrouped []uuid.UUID
	for _, team := range s.seeded() {
		if team.GroupID == nil {
			ungrouped = append(ungrouped, team.TeamID)
			continue
		}
		i, ok := index[*team.GroupID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", tournament.ErrGroupNotFound, *team.GroupID)
		}
		out[i].teamIDs = append(out[i].teamIDs, team.TeamID)
	}
	if len(ungrouped) > 0 {
		out = append(out, bucket{teamIDs: ungrouped})
	}

	return out, nil
}

func sameGroup(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (Group) GenerateFixtures(s Snapshot) ([]fixture.Draft, error) {
	if len(s.Fixtures) > 0 {
		return nil, tournament.ErrFixturesAlreadyGenerated
	}
	bs, err := buckets(s)
	if err != nil {
		return nil, err
	}

	settings := s.Stage.Settings
	var drafts []fixture.Draft
	for _, b := range bs {
		for _, d := range fixture.RoundRobin(b.teamIDs, settings.Rounds, settings.ReverseHomeAway) {
			d.GroupID = b.groupID
			drafts = append(drafts, d)
		}
	}

	// Interleave groups round by round and renumber slots within each round
	slices.SortStableFunc(drafts, func(a, b fixture.Draft) int {
		return cmp.Compare(a.Round, b.Round)
	})
	slot, round := 0, 0
	for i := range drafts {
		if drafts[i].Round != round {
			round, slot = drafts[i].Round, 0
		}
		slot++
		drafts[i].Slot = slot
	}

	return drafts, nil
}

// ComputeRankings ranks each group concurrently. Ranks restart at 1 in every
// group and rows come back in group order.
func (Group) ComputeRankings(s Snapshot) ([]ranking.Row, error) {
	bs, err := buckets(s)
	if err != nil {
		return nil, err
	}

	// Each group gets its own source, drawn up front so the outcome does not
	// depend on goroutine scheduling.
	sources := make([]*rand.Rand, len(bs))
	if s.Rand != nil {
		for i := range sources {
			sources[i] = rand.New(rand.NewPCG(s.Rand.Uint64(), s.Rand.Uint64()))
		}
	}

	tables := make([][]ranking.Row, len(bs))
	var g errgroup.Group
	for i, b := range bs {
		g.Go(func() error {
			var groupFixtures []tournament.Fixture
			for _, f := range s.Fixtures {
				if sameGroup(f.GroupID, b.groupID) {
					groupFixtures = append(groupFixtures, f)
				}
			}

			rows, err := ranking.Rank(Results(groupFixtures), b.teamIDs, s.Scoring(), s.TieBreakers(), sources[i])
			if err != nil {
				return err
			}
			for j := range rows {
				rows[j].GroupID = b.groupID
			}
			tables[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rows []ranking.Row
	for _, table := range tables {
		rows = append(rows, table...)
	}
	return rows, nil
}

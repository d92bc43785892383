// Package promotion selects the teams that advance from a finished stage.
package promotion

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
)

// Handler picks the promoted teams for one rule type. Rankings are the
// persisted rows of the stage; the returned IDs are in promotion order, which
// becomes the seed order in the next stage.
type Handler interface {
	SelectWinners(stage tournament.Stage, rankings []tournament.Ranking, cfg tournament.RuleConfig) ([]uuid.UUID, error)
}

func HandlerFor(ruleType tournament.RuleType) (Handler, error) {
	switch ruleType {
	case tournament.RuleTopN:
		return TopN{}, nil
	case tournament.RulePlayoff:
		return Playoff{}, nil
	case tournament.RuleThreshold:
		return Threshold{}, nil
	case tournament.RuleManual:
		return Manual{}, nil
	}
	return nil, fmt.Errorf("%w: %q", tournament.ErrUnknownRuleType, ruleType)
}

// TopN promotes the first n ranked teams, or the first n of every group when
// PerGroup is set.
type TopN struct{}

func (TopN) SelectWinners(_ tournament.Stage, rankings []tournament.Ranking, cfg tournament.RuleConfig) ([]uuid.UUID, error) {
	if cfg.N < 1 {
		return nil, fmt.Errorf("%w: top_n needs n >= 1", tournament.ErrInvalidRuleConfig)
	}
	if len(rankings) == 0 {
		return nil, tournament.ErrRankingsUnavailable
	}
	return byPosition(rankings, cfg.PerGroup, 1, cfg.N), nil
}

// Playoff promotes the teams ranked from..to inclusive.
type Playoff struct{}

func (Playoff) SelectWinners(_ tournament.Stage, rankings []tournament.Ranking, cfg tournament.RuleConfig) ([]uuid.UUID, error) {
	if cfg.From < 1 || cfg.To < cfg.From {
		return nil, fmt.Errorf("%w: playoff needs 1 <= from <= to", tournament.ErrInvalidRuleConfig)
	}
	if len(rankings) == 0 {
		return nil, tournament.ErrRankingsUnavailable
	}
	return byPosition(rankings, cfg.PerGroup, cfg.From, cfg.To), nil
}

// Threshold promotes every team with at least the configured points, in rank
// order.
type Threshold struct{}

func (Threshold) SelectWinners(_ tournament.Stage, rankings []tournament.Ranking, cfg tournament.RuleConfig) ([]uuid.UUID, error) {
	if cfg.Points == nil {
		return nil, fmt.Errorf("%w: threshold needs points", tournament.ErrInvalidRuleConfig)
	}
	if len(rankings) == 0 {
		return nil, tournament.ErrRankingsUnavailable
	}

	var winners []uuid.UUID
	for _, r := range ordered(rankings) {
		if r.Points >= *cfg.Points {
			winners = append(winners, r.TeamID)
		}
	}
	return winners, nil
}

// Manual promotes the configured team list as is. Rankings are not needed, so
// this is the rule for stages that do not rank teams.
type Manual struct{}

func (Manual) SelectWinners(_ tournament.Stage, _ []tournament.Ranking, cfg tournament.RuleConfig) ([]uuid.UUID, error) {
	if len(cfg.TeamIDs) == 0 {
		return nil, tournament.ErrManualSelectionRequired
	}
	seen := make(map[uuid.UUID]bool, len(cfg.TeamIDs))
	for _, id := range cfg.TeamIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", tournament.ErrDuplicateTeam, id)
		}
		seen[id] = true
	}
	return slices.Clone(cfg.TeamIDs), nil
}

// ordered sorts rows by rank, falling back to the table columns for rows that
// share a rank across groups.
func ordered(rankings []tournament.Ranking) []tournament.Ranking {
	rows := slices.Clone(rankings)
	slices.SortStableFunc(rows, func(a, b tournament.Ranking) int {
		if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		if c := cmp.Compare(b.GoalDifference, a.GoalDifference); c != 0 {
			return c
		}
		return cmp.Compare(b.GoalsFor, a.GoalsFor)
	})
	return rows
}

// byPosition returns teams ranked from..to. Without perGroup the whole stage is
// one table. With perGroup every group contributes its own from..to and the
// result interleaves the groups: all group winners first, then runners-up.
func byPosition(rankings []tournament.Ranking, perGroup bool, from, to int) []uuid.UUID {
	if !perGroup {
		rows := ordered(rankings)
		var winners []uuid.UUID
		for i, r := range rows {
			if pos := i + 1; pos >= from && pos <= to {
				winners = append(winners, r.TeamID)
			}
		}
		return winners
	}

	var groupOrder []uuid.UUID
	tables := make(map[uuid.UUID][]tournament.Ranking)
	for _, r := range rankings {
		key := uuid.Nil
		if r.GroupID != nil {
			key = *r.GroupID
		}
		if _, ok := tables[key]; !ok {
			groupOrder = append(groupOrder, key)
		}
		tables[key] = append(tables[key], r)
	}
	for key, rows := range tables {
		tables[key] = ordered(rows)
	}

	var winners []uuid.UUID
	for pos := from; pos <= to; pos++ {
		for _, key := range groupOrder {
			if rows := tables[key]; pos <= len(rows) {
				winners = append(winners, rows[pos-1].TeamID)
			}
		}
	}
	return winners
}

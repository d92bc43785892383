package ranking

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
)

type Rule string

const (
	RulePoints         Rule = "points"
	RuleGoalDifference Rule = "goal_difference"
	RuleGoalsFor       Rule = "goals_for"
	RuleGoalsAgainst   Rule = "goals_against"
	RuleWins           Rule = "wins"
	RuleHeadToHead     Rule = "head_to_head"
	RuleRandom         Rule = "random"
)

var DefaultRules = []Rule{RulePoints, RuleGoalDifference, RuleGoalsFor}

// Comparator returns a negative number when a ranks above b and 0 when the
// rule cannot separate them.
type Comparator func(a, b *Row) int

// ParseRules validates rule names. An empty list gives DefaultRules, and points
// is put first when the list does not mention it.
func ParseRules(names []string) ([]Rule, error) {
	if len(names) == 0 {
		return slices.Clone(DefaultRules), nil
	}

	rules := make([]Rule, 0, len(names)+1)
	hasPoints := false
	for _, name := range names {
		rule := Rule(name)
		switch rule {
		case RulePoints:
			hasPoints = true
		case RuleGoalDifference, RuleGoalsFor, RuleGoalsAgainst, RuleWins, RuleHeadToHead, RuleRandom:
		default:
			return nil, fmt.Errorf("%w: %q", tournament.ErrUnknownTieBreaker, name)
		}
		rules = append(rules, rule)
	}

	if !hasPoints {
		rules = append([]Rule{RulePoints}, rules...)
	}
	return rules, nil
}

// Chain compares rows rule by rule until one of them separates the pair.
type Chain struct {
	comparators []Comparator
}

// NewChain builds comparators for rules. The random rule draws one key per row
// from rng up front so the ordering stays consistent during a sort; a nil rng
// uses the global source.
func NewChain(rules []Rule, rows []Row, results []Result, rng *rand.Rand) *Chain {
	c := &Chain{comparators: make([]Comparator, 0, len(rules))}
	for _, rule := range rules {
		c.comparators = append(c.comparators, comparatorFor(rule, rows, results, rng))
	}
	return c
}

func (c *Chain) Compare(a, b *Row) int {
	for _, compare := range c.comparators {
		if result := compare(a, b); result != 0 {
			return result
		}
	}
	return 0
}

func comparatorFor(rule Rule, rows []Row, results []Result, rng *rand.Rand) Comparator {
	switch rule {
	case RulePoints:
		return func(a, b *Row) int { return cmp.Compare(b.Points, a.Points) }
	case RuleGoalDifference:
		return func(a, b *Row) int { return cmp.Compare(b.GoalDifference, a.GoalDifference) }
	case RuleGoalsFor:
		return func(a, b *Row) int { return cmp.Compare(b.GoalsFor, a.GoalsFor) }
	case RuleGoalsAgainst:
		// Fewer conceded ranks higher
		return func(a, b *Row) int { return cmp.Compare(a.GoalsAgainst, b.GoalsAgainst) }
	case RuleWins:
		return func(a, b *Row) int { return cmp.Compare(b.Wins, a.Wins) }
	case RuleHeadToHead:
		return headToHead(results)
	case RuleRandom:
		return randomOrder(rows, rng)
	}
	return func(a, b *Row) int { return 0 }
}

// headToHead never separates teams.
// TODO: compare the results between the tied teams once the rule for three or
// more teams level on points is agreed; until then this rule is a no-op.
func headToHead(_ []Result) Comparator {
	return func(a, b *Row) int { return 0 }
}

func randomOrder(rows []Row, rng *rand.Rand) Comparator {
	var perm []int
	if rng != nil {
		perm = rng.Perm(len(rows))
	} else {
		perm = rand.Perm(len(rows))
	}

	keys := make(map[uuid.UUID]int, len(rows))
	for i, row := range rows {
		keys[row.TeamID] = perm[i]
	}
	return func(a, b *Row) int { return cmp.Compare(keys[a.TeamID], keys[b.TeamID]) }
}

// ApplyTieBreakers sorts a copy of rows by the named rules and assigns ranks
// 1..N. Rows no rule can separate keep their incoming order, so every rank is
// distinct.
func ApplyTieBreakers(rows []Row, ruleNames []string, results []Result, rng *rand.Rand) ([]Row, error) {
	rules, err := ParseRules(ruleNames)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(rows)
	chain := NewChain(rules, sorted, results, rng)
	slices.SortStableFunc(sorted, func(a, b Row) int {
		return chain.Compare(&a, &b)
	})
	assignRanks(sorted)

	return sorted, nil
}

// Package ranking folds match results into standings tables and orders them
// with a configurable tie-breaker chain.
package ranking

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
)

type Row struct {
	TeamID         uuid.UUID  `json:"team_id"`
	GroupID        *uuid.UUID `json:"group_id,omitempty"`
	Played         int        `json:"played"`
	Wins           int        `json:"wins"`
	Draws          int        `json:"draws"`
	Losses         int        `json:"losses"`
	GoalsFor       int        `json:"goals_for"`
	GoalsAgainst   int        `json:"goals_against"`
	GoalDifference int        `json:"goal_difference"`
	Points         int        `json:"points"`
	Rank           int        `json:"rank"`
}

// Result is a completed match between two teams.
type Result struct {
	HomeTeamID uuid.UUID
	AwayTeamID uuid.UUID
	HomeScore  int
	AwayScore  int
}

// Calculate builds one row per team in teamIDs, including teams that have not
// played, and orders them by points. Ties keep the order of teamIDs. Results
// involving teams outside teamIDs only count for the listed side.
func Calculate(results []Result, teamIDs []uuid.UUID, scoring tournament.Scoring) []Row {
	rows := make([]Row, 0, len(teamIDs))
	index := make(map[uuid.UUID]int, len(teamIDs))
	for _, id := range teamIDs {
		if _, dup := index[id]; dup {
			continue
		}
		index[id] = len(rows)
		rows = append(rows, Row{TeamID: id})
	}

	record := func(team uuid.UUID, scored, conceded int) {
		i, ok := index[team]
		if !ok {
			return
		}
		row := &rows[i]
		row.Played++
		row.GoalsFor += scored
		row.GoalsAgainst += conceded
		switch {
		case scored > conceded:
			row.Wins++
			row.Points += scoring.Win
		case scored == conceded:
			row.Draws++
			row.Points += scoring.Draw
		default:
			row.Losses++
			row.Points += scoring.Loss
		}
	}

	for _, r := range results {
		if r.HomeTeamID == r.AwayTeamID {
			continue
		}
		record(r.HomeTeamID, r.HomeScore, r.AwayScore)
		record(r.AwayTeamID, r.AwayScore, r.HomeScore)
	}

	for i := range rows {
		rows[i].GoalDifference = rows[i].GoalsFor - rows[i].GoalsAgainst
	}

	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Compare(b.Points, a.Points)
	})
	assignRanks(rows)

	return rows
}

// Rank calculates the table and applies the named tie-breakers in one step.
func Rank(results []Result, teamIDs []uuid.UUID, scoring tournament.Scoring, ruleNames []string, rng *rand.Rand) ([]Row, error) {
	return ApplyTieBreakers(Calculate(results, teamIDs, scoring), ruleNames, results, rng)
}

func assignRanks(rows []Row) {
	for i := range rows {
		rows[i].Rank = i + 1
	}
}

package tournament

import (
	"time"

	"github.com/google/uuid"
)

type FixtureStatus string

const (
	FixtureUpcoming  FixtureStatus = "upcoming"
	FixtureCompleted FixtureStatus = "completed"
	FixtureCancelled FixtureStatus = "cancelled"
)

type Fixture struct {
	ID      uuid.UUID  `db:"id" json:"id"`
	StageID uuid.UUID  `db:"stage_id" json:"stage_id"`
	GroupID *uuid.UUID `db:"group_id" json:"group_id"`

	// Position in the stage for reconstructing rounds and bracket slots
	Round      int `db:"round" json:"round"`
	MatchOrder int `db:"match_order" json:"match_order"`

	FirstTeamID  uuid.UUID  `db:"first_team_id" json:"first_team_id"`
	SecondTeamID *uuid.UUID `db:"second_team_id" json:"second_team_id"`
	IsBye        bool       `db:"is_bye" json:"is_bye"`
	IsSecondLeg  bool       `db:"is_second_leg" json:"is_second_leg"`

	StartsAt        time.Time     `db:"starts_at" json:"starts_at"`
	DurationMinutes int           `db:"duration_minutes" json:"duration_minutes"`
	Status          FixtureStatus `db:"status" json:"status"`
	FirstTeamScore  *int          `db:"first_team_score" json:"first_team_score"`
	SecondTeamScore *int          `db:"second_team_score" json:"second_team_score"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsDecided is true once nothing more can happen to the fixture.
func (f *Fixture) IsDecided() bool {
	return f.Status == FixtureCompleted || f.Status == FixtureCancelled
}

func (f *Fixture) HasResult() bool {
	return f.Status == FixtureCompleted && !f.IsBye && f.SecondTeamID != nil &&
		f.FirstTeamScore != nil && f.SecondTeamScore != nil
}

type Ranking struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	StageID        uuid.UUID  `db:"stage_id" json:"stage_id"`
	GroupID        *uuid.UUID `db:"group_id" json:"group_id,omitempty"`
	TeamID         uuid.UUID  `db:"team_id" json:"team_id"`
	Played         int        `db:"played" json:"played"`
	Wins           int        `db:"wins" json:"wins"`
	Draws          int        `db:"draws" json:"draws"`
	Losses         int        `db:"losses" json:"losses"`
	GoalsFor       int        `db:"goals_for" json:"goals_for"`
	GoalsAgainst   int        `db:"goals_against" json:"goals_against"`
	GoalDifference int        `db:"goal_difference" json:"goal_difference"`
	Points         int        `db:"points" json:"points"`
	Rank           int        `db:"rank" json:"rank"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

package tournament

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

type StageType string

const (
	StageLeague   StageType = "league"
	StageGroup    StageType = "group"
	StageKnockout StageType = "knockout"
	StageSwiss    StageType = "swiss"
)

func (t StageType) Valid() bool {
	switch t {
	case StageLeague, StageGroup, StageKnockout, StageSwiss:
		return true
	}
	return false
}

// Ranked reports whether stages of this type produce a ranking table.
func (t StageType) Ranked() bool {
	return t != StageKnockout
}

type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageActive    StageStatus = "active"
	StageCompleted StageStatus = "completed"
	StageCancelled StageStatus = "cancelled"
)

type StageSettings struct {
	MatchDurationMinutes int        `json:"match_duration,omitempty"`
	MatchIntervalMinutes int        `json:"match_interval,omitempty"`
	StartTime            *time.Time `json:"start_time,omitempty"`
	Scoring              *Scoring   `json:"scoring,omitempty"`
	TieBreakers          []string   `json:"tie_breakers,omitempty"`

	// Round-robin passes for league/group stages, number of rounds for Swiss.
	Rounds          int  `json:"rounds,omitempty"`
	ReverseHomeAway bool `json:"reverse_home_away,omitempty"`

	// Knockout ties are played home and away.
	TwoLegged bool `json:"two_legged,omitempty"`
}

func (s StageSettings) Value() (driver.Value, error) { return jsonValue(s) }
func (s *StageSettings) Scan(src any) error          { return scanJSON(src, s) }

type Stage struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	TournamentID uuid.UUID     `db:"tournament_id" json:"tournament_id"`
	Name         string        `db:"name" json:"name"`
	Order        int           `db:"stage_order" json:"order"`
	Type         StageType     `db:"stage_type" json:"stage_type"`
	Settings     StageSettings `db:"settings" json:"settings"`
	Status       StageStatus   `db:"status" json:"status"`
	NextStageID  *uuid.UUID    `db:"next_stage_id" json:"next_stage_id"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

func (s *Stage) IsTerminal() bool {
	return s.Status == StageCompleted || s.Status == StageCancelled
}

// EffectiveScoring resolves scoring from the stage, then the tournament, then the default.
func EffectiveScoring(t Settings, s StageSettings) Scoring {
	if s.Scoring != nil {
		return *s.Scoring
	}
	if t.Scoring != nil {
		return *t.Scoring
	}
	return DefaultScoring
}

func EffectiveTieBreakers(t Settings, s StageSettings) []string {
	if len(s.TieBreakers) > 0 {
		return s.TieBreakers
	}
	return t.TieBreakers
}

type Group struct {
	ID       uuid.UUID `db:"id" json:"id"`
	StageID  uuid.UUID `db:"stage_id" json:"stage_id"`
	Name     string    `db:"name" json:"name"`
	Position int       `db:"position" json:"position"`
}

// StageTeam assigns a team to a stage, and optionally to one of its groups.
type StageTeam struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	StageID   uuid.UUID  `db:"stage_id" json:"stage_id"`
	GroupID   *uuid.UUID `db:"group_id" json:"group_id"`
	TeamID    uuid.UUID  `db:"team_id" json:"team_id"`
	Seed      int        `db:"seed" json:"seed"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

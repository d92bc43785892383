package tournament

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentPending   TournamentStatus = "pending"
	TournamentActive    TournamentStatus = "active"
	TournamentCompleted TournamentStatus = "completed"
	TournamentCancelled TournamentStatus = "cancelled"
)

type TournamentType string

const (
	SingleSession TournamentType = "single_session"
	MultiStage    TournamentType = "multi_stage"
)

func (t TournamentType) Valid() bool {
	return t == SingleSession || t == MultiStage
}

// Scoring is the number of points awarded per result.
type Scoring struct {
	Win  int `json:"win"`
	Draw int `json:"draw"`
	Loss int `json:"loss"`
}

var DefaultScoring = Scoring{Win: 3, Draw: 1, Loss: 0}

type Settings struct {
	Scoring     *Scoring `json:"scoring,omitempty"`
	TieBreakers []string `json:"tie_breakers,omitempty"`
}

func (s Settings) Value() (driver.Value, error) { return jsonValue(s) }
func (s *Settings) Scan(src any) error          { return scanJSON(src, s) }

type Tournament struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	Name      string           `db:"name" json:"name"`
	Type      TournamentType   `db:"tournament_type" json:"type"`
	Status    TournamentStatus `db:"status" json:"status"`
	Settings  Settings         `db:"settings" json:"settings"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

func (t *Tournament) IsFinished() bool {
	return t.Status == TournamentCompleted || t.Status == TournamentCancelled
}

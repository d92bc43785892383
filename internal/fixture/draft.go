// Package fixture generates pairings for round-robin, knockout and Swiss
// stages. Generators are pure functions over team ID lists; scheduling and
// persistence happen in the service layer.
package fixture

import (
	"bytes"

	"github.com/google/uuid"
)

// Draft is a generated pairing that has not been scheduled yet.
type Draft struct {
	HomeTeamID  uuid.UUID  `json:"home_team_id"`
	AwayTeamID  *uuid.UUID `json:"away_team_id"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
	Round       int        `json:"round"`
	IsBye       bool       `json:"is_bye,omitempty"`
	IsSecondLeg bool       `json:"is_second_leg,omitempty"`

	// Position within the round, 1-based. Knockout drafts use the bracket
	// position so later rounds can be rebuilt from results.
	Slot int `json:"slot"`

	// Set when a Swiss pairing had to repeat an earlier match.
	ForcedRematch bool `json:"forced_rematch,omitempty"`
}

type pairKey [2]uuid.UUID

// keyOf is order-independent: (a, b) and (b, a) give the same key.
func keyOf(a, b uuid.UUID) pairKey {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return pairKey{a, b}
}

package tournament

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

type RuleType string

const (
	RuleTopN      RuleType = "top_n"
	RulePlayoff   RuleType = "playoff"
	RuleThreshold RuleType = "threshold"
	RuleManual    RuleType = "manual"
)

// RuleConfig holds the parameters of every rule type; each handler reads the
// fields it needs.
type RuleConfig struct {
	N        int         `json:"n,omitempty"`
	From     int         `json:"from,omitempty"`
	To       int         `json:"to,omitempty"`
	Points   *int        `json:"points,omitempty"`
	PerGroup bool        `json:"per_group,omitempty"`
	TeamIDs  []uuid.UUID `json:"team_ids,omitempty"`
}

func (c RuleConfig) Value() (driver.Value, error) { return jsonValue(c) }
func (c *RuleConfig) Scan(src any) error          { return scanJSON(src, c) }

type StagePromotion struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	StageID     uuid.UUID  `db:"stage_id" json:"stage_id"`
	NextStageID *uuid.UUID `db:"next_stage_id" json:"next_stage_id"`
	RuleType    RuleType   `db:"rule_type" json:"rule_type"`
	RuleConfig  RuleConfig `db:"rule_config" json:"rule_config"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

type AuditAction string

const (
	AuditPromote  AuditAction = "promote"
	AuditRollback AuditAction = "rollback"
)

// SeedChange records the placement a team already had in the next stage before
// a promotion overwrote it.
type SeedChange struct {
	TeamID          uuid.UUID  `json:"team_id"`
	PreviousSeed    int        `json:"previous_seed"`
	PreviousGroupID *uuid.UUID `json:"previous_group_id,omitempty"`
}

type AuditResult struct {
	PromotedTeamIDs []uuid.UUID `json:"promoted_team_ids"`
	NextStageID     *uuid.UUID  `json:"next_stage_id"`
	ManualOverride  bool        `json:"manual_override"`

	CreatedTeamIDs      []uuid.UUID  `json:"created_team_ids,omitempty"`
	ReseededTeams       []SeedChange `json:"reseeded_teams,omitempty"`
	PreviousStageStatus StageStatus  `json:"previous_stage_status,omitempty"`
	RolledBackAuditID   *uuid.UUID   `json:"rolled_back_audit_id,omitempty"`
}

func (r AuditResult) Value() (driver.Value, error) { return jsonValue(r) }
func (r *AuditResult) Scan(src any) error          { return scanJSON(src, r) }

// PromotionAudit is an append-only log row. Rollbacks add a new row that points
// at the promotion they undo.
type PromotionAudit struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	StageID     uuid.UUID   `db:"stage_id" json:"stage_id"`
	Action      AuditAction `db:"action" json:"action"`
	TriggeredBy string      `db:"triggered_by" json:"triggered_by"`
	Simulated   bool        `db:"simulated" json:"simulated"`
	Result      AuditResult `db:"result" json:"result"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// EffectivePromotion derives the promotion currently in force from an audit
// log in insertion order: the last executed promotion that no later rollback
// undid. It returns nil when there is none.
func EffectivePromotion(audits []PromotionAudit) *PromotionAudit {
	rolledBack := make(map[uuid.UUID]bool)
	for _, a := range audits {
		if a.Action == AuditRollback && a.Result.RolledBackAuditID != nil {
			rolledBack[*a.Result.RolledBackAuditID] = true
		}
	}
	for i := len(audits) - 1; i >= 0; i-- {
		a := audits[i]
		if a.Action != AuditPromote || a.Simulated {
			continue
		}
		if rolledBack[a.ID] {
			return nil
		}
		return &audits[i]
	}
	return nil
}

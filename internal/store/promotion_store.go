package store

import (
	"context"

	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (s *TournamentStore) CreatePromotionRule(ctx context.Context, tx *sqlx.Tx, p *tournament.StagePromotion) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO stage_promotions (id, stage_id, next_stage_id, rule_type, rule_config)
        VALUES (:id, :stage_id, :next_stage_id, :rule_type, :rule_config)`, p)
	return err
}

// GetPromotionRule returns ErrMissingPromotionRule when the stage has none.
func (s *TournamentStore) GetPromotionRule(ctx context.Context, q sqlx.QueryerContext, stageID uuid.UUID) (*tournament.StagePromotion, error) {
	var p tournament.StagePromotion
	err := sqlx.GetContext(ctx, q, &p, "SELECT * FROM stage_promotions WHERE stage_id = ?", stageID)
	if err != nil {
		return nil, notFound(err, tournament.ErrMissingPromotionRule)
	}
	return &p, nil
}

func (s *TournamentStore) CreateAudit(ctx context.Context, tx *sqlx.Tx, a *tournament.PromotionAudit) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO promotion_audits (id, stage_id, action, triggered_by, simulated, result)
        VALUES (:id, :stage_id, :action, :triggered_by, :simulated, :result)`, a)
	return err
}

func (s *TournamentStore) GetAudit(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*tournament.PromotionAudit, error) {
	var a tournament.PromotionAudit
	err := sqlx.GetContext(ctx, q, &a, "SELECT * FROM promotion_audits WHERE id = ?", id)
	if err != nil {
		return nil, notFound(err, tournament.ErrAuditNotFound)
	}
	return &a, nil
}

// ListAudits returns the stage's audit log in insertion order.
func (s *TournamentStore) ListAudits(ctx context.Context, q sqlx.QueryerContext, stageID uuid.UUID) ([]tournament.PromotionAudit, error) {
	var audits []tournament.PromotionAudit
	err := sqlx.SelectContext(ctx, q, &audits, "SELECT * FROM promotion_audits WHERE stage_id = ? ORDER BY rowid ASC", stageID)
	return audits, err
}

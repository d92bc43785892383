package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/op-tournament-engine/internal/promotion"
	"github.com/AdamBeresnev/op-tournament-engine/internal/store"
	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/AdamBeresnev/op-tournament-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PromotionService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewPromotionService(db *sqlx.DB, store *store.TournamentStore) *PromotionService {
	return &PromotionService{db: db, store: store}
}

// PromotionResult is what a simulation or execution decided.
type PromotionResult struct {
	PromotedTeamIDs []uuid.UUID `json:"promoted_team_ids"`
	NextStageID     *uuid.UUID  `json:"next_stage_id"`
	Simulated       bool        `json:"simulated"`
	AuditID         *uuid.UUID  `json:"audit_id,omitempty"`
}

// OverrideEntry replaces the rule's selection. A zero Seed uses the team's
// position in the override list.
type OverrideEntry struct {
	TeamID uuid.UUID `json:"team_id"`
	Seed   int       `json:"seed,omitempty"`
}

type SimulateOptions struct {
	// Record appends a simulated audit row. Nothing else is written.
	Record      bool
	TriggeredBy string
}

type ExecuteOptions struct {
	Override    []OverrideEntry
	TriggeredBy string
}

// SimulatePromotion runs the stage's promotion rule against the stored
// rankings and returns the teams that would advance.
func (s *PromotionService) SimulatePromotion(ctx context.Context, stageID uuid.UUID, opts SimulateOptions) (*PromotionResult, error) {
	if !opts.Record {
		return s.simulate(ctx, s.db, stageID)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result, err := s.simulate(ctx, tx, stageID)
	if err != nil {
		return nil, err
	}

	audit := &tournament.PromotionAudit{
		ID:          uuid.New(),
		StageID:     stageID,
		Action:      tournament.AuditPromote,
		TriggeredBy: opts.TriggeredBy,
		Simulated:   true,
		Result: tournament.AuditResult{
			PromotedTeamIDs: result.PromotedTeamIDs,
			NextStageID:     result.NextStageID,
		},
	}
	if err := s.store.CreateAudit(ctx, tx, audit); err != nil {
		return nil, fmt.Errorf("failed to create audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	result.AuditID = &audit.ID
	return result, nil
}

func (s *PromotionService) simulate(ctx context.Context, q sqlx.QueryerContext, stageID uuid.UUID) (*PromotionResult, error) {
	stage, err := s.store.GetStage(ctx, q, stageID)
	if err != nil {
		return nil, err
	}
	rule, err := s.store.GetPromotionRule(ctx, q, stageID)
	if err != nil {
		return nil, err
	}

	winners, err := s.selectWinners(ctx, q, stage, rule)
	if err != nil {
		return nil, err
	}

	return &PromotionResult{PromotedTeamIDs: winners, NextStageID: rule.NextStageID, Simulated: true}, nil
}

// selectWinners runs the rule handler and checks the winners belong to the stage.
func (s *PromotionService) selectWinners(ctx context.Context, q sqlx.QueryerContext, stage *tournament.Stage, rule *tournament.StagePromotion) ([]uuid.UUID, error) {
	handler, err := promotion.HandlerFor(rule.RuleType)
	if err != nil {
		return nil, err
	}

	rankings, err := s.store.ListRankings(ctx, q, stage.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings: %w", err)
	}

	winners, err := handler.SelectWinners(*stage, rankings, rule.RuleConfig)
	if err != nil {
		return nil, err
	}
	if err := s.checkMembers(ctx, q, stage.ID, winners); err != nil {
		return nil, err
	}
	return winners, nil
}

func (s *PromotionService) checkMembers(ctx context.Context, q sqlx.QueryerContext, stageID uuid.UUID, teamIDs []uuid.UUID) error {
	teams, err := s.store.ListStageTeams(ctx, q, stageID)
	if err != nil {
		return fmt.Errorf("failed to list stage teams: %w", err)
	}
	members := make(map[uuid.UUID]bool, len(teams))
	for _, t := range teams {
		members[t.TeamID] = true
	}
	for _, id := range teamIDs {
		if !members[id] {
			return fmt.Errorf("%w: %s", tournament.ErrTeamNotInStage, id)
		}
	}
	return nil
}

// ExecutePromotion advances the selected teams into the next stage, writes the
// audit row and completes the stage, all in one transaction.
func (s *PromotionService) ExecutePromotion(ctx context.Context, stageID uuid.UUID, opts ExecuteOptions) (*PromotionResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stage, err := lockStage(ctx, tx, s.store, stageID)
	if err != nil {
		return nil, err
	}
	if stage.Status != tournament.StageActive && stage.Status != tournament.StageCompleted {
		return nil, tournament.ErrInvalidStageStatus
	}

	rule, err := s.store.GetPromotionRule(ctx, tx, stageID)
	if err != nil {
		return nil, err
	}
	if rule.NextStageID == nil {
		return nil, tournament.ErrMissingNextStage
	}

	undecided, err := s.store.CountUndecidedFixtures(ctx, tx, stageID)
	if err != nil {
		return nil, err
	}
	if undecided > 0 {
		return nil, fmt.Errorf("%w: %d left", tournament.ErrIncompleteFixtures, undecided)
	}

	audits, err := s.store.ListAudits(ctx, tx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}
	if tournament.EffectivePromotion(audits) != nil {
		return nil, tournament.ErrAlreadyPromoted
	}

	next, err := s.nextStage(ctx, tx, stage, *rule.NextStageID)
	if err != nil {
		return nil, err
	}

	winners, requested, err := s.resolveWinners(ctx, tx, stage, rule, opts.Override)
	if err != nil {
		return nil, err
	}

	result := tournament.AuditResult{
		PromotedTeamIDs:     winners,
		NextStageID:         &next.ID,
		ManualOverride:      len(opts.Override) > 0,
		PreviousStageStatus: stage.Status,
	}
	if err := s.placeTeams(ctx, tx, next.ID, winners, requested, &result); err != nil {
		return nil, err
	}

	audit := &tournament.PromotionAudit{
		ID:          uuid.New(),
		StageID:     stageID,
		Action:      tournament.AuditPromote,
		TriggeredBy: opts.TriggeredBy,
		Result:      result,
	}
	if err := s.store.CreateAudit(ctx, tx, audit); err != nil {
		return nil, fmt.Errorf("failed to create audit: %w", err)
	}

	if stage.Status != tournament.StageCompleted {
		if err := s.store.UpdateStageStatus(ctx, tx, stageID, tournament.StageCompleted); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("Promotion executed", "stage_id", stageID, "next_stage_id", next.ID,
		"teams", len(winners), "manual_override", result.ManualOverride, "audit_id", audit.ID)
	return &PromotionResult{PromotedTeamIDs: winners, NextStageID: &next.ID, AuditID: &audit.ID}, nil
}

// nextStage loads the promotion target and checks it can still take teams.
func (s *PromotionService) nextStage(ctx context.Context, tx *sqlx.Tx, stage *tournament.Stage, nextID uuid.UUID) (*tournament.Stage, error) {
	next, err := s.store.GetStage(ctx, tx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to get next stage: %w", err)
	}
	if next.TournamentID != stage.TournamentID || next.ID == stage.ID {
		return nil, tournament.ErrNextStageMismatch
	}
	if next.Status != tournament.StagePending {
		return nil, fmt.Errorf("%w: next stage is %s", tournament.ErrInvalidStageStatus, next.Status)
	}

	fixtures, err := s.store.ListFixtures(ctx, tx, next.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures: %w", err)
	}
	if len(fixtures) > 0 {
		return nil, tournament.ErrStageHasFixtures
	}
	return next, nil
}

// resolveWinners returns the promoted teams in order with the seeds asked for
// them in the next stage, zero meaning none. An override replaces the rule's
// selection.
func (s *PromotionService) resolveWinners(ctx context.Context, tx *sqlx.Tx, stage *tournament.Stage, rule *tournament.StagePromotion, override []OverrideEntry) ([]uuid.UUID, []int, error) {
	if len(override) == 0 {
		winners, err := s.selectWinners(ctx, tx, stage, rule)
		if err != nil {
			return nil, nil, err
		}
		return winners, make([]int, len(winners)), nil
	}

	winners := make([]uuid.UUID, 0, len(override))
	seeds := make([]int, 0, len(override))
	seen := make(map[uuid.UUID]bool, len(override))
	for _, o := range override {
		if seen[o.TeamID] {
			return nil, nil, fmt.Errorf("%w: %s", tournament.ErrDuplicateTeam, o.TeamID)
		}
		seen[o.TeamID] = true

		winners = append(winners, o.TeamID)
		seeds = append(seeds, o.Seed)
	}

	if err := s.checkMembers(ctx, tx, stage.ID, winners); err != nil {
		return nil, nil, err
	}
	return winners, seeds, nil
}

// placeTeams upserts the winners into the next stage and records in result
// what a rollback has to undo.
func (s *PromotionService) placeTeams(ctx context.Context, tx *sqlx.Tx, nextID uuid.UUID, winners []uuid.UUID, requested []int, result *tournament.AuditResult) error {
	existing, err := s.store.ListStageTeams(ctx, tx, nextID)
	if err != nil {
		return fmt.Errorf("failed to list next stage teams: %w", err)
	}
	current := make(map[uuid.UUID]tournament.StageTeam, len(existing))
	for _, t := range existing {
		current[t.TeamID] = t
	}

	seeds, err := placementSeeds(existing, winners, requested)
	if err != nil {
		return err
	}

	var created []tournament.StageTeam
	for i, teamID := range winners {
		if prev, ok := current[teamID]; ok {
			result.ReseededTeams = append(result.ReseededTeams, tournament.SeedChange{
				TeamID:          teamID,
				PreviousSeed:    prev.Seed,
				PreviousGroupID: prev.GroupID,
			})
			if err := s.store.UpdateStageTeamPlacement(ctx, tx, nextID, teamID, seeds[i], prev.GroupID); err != nil {
				return fmt.Errorf("failed to reseed team: %w", err)
			}
			continue
		}

		created = append(created, tournament.StageTeam{
			ID:      uuid.New(),
			StageID: nextID,
			TeamID:  teamID,
			Seed:    seeds[i],
		})
		result.CreatedTeamIDs = append(result.CreatedTeamIDs, teamID)
	}

	if err := s.store.CreateStageTeams(ctx, tx, created); err != nil {
		return fmt.Errorf("failed to create stage teams: %w", err)
	}
	return nil
}

// placementSeeds resolves the seeds promoted teams take in the next stage.
// Teams already there that are not being promoted keep their seeds. Requested
// seeds must be free; the rest follow the highest kept seed in promotion
// order, skipping seeds already handed out.
func placementSeeds(existing []tournament.StageTeam, winners []uuid.UUID, requested []int) ([]int, error) {
	promoted := make(map[uuid.UUID]bool, len(winners))
	for _, id := range winners {
		promoted[id] = true
	}

	taken := make(map[int]bool, len(existing)+len(winners))
	next := 1
	for _, t := range existing {
		if promoted[t.TeamID] {
			continue
		}
		taken[t.Seed] = true
		next = max(next, t.Seed+1)
	}

	seeds := make([]int, len(winners))
	for i, seed := range requested {
		if seed == 0 {
			continue
		}
		if taken[seed] {
			return nil, fmt.Errorf("%w: %d", tournament.ErrDuplicateSeed, seed)
		}
		taken[seed] = true
		seeds[i] = seed
	}
	for i := range seeds {
		if seeds[i] != 0 {
			continue
		}
		for taken[next] {
			next++
		}
		seeds[i] = next
		taken[next] = true
	}
	return seeds, nil
}

// RollbackPromotion undoes the stage's effective promotion: teams it added to
// the next stage are removed, teams it reseeded get their old placement back,
// and the stage returns to active. A rollback audit row is appended; the
// original row stays.
func (s *PromotionService) RollbackPromotion(ctx context.Context, auditID uuid.UUID, triggeredBy string) (*tournament.PromotionAudit, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	target, err := s.store.GetAudit(ctx, tx, auditID)
	if err != nil {
		return nil, err
	}
	if target.Action != tournament.AuditPromote || target.Simulated || target.Result.NextStageID == nil {
		return nil, tournament.ErrAuditNotRollbackable
	}

	stage, err := lockStage(ctx, tx, s.store, target.StageID)
	if err != nil {
		return nil, err
	}

	audits, err := s.store.ListAudits(ctx, tx, stage.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}
	for _, a := range audits {
		if a.Action == tournament.AuditRollback && a.Result.RolledBackAuditID != nil && *a.Result.RolledBackAuditID == auditID {
			return nil, tournament.ErrAuditAlreadyRolledBack
		}
	}
	if effective := tournament.EffectivePromotion(audits); effective == nil || effective.ID != auditID {
		return nil, tournament.ErrAuditNotRollbackable
	}
	if stage.Status != tournament.StageCompleted {
		return nil, fmt.Errorf("%w: stage is %s", tournament.ErrInvalidStageStatus, stage.Status)
	}

	nextID := *target.Result.NextStageID
	if _, err := s.nextStage(ctx, tx, stage, nextID); err != nil {
		return nil, err
	}

	stages, err := s.store.ListStages(ctx, tx, stage.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	for _, other := range stages {
		if other.Status == tournament.StageActive {
			return nil, fmt.Errorf("%w: %s", tournament.ErrActiveStageExists, other.Name)
		}
	}

	if err := s.store.DeleteStageTeams(ctx, tx, nextID, target.Result.CreatedTeamIDs); err != nil {
		return nil, fmt.Errorf("failed to remove promoted teams: %w", err)
	}
	for _, change := range target.Result.ReseededTeams {
		if err := s.store.UpdateStageTeamPlacement(ctx, tx, nextID, change.TeamID, change.PreviousSeed, change.PreviousGroupID); err != nil {
			return nil, fmt.Errorf("failed to restore team placement: %w", err)
		}
	}

	if err := s.store.UpdateStageStatus(ctx, tx, stage.ID, tournament.StageActive); err != nil {
		return nil, err
	}

	rollback := &tournament.PromotionAudit{
		ID:          uuid.New(),
		StageID:     stage.ID,
		Action:      tournament.AuditRollback,
		TriggeredBy: triggeredBy,
		Result: tournament.AuditResult{
			PromotedTeamIDs:     target.Result.PromotedTeamIDs,
			NextStageID:         utils.Ptr(nextID),
			PreviousStageStatus: stage.Status,
			RolledBackAuditID:   utils.Ptr(auditID),
		},
	}
	if err := s.store.CreateAudit(ctx, tx, rollback); err != nil {
		return nil, fmt.Errorf("failed to create audit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("Promotion rolled back", "stage_id", stage.ID, "audit_id", auditID, "rollback_audit_id", rollback.ID)
	return rollback, nil
}

func (s *PromotionService) ListAudits(ctx context.Context, stageID uuid.UUID) ([]tournament.PromotionAudit, error) {
	if _, err := s.store.GetStage(ctx, s.db, stageID); err != nil {
		return nil, err
	}
	return s.store.ListAudits(ctx, s.db, stageID)
}

// EffectivePromotion returns the promotion currently in force for the stage,
// or nil.
func (s *PromotionService) EffectivePromotion(ctx context.Context, stageID uuid.UUID) (*tournament.PromotionAudit, error) {
	audits, err := s.ListAudits(ctx, stageID)
	if err != nil {
		return nil, err
	}
	return tournament.EffectivePromotion(audits), nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AdamBeresnev/op-tournament-engine/internal/promotion"
	"github.com/AdamBeresnev/op-tournament-engine/internal/ranking"
	"github.com/AdamBeresnev/op-tournament-engine/internal/store"
	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/AdamBeresnev/op-tournament-engine/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore) *TournamentService {
	return &TournamentService{db: db, store: store}
}

type PromotionInput struct {
	RuleType   tournament.RuleType   `json:"rule_type"`
	RuleConfig tournament.RuleConfig `json:"rule_config"`
}

type StageInput struct {
	Name      string                   `json:"name"`
	Type      tournament.StageType     `json:"stage_type"`
	Settings  tournament.StageSettings `json:"settings"`
	Groups    []string                 `json:"groups,omitempty"`
	Promotion *PromotionInput          `json:"promotion,omitempty"`
}

type TournamentInput struct {
	Name     string                    `json:"name"`
	Type     tournament.TournamentType `json:"type"`
	Settings tournament.Settings       `json:"settings"`
	Stages   []StageInput              `json:"stages"`
}

type TournamentData struct {
	Tournament *tournament.Tournament `json:"tournament"`
	Stages     []tournament.Stage     `json:"stages"`
}

func validateInput(input TournamentInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", tournament.ErrInvalidTournament)
	}
	if !input.Type.Valid() {
		return fmt.Errorf("%w: %q", tournament.ErrUnknownTournamentType, input.Type)
	}
	if len(input.Stages) == 0 {
		return fmt.Errorf("%w: at least one stage is required", tournament.ErrInvalidTournament)
	}
	if input.Type == tournament.SingleSession && len(input.Stages) > 1 {
		return fmt.Errorf("%w: a single session tournament has one stage", tournament.ErrInvalidTournament)
	}
	if _, err := ranking.ParseRules(input.Settings.TieBreakers); err != nil {
		return err
	}

	for _, st := range input.Stages {
		if !st.Type.Valid() {
			return fmt.Errorf("%w: %q", tournament.ErrUnknownStageType, st.Type)
		}
		if _, err := ranking.ParseRules(st.Settings.TieBreakers); err != nil {
			return err
		}
		if st.Settings.MatchDurationMinutes < 0 || st.Settings.MatchIntervalMinutes < 0 || st.Settings.Rounds < 0 {
			return fmt.Errorf("%w: negative value in stage %q", tournament.ErrInvalidStageSettings, st.Name)
		}
		if st.Promotion != nil {
			if _, err := promotion.HandlerFor(st.Promotion.RuleType); err != nil {
				return err
			}
		}
	}
	return nil
}

// CreateTournament stores a tournament with its stages, groups and promotion
// rules. Each stage promotes into the one after it.
func (s *TournamentService) CreateTournament(ctx context.Context, input TournamentInput) (*TournamentData, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	t := &tournament.Tournament{
		ID:       uuid.New(),
		Name:     input.Name,
		Type:     input.Type,
		Status:   tournament.TournamentPending,
		Settings: input.Settings,
	}
	if err := s.store.CreateTournament(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	stages := make([]tournament.Stage, len(input.Stages))
	for i, in := range input.Stages {
		stages[i] = tournament.Stage{
			ID:           uuid.New(),
			TournamentID: t.ID,
			Name:         in.Name,
			Order:        i + 1,
			Type:         in.Type,
			Settings:     in.Settings,
			Status:       tournament.StagePending,
		}
	}
	for i := 0; i+1 < len(stages); i++ {
		stages[i].NextStageID = utils.Ptr(stages[i+1].ID)
	}
	if err := s.store.CreateStages(ctx, tx, stages); err != nil {
		return nil, fmt.Errorf("failed to create stages: %w", err)
	}

	for i, in := range input.Stages {
		groups := make([]tournament.Group, len(in.Groups))
		for j, name := range in.Groups {
			groups[j] = tournament.Group{ID: uuid.New(), StageID: stages[i].ID, Name: name, Position: j + 1}
		}
		if err := s.store.CreateGroups(ctx, tx, groups); err != nil {
			return nil, fmt.Errorf("failed to create groups: %w", err)
		}

		if in.Promotion == nil {
			continue
		}
		rule := &tournament.StagePromotion{
			ID:          uuid.New(),
			StageID:     stages[i].ID,
			NextStageID: stages[i].NextStageID,
			RuleType:    in.Promotion.RuleType,
			RuleConfig:  in.Promotion.RuleConfig,
		}
		if err := s.store.CreatePromotionRule(ctx, tx, rule); err != nil {
			return nil, fmt.Errorf("failed to create promotion rule: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("Tournament created", "tournament_id", t.ID, "stages", len(stages))
	return s.GetTournamentData(ctx, t.ID)
}

func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	t, err := s.store.GetTournament(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	stages, err := s.store.ListStages(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}

	return &TournamentData{Tournament: t, Stages: stages}, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	return s.store.ListTournaments(ctx, s.db)
}

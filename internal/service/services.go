package service

import (
	"github.com/AdamBeresnev/op-tournament-engine/internal/store"
	"github.com/jmoiron/sqlx"
)

// Services bundles the orchestration services over one database.
type Services struct {
	Tournaments *TournamentService
	Stages      *StageService
	Fixtures    *FixtureGenerationService
	Rankings    *RankingService
	Promotions  *PromotionService
}

func NewServices(db *sqlx.DB, opts Options) *Services {
	st := store.NewTournamentStore()
	rankings := NewRankingService(db, st, opts)
	return &Services{
		Tournaments: NewTournamentService(db, st),
		Stages:      NewStageService(db, st),
		Fixtures:    NewFixtureGenerationService(db, st, rankings, opts),
		Rankings:    rankings,
		Promotions:  NewPromotionService(db, st),
	}
}

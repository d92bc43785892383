package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/AdamBeresnev/op-tournament-engine/internal/httputil"
	"github.com/AdamBeresnev/op-tournament-engine/internal/service"
	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type stageTransition func(ctx context.Context, stageID uuid.UUID) (*tournament.Stage, error)

type resultRequest struct {
	HomeScore *int `json:"home_score"`
	AwayScore *int `json:"away_score"`
}

type simulateRequest struct {
	Record      bool   `json:"record"`
	TriggeredBy string `json:"triggered_by"`
}

type executeRequest struct {
	Override    []service.OverrideEntry `json:"override"`
	TriggeredBy string                  `json:"triggered_by"`
}

type rollbackRequest struct {
	TriggeredBy string `json:"triggered_by"`
}

type promotionStatus struct {
	CanPromote bool                       `json:"can_promote"`
	Effective  *tournament.PromotionAudit `json:"effective"`
}

// urlID parses the {id} route parameter, writing a 400 when it is malformed.
func urlID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid "+what+" ID", err)
		return uuid.Nil, false
	}
	return id, true
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return false
	}
	return true
}

func newRouter(svc *service.Services) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/tournaments", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			tournaments, err := svc.Tournaments.ListTournaments(r.Context())
			if err != nil {
				httputil.Error(w, "Failed to list tournaments", err)
				return
			}
			httputil.JSON(w, http.StatusOK, tournaments)
		})

		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var input service.TournamentInput
			if !decode(w, r, &input) {
				return
			}
			data, err := svc.Tournaments.CreateTournament(r.Context(), input)
			if err != nil {
				httputil.Error(w, "Failed to create tournament", err)
				return
			}
			httputil.JSON(w, http.StatusCreated, data)
		})

		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "tournament")
			if !ok {
				return
			}
			data, err := svc.Tournaments.GetTournamentData(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to get tournament", err)
				return
			}
			httputil.JSON(w, http.StatusOK, data)
		})
	})

	r.Route("/stages/{id}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "stage")
			if !ok {
				return
			}
			data, err := svc.Stages.GetStage(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to get stage", err)
				return
			}
			httputil.JSON(w, http.StatusOK, data)
		})

		r.Post("/teams", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "stage")
			if !ok {
				return
			}
			var assignments []service.TeamAssignment
			if !decode(w, r, &assignments) {
				return
			}
			teams, err := svc.Stages.AssignTeams(r.Context(), id, assignments)
			if err != nil {
				httputil.Error(w, "Failed to assign teams", err)
				return
			}
			httputil.JSON(w, http.StatusOK, teams)
		})

		for action, transition := range map[string]stageTransition{
			"activate": svc.Stages.ActivateStage,
			"complete": svc.Stages.CompleteStage,
			"cancel":   svc.Stages.CancelStage,
		} {
			r.Post("/"+action, func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlID(w, r, "stage")
				if !ok {
					return
				}
				stage, err := transition(r.Context(), id)
				if err != nil {
					httputil.Error(w, "Failed to "+action+" stage", err)
					return
				}
				httputil.JSON(w, http.StatusOK, stage)
			})
		}

		r.Get("/fixtures", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "stage")
			if !ok {
				return
			}
			fixtures, err := svc.Fixtures.ListFixtures(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to list fixtures", err)
				return
			}
			httputil.JSON(w, http.StatusOK, fixtures)
		})

		r.Post("/fixtures", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "stage")
			if !ok {
				return
			}
			fixtures, err := svc.Fixtures.GenerateFixtures(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to generate fixtures", err)
				return
			}
			httputil.JSON(w, http.StatusCreated, fixtures)
		})

		r.Get("/rankings", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "stage")
			if !ok {
				return
			}
			rankings, err := svc.Rankings.ListRankings(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to list rankings", err)
				return
			}
			httputil.JSON(w, http.StatusOK, rankings)
		})

		r.Post("/rankings/refresh", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "stage")
			if !ok {
				return
			}
			rankings, err := svc.Rankings.RefreshRankings(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to refresh rankings", err)
				return
			}
			httputil.JSON(w, http.StatusOK, rankings)
		})

		r.Get("/promotion", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "stage")
			if !ok {
				return
			}
			can, err := svc.Stages.CanPromote(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to check promotion", err)
				return
			}
			effective, err := svc.Promotions.EffectivePromotion(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to get promotion", err)
				return
			}
			httputil.JSON(w, http.StatusOK, promotionStatus{CanPromote: can, Effective: effective})
		})

		r.Post("/promotion/simulate", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "stage")
			if !ok {
				return
			}
			var req simulateRequest
			if !decode(w, r, &req) {
				return
			}
			result, err := svc.Promotions.SimulatePromotion(r.Context(), id, service.SimulateOptions{
				Record:      req.Record,
				TriggeredBy: req.TriggeredBy,
			})
			if err != nil {
				httputil.Error(w, "Failed to simulate promotion", err)
				return
			}
			httputil.JSON(w, http.StatusOK, result)
		})

		r.Post("/promotion", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "stage")
			if !ok {
				return
			}
			var req executeRequest
			if !decode(w, r, &req) {
				return
			}
			result, err := svc.Promotions.ExecutePromotion(r.Context(), id, service.ExecuteOptions{
				Override:    req.Override,
				TriggeredBy: req.TriggeredBy,
			})
			if err != nil {
				httputil.Error(w, "Failed to execute promotion", err)
				return
			}
			httputil.JSON(w, http.StatusOK, result)
		})

		r.Get("/promotion/audits", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "stage")
			if !ok {
				return
			}
			audits, err := svc.Promotions.ListAudits(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to list audits", err)
				return
			}
			httputil.JSON(w, http.StatusOK, audits)
		})
	})

	r.Route("/fixtures/{id}", func(r chi.Router) {
		r.Post("/result", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "fixture")
			if !ok {
				return
			}
			var req resultRequest
			if !decode(w, r, &req) {
				return
			}
			if req.HomeScore == nil || req.AwayScore == nil {
				httputil.BadRequest(w, "home_score and away_score are required", nil)
				return
			}
			fixture, err := svc.Fixtures.RecordResult(r.Context(), id, *req.HomeScore, *req.AwayScore)
			if err != nil {
				httputil.Error(w, "Failed to record result", err)
				return
			}
			httputil.JSON(w, http.StatusOK, fixture)
		})

		r.Post("/cancel", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r, "fixture")
			if !ok {
				return
			}
			fixture, err := svc.Fixtures.CancelFixture(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to cancel fixture", err)
				return
			}
			httputil.JSON(w, http.StatusOK, fixture)
		})
	})

	r.Post("/audits/{id}/rollback", func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "audit")
		if !ok {
			return
		}
		var req rollbackRequest
		if !decode(w, r, &req) {
			return
		}
		audit, err := svc.Promotions.RollbackPromotion(r.Context(), id, req.TriggeredBy)
		if err != nil {
			httputil.Error(w, "Failed to roll back promotion", err)
			return
		}
		httputil.JSON(w, http.StatusOK, audit)
	})

	return r
}

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/op-tournament-engine/internal/db"
	"github.com/AdamBeresnev/op-tournament-engine/internal/service"
	"github.com/AdamBeresnev/op-tournament-engine/internal/tournament"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)
	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")
	t.Cleanup(func() { database.Close() })

	return newRouter(service.NewServices(database, service.Options{Rand: service.SeededRand(1)}))
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStageLifecycleOverHTTP(t *testing.T) {
	h := setupRouter(t)

	rec := do(t, h, http.MethodPost, "/tournaments", service.TournamentInput{
		Name: "Cup",
		Type: tournament.MultiStage,
		Stages: []service.StageInput{
			{Name: "League", Type: tournament.StageLeague, Promotion: &service.PromotionInput{
				RuleType: tournament.RuleTopN, RuleConfig: tournament.RuleConfig{N: 1},
			}},
			{Name: "Final", Type: tournament.StageKnockout},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data service.TournamentData
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&data))
	require.Len(t, data.Stages, 2)
	stage := "/stages/" + data.Stages[0].ID.String()

	teams := []service.TeamAssignment{{TeamID: uuid.New()}, {TeamID: uuid.New()}}
	rec = do(t, h, http.MethodPost, stage+"/teams", teams)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, stage+"/activate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, stage+"/fixtures", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var fixtures []tournament.Fixture
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&fixtures))
	require.Len(t, fixtures, 1)

	// Promotion is refused until the fixture is played
	rec = do(t, h, http.MethodPost, stage+"/promotion", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/fixtures/"+fixtures[0].ID.String()+"/result", map[string]int{"home_score": 2, "away_score": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, stage+"/rankings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rankings []tournament.Ranking
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rankings))
	require.Len(t, rankings, 2)
	assert.Equal(t, fixtures[0].FirstTeamID, rankings[0].TeamID)

	rec = do(t, h, http.MethodPost, stage+"/promotion", map[string]string{"triggered_by": "ops"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result service.PromotionResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, []uuid.UUID{fixtures[0].FirstTeamID}, result.PromotedTeamIDs)

	rec = do(t, h, http.MethodPost, "/audits/"+result.AuditID.String()+"/rollback", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestErrorStatuses(t *testing.T) {
	h := setupRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"malformed id", http.MethodGet, "/stages/nope", nil, http.StatusBadRequest},
		{"unknown stage", http.MethodGet, "/stages/" + uuid.NewString(), nil, http.StatusNotFound},
		{"unknown fixture", http.MethodPost, "/fixtures/" + uuid.NewString() + "/cancel", nil, http.StatusNotFound},
		{"missing score", http.MethodPost, "/fixtures/" + uuid.NewString() + "/result", map[string]int{"home_score": 1}, http.StatusBadRequest},
		{"invalid tournament", http.MethodPost, "/tournaments", service.TournamentInput{Type: tournament.MultiStage}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/tournaments", map[string]string{"colour": "red"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

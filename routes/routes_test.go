package routes

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tennis-tournament/brackets"
	"github.com/Dosada05/tennis-tournament/handlers"
	"github.com/Dosada05/tennis-tournament/middleware"
	"github.com/Dosada05/tennis-tournament/repositories"
	"github.com/Dosada05/tennis-tournament/scoring"
	"github.com/Dosada05/tennis-tournament/services"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := brackets.NewHub(logger)
	go hub.Run(ctx)

	store := repositories.NewMemoryStore()
	ts := services.NewTournamentService(store, brackets.NewKnockoutRoundGenerator(), nil, hub, logger)
	ms := services.NewMatchService(store, scoring.NewRules(0), nil, hub, logger)

	router := chi.NewRouter()
	SetupRoutes(router, logger, []string{"https://club.example.com"},
		handlers.NewTournamentHandler(ts),
		handlers.NewMatchHandler(ms),
		handlers.NewWebSocketHandler(hub, ts, []string{"https://club.example.com"}),
	)
	return router
}

func TestSetupRoutes_Health(t *testing.T) {
	router := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestSetupRoutes_SwaggerDoc(t *testing.T) {
	router := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Tennis Tournament API", doc.Info.Title)
	assert.Equal(t, "/api", doc.BasePath)
	assert.Contains(t, doc.Paths, "/matches/report")
	assert.Contains(t, doc.Paths, "/tournaments/{tournamentID}/next-round")
}

func TestSetupRoutes_CORSPreflight(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/matches/report", nil)
	req.Header.Set("Origin", "https://club.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://club.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetupRoutes_GroupsPathIsNotATournamentID(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/tournaments/groups/5/participants", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// пустое тело, но маршрут найден
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

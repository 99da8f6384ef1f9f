package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/tennis-tournament/docs" // регистрирует swagger.json
	"github.com/Dosada05/tennis-tournament/handlers"
	"github.com/Dosada05/tennis-tournament/middleware"
)

const defaultRequestTimeout = 30 * time.Second

func SetupRoutes(
	router chi.Router,
	logger *slog.Logger,
	allowedOrigins []string,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// WebSocket живет вне /api и без таймаута
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(defaultRequestTimeout))

		r.Get("/health", handlers.HealthCheck)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.ListTournaments)
			r.Post("/", tournamentHandler.CreateTournament)
			r.Delete("/", tournamentHandler.DeleteActiveTournaments)
			r.Get("/active", tournamentHandler.ListActiveTournaments)
			r.Get("/archived", tournamentHandler.ListArchivedTournaments)

			r.Put("/groups/{groupID}/participants", tournamentHandler.UpdateGroupParticipants)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", tournamentHandler.GetTournament)
				r.Delete("/", tournamentHandler.DeleteTournament)
				r.Put("/archive", tournamentHandler.ArchiveTournament)
				r.Post("/next-round", tournamentHandler.CreateNextRound)
				r.Get("/ranking", tournamentHandler.GetRanking)
			})
		})

		r.Route("/matches", func(r chi.Router) {
			r.Post("/report", matchHandler.ReportMatch)
			r.Put("/{matchID}", matchHandler.UpdateMatch)
			r.Get("/group/{groupID}", matchHandler.ListGroupMatches)
			r.Get("/group/{groupID}/standings", matchHandler.GetGroupStandings)
		})
	})
}

package routes

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/Dosada05/scoreboard/docs"
	"github.com/Dosada05/scoreboard/handlers"
	"github.com/Dosada05/scoreboard/middleware"
	"github.com/Dosada05/scoreboard/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Roster    *handlers.RosterHandler
	Match     *handlers.MatchHandler
	History   *handlers.HistoryHandler
	GameTypes *handlers.GameTypeHandler
	Storage   *handlers.StorageHandler
	Analytics *handlers.AnalyticsHandler
	Auth      *handlers.AuthHandler
	WebSocket *handlers.WebSocketHandler
}

func SetupRoutes(
	router chi.Router,
	h Handlers,
	authService services.AuthService,
	allowedOrigins []string,
	logger *slog.Logger,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/ws/scoreboard", h.WebSocket.ServeScoreboard)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		// Чтение открыто всем
		r.Get("/roster", h.Roster.GetRoster)
		r.Get("/roster/ready", h.Roster.Readiness)
		r.Get("/match", h.Match.GetMatch)
		r.Get("/match/leader", h.Match.GetLeader)
		r.Get("/match/stats", h.Match.GetStats)
		r.Get("/history", h.History.GetHistory)
		r.Get("/players/stats", h.History.GetAllPlayerStats)
		r.Get("/players/{name}/stats", h.History.GetPlayerStats)
		r.Get("/game-types", h.GameTypes.ListGameTypes)
		r.Get("/storage/info", h.Storage.GetInfo)
		r.Get("/storage/export", h.Storage.Export)
		r.Get("/analytics", h.Analytics.GetAnalytics)
		r.Post("/analytics/visit", h.Analytics.RecordVisit)
		r.Post("/auth/scorekeeper", h.Auth.LoginScorekeeper)

		// Изменения только для счётчика (если защита включена)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireScorekeeper(authService))

			r.Delete("/roster", h.Roster.ClearRoster)
			r.Put("/roster/mode", h.Roster.SetMode)
			r.Post("/roster/players", h.Roster.AddPlayer)
			r.Put("/roster/players", h.Roster.SetPlayers)
			r.Post("/roster/players/reorder", h.Roster.ReorderPlayer)
			r.Delete("/roster/players/index/{index}", h.Roster.RemovePlayerAt)
			// {player} — позиция для PUT и имя для DELETE.
			r.Put("/roster/players/{player}", h.Roster.RenamePlayer)
			r.Delete("/roster/players/{player}", h.Roster.RemovePlayer)
			r.Put("/roster/teams/{side}/name", h.Roster.SetTeamName)
			r.Post("/roster/teams/{side}/players", h.Roster.AddTeamMember)
			r.Delete("/roster/teams/{side}/players/{name}", h.Roster.RemoveTeamMember)

			r.Post("/match", h.Match.StartMatch)
			r.Post("/match/score", h.Match.UpdateScore)
			r.Post("/match/reset", h.Match.ResetScores)
			r.Post("/match/new", h.Match.NewGame)

			r.Delete("/history", h.History.ClearHistory)
			r.Post("/game-types", h.GameTypes.CreateGameType)

			r.Post("/storage/import", h.Storage.Import)
			r.Delete("/storage", h.Storage.ClearAll)
			r.Post("/backups", h.Storage.CreateBackup)
			r.Post("/backups/restore", h.Storage.RestoreBackup)
		})
	})
}

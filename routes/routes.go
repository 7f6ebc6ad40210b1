package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/fight-league/handlers"
	"github.com/Dosada05/fight-league/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Ranking     *handlers.RankingHandler
	Matchmaking *handlers.MatchmakingHandler
	Bout        *handlers.BoutHandler
	Participant *handlers.ParticipantHandler
	Tournament  *handlers.TournamentHandler
	Match       *handlers.MatchHandler
	WebSocket   *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret string
	// MatchmakingRateLimit is requests per minute per client IP; 0 disables it.
	MatchmakingRateLimit int
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret)
	adminOnly := middleware.RequireRole(middleware.RoleAdmin)

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Get("/rankings", h.Ranking.ListRankings)

	router.Route("/fighters/{fighterID}", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RateLimit(opts.MatchmakingRateLimit, time.Minute))
		r.Get("/suggestions", h.Matchmaking.Suggestions)
		r.Post("/auto-assign", h.Matchmaking.AutoAssign)
	})

	router.With(authenticate, adminOnly).Post("/bouts", h.Bout.RecordBout)

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Get("/", h.Tournament.GetByID)
		r.Get("/bracket", h.Tournament.GetBracket)
		r.Get("/participants", h.Participant.List)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/participants", h.Participant.Join)
			r.Delete("/participants", h.Participant.Withdraw)
			r.Post("/participants/check-in", h.Participant.CheckIn)

			r.With(adminOnly).Post("/bracket", h.Tournament.GenerateBracket)
			r.With(adminOnly).Post("/cancel", h.Tournament.Cancel)
		})
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/check-in", h.Match.CheckIn)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/schedule", h.Match.Schedule)
			r.Post("/start", h.Match.Start)
			r.Post("/winner", h.Match.RecordWinner)
			r.Post("/resolve-bye", h.Match.ResolveBye)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)
}

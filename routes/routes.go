package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/pitchside/tournament-engine/docs"
	"github.com/pitchside/tournament-engine/handlers"
)

func SetupRoutes(
	router *chi.Mux,
	allowedOrigins []string,
	teamHandler *handlers.TeamHandler,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	registrationHandler *handlers.RegistrationHandler,
	standingsHandler *handlers.StandingsHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.List)
		r.Post("/", teamHandler.Create)
		r.Route("/{teamID}", func(r chi.Router) {
			r.Get("/", teamHandler.Get)
			r.Put("/", teamHandler.Update)
			r.Delete("/", teamHandler.Delete)
			r.Post("/crest", teamHandler.UploadCrest)
			r.Post("/players", teamHandler.AddPlayer)
		})
	})
	router.Delete("/players/{playerID}", teamHandler.RemovePlayer)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Post("/", tournamentHandler.Create)
		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.Get)
			r.Put("/", tournamentHandler.Update)
			r.Delete("/", tournamentHandler.Delete)
			r.Patch("/status", tournamentHandler.UpdateStatus)
			r.Post("/hero", tournamentHandler.UploadHeroImage)

			r.Post("/fixtures", tournamentHandler.GenerateFixtures)
			r.Get("/fixtures/validate", tournamentHandler.ValidateFixtures)
			r.Post("/fixtures/repair", tournamentHandler.RepairFixtures)
			r.Delete("/fixtures", tournamentHandler.ResetFixtures)
			r.Post("/simulate-round", tournamentHandler.SimulateRound)

			r.Get("/matches", matchHandler.ListByTournament)
			r.Get("/standings", standingsHandler.Get)
			r.Get("/standings/groups", standingsHandler.GetGroups)

			r.Get("/registrations", registrationHandler.ListByTournament)
			r.Post("/registrations", registrationHandler.Register)
		})
	})

	router.Route("/registrations/{registrationID}", func(r chi.Router) {
		r.Post("/payment", registrationHandler.RecordPayment)
		r.Delete("/", registrationHandler.Cancel)
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", matchHandler.Get)
		r.Post("/score", matchHandler.SubmitScore)
		r.Post("/simulate", matchHandler.Simulate)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}

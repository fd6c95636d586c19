package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/courtware/draw-system/handlers"
	"github.com/courtware/draw-system/middleware"
	"github.com/courtware/draw-system/models"
)

// SetupRoutes mounts every HTTP and WebSocket endpoint on the given router.
// Read endpoints are public; mutations require a Bearer token and an
// organizer or referee role.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	entryHandler *handlers.EntryHandler,
	drawHandler *handlers.DrawHandler,
	matchHandler *handlers.MatchHandler,
	scheduleHandler *handlers.ScheduleHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Post("/auth/signup", authHandler.Register)
	router.Post("/auth/signin", authHandler.Login)

	authenticate := middleware.Authenticate(jwtSecret)
	organizerOnly := middleware.Authorize(models.RoleOrganizer)
	matchControl := middleware.Authorize(models.RoleOrganizer, models.RoleReferee)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.GetByID)
		r.Get("/{tournamentID}/divisions", tournamentHandler.ListDivisions)
		r.Get("/{tournamentID}/courts", tournamentHandler.ListCourts)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)

			r.Post("/", tournamentHandler.Create)
			r.Patch("/{tournamentID}/status", tournamentHandler.UpdateStatus)
			r.Put("/{tournamentID}/logo", tournamentHandler.UploadLogo)
			r.Delete("/{tournamentID}", tournamentHandler.Delete)

			r.Post("/{tournamentID}/divisions", tournamentHandler.CreateDivision)
			r.Post("/{tournamentID}/courts", tournamentHandler.AddCourt)
		})
	})

	router.Route("/divisions/{divisionID}", func(r chi.Router) {
		r.Get("/entries", entryHandler.ListByDivision)
		r.Get("/draw", drawHandler.GetFullDraw)
		r.Get("/standings", drawHandler.GetStandings)
		r.Get("/qualifiers", drawHandler.GetQualifiers)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)

			r.Delete("/", tournamentHandler.DeleteDivision)
			r.Post("/entries", entryHandler.Register)

			r.Post("/draw/round-1", drawHandler.GenerateRound1)
			r.Post("/draw/next-round", drawHandler.GenerateNextRound)
			r.Post("/draw/knockout", drawHandler.BuildKnockoutBracket)
			r.Delete("/draw", drawHandler.ResetDraw)
		})
	})

	router.Route("/entries/{entryID}", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(organizerOnly)

		r.Patch("/seed", entryHandler.SetSeed)
		r.Post("/withdraw", entryHandler.Withdraw)
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(organizerOnly)

		r.Post("/teams", entryHandler.CreateTeam)
		r.Delete("/courts/{courtID}", tournamentHandler.RemoveCourt)
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", matchHandler.GetByID)
		r.Get("/assignment/check", scheduleHandler.CheckAssignment)
		r.Get("/overrides", scheduleHandler.ListOverrides)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(matchControl)

			r.Post("/start", matchHandler.Start)
			r.Put("/live-score", matchHandler.UpdateLiveScore)
			r.Post("/score", matchHandler.SubmitScore)
			r.Post("/approve", matchHandler.ApproveResult)
			r.Post("/reject", matchHandler.RejectResult)
			r.Post("/walkover", matchHandler.Walkover)

			r.Put("/assignment", scheduleHandler.AssignCourt)
			r.Delete("/assignment", scheduleHandler.ClearAssignment)
		})
	})

	router.Get("/ws/divisions/{divisionID}", webSocketHandler.ServeDivision)
}

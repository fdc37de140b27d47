package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/eventnav/program-service/internal/auth"
	"github.com/eventnav/program-service/internal/repository"
)

// Deps bundles everything the router needs.
type Deps struct {
	Catalog      *CatalogHandler
	Registration *RegistrationHandler
	Assistant    *AssistantHandler
	Auth         *AuthHandler

	Validator *auth.TelegramValidator
	Users     *repository.UserRepository
	Admin     *auth.AdminAuth
	Log       *zap.Logger
}

// NewRouter builds the full route tree. Public catalog reads need no
// auth; registration and assistant endpoints require a Telegram user;
// everything under /api/admin requires an admin bearer token.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(AccessLog(d.Log))
	r.Use(CORS)

	r.Get("/health", HealthCheck)

	telegramAuth := TelegramAuth(d.Validator, d.Users, d.Log)
	adminAuth := AdminAuth(d.Admin)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/telegram", d.Auth.Telegram)

		// Public catalog.
		r.Get("/events", d.Catalog.ListEvents)
		r.Route("/events/{id}", func(r chi.Router) {
			r.Get("/", d.Catalog.GetEvent)
			r.Get("/sessions", d.Catalog.ListSessions)
			r.Get("/days", d.Catalog.SessionDays)
			r.Get("/types", d.Catalog.SessionTypes)
			r.Get("/speakers", d.Catalog.ListSpeakers)
			r.Get("/locations", d.Catalog.ListLocations)
			r.Get("/map", d.Catalog.EventMap)
			r.Get("/modules", d.Catalog.ListModules)
			r.Get("/news", d.Catalog.ListNews)
		})
		r.Get("/sessions/{id}", d.Catalog.GetSession)
		r.Get("/speakers/{id}", d.Catalog.GetSpeaker)
		r.Get("/locations/{id}", d.Catalog.GetLocation)
		r.Get("/modules/{id}", d.Catalog.GetModule)

		// Attendee endpoints.
		r.Group(func(r chi.Router) {
			r.Use(telegramAuth)
			r.Get("/me", d.Auth.Me)
			r.Post("/sessions/{id}/register", d.Registration.Register)
			r.Post("/sessions/{id}/cancel", d.Registration.Cancel)
			r.Get("/registrations/my", d.Registration.MyRegistrations)
			r.Get("/registrations/{id}/check", d.Registration.Status)
			r.Post("/assistant/chat", d.Assistant.Chat)
		})

		// Admin surface.
		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", d.Auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(adminAuth)
				r.Post("/events", d.Catalog.CreateEvent)
				r.Put("/events/{id}", d.Catalog.UpdateEvent)
				r.Delete("/events/{id}", d.Catalog.DeleteEvent)
				r.Post("/events/{id}/knowledge/refresh", d.Assistant.RefreshChunks)

				r.Post("/sessions", d.Catalog.CreateSession)
				r.Put("/sessions/{id}", d.Catalog.UpdateSession)
				r.Put("/sessions/{id}/capacity", d.Catalog.SetSessionCapacity)
				r.Delete("/sessions/{id}", d.Catalog.DeleteSession)
				r.Get("/sessions/{id}/registrations", d.Registration.SessionRegistrations)
				r.Post("/sessions/{id}/reconcile", d.Registration.Reconcile)

				r.Post("/registrations/{id}/approve", d.Registration.Approve)

				r.Post("/speakers", d.Catalog.CreateSpeaker)
				r.Put("/speakers/{id}", d.Catalog.UpdateSpeaker)
				r.Delete("/speakers/{id}", d.Catalog.DeleteSpeaker)

				r.Post("/locations", d.Catalog.CreateLocation)
				r.Put("/locations/{id}", d.Catalog.UpdateLocation)
				r.Delete("/locations/{id}", d.Catalog.DeleteLocation)

				r.Post("/zones", d.Catalog.CreateZone)
				r.Put("/zones/{id}", d.Catalog.UpdateZone)
				r.Delete("/zones/{id}", d.Catalog.DeleteZone)

				r.Get("/events/{id}/modules", d.Catalog.ListAllModules)
				r.Put("/events/{id}/modules/reorder", d.Catalog.ReorderModules)
				r.Get("/modules/types", d.Catalog.ModuleTypes)
				r.Post("/modules", d.Catalog.CreateModule)
				r.Put("/modules/{id}", d.Catalog.UpdateModule)
				r.Delete("/modules/{id}", d.Catalog.DeleteModule)

				r.Post("/news", d.Catalog.CreateNews)
				r.Put("/news/{id}", d.Catalog.UpdateNews)
				r.Delete("/news/{id}", d.Catalog.DeleteNews)
			})
		})
	})

	return r
}

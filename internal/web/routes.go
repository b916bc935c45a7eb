package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/eventfoto/face-indexer/internal/web/handlers"
	"github.com/eventfoto/face-indexer/internal/web/middleware"
)

func (s *Server) setupRoutes() {
	authHandler := handlers.NewAuthHandler(&s.config.Auth)
	eventsHandler := handlers.NewEventsHandler(s.store, s.cache)
	indexingHandler := handlers.NewIndexingHandler(s.indexing)
	searchHandler := handlers.NewSearchHandler(s.faces, s.store, s.config.Recognition.CollectionPrefix)
	cacheHandler := handlers.NewCacheHandler(s.cache)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		// Guest selfie search, intentionally open: event visitors search
		// for their own photos without an account.
		r.Post("/events/{eventID}/search", searchHandler.Search)

		// Everything else is admin only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.config.Auth.JWTSecret))

			// Event browsing
			r.Get("/events", eventsHandler.List)
			r.Get("/events/{eventID}", eventsHandler.Get)
			r.Get("/events/{eventID}/collections", eventsHandler.Collections)
			r.Get("/events/{eventID}/photos", eventsHandler.Photos)

			// Indexing runs
			r.Post("/events/{eventID}/indexing", indexingHandler.Start)
			r.Get("/events/{eventID}/indexing", indexingHandler.Progress)
			r.Delete("/events/{eventID}/indexing", indexingHandler.Cancel)
			r.Get("/events/{eventID}/statistics", indexingHandler.Statistics)
			r.Post("/events/{eventID}/cleanup", indexingHandler.Cleanup)

			// Cache administration
			r.Get("/cache/stats", cacheHandler.Stats)
			r.Delete("/cache", cacheHandler.Flush)
			r.Delete("/cache/events/{eventID}", cacheHandler.InvalidateEvent)
		})
	})
}

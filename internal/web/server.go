package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/eventfoto/face-indexer/internal/cache"
	"github.com/eventfoto/face-indexer/internal/config"
	"github.com/eventfoto/face-indexer/internal/web/handlers"
	"github.com/eventfoto/face-indexer/internal/web/middleware"
)

// Server is the HTTP front of the indexing service.
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
	indexing   handlers.IndexingService
	store      handlers.EventBrowser
	faces      handlers.FaceSearcher
	cache      *cache.EventCache
}

// NewServer wires the API onto the given collaborators.
func NewServer(
	cfg *config.Config,
	port int,
	host string,
	indexing handlers.IndexingService,
	store handlers.EventBrowser,
	faces handlers.FaceSearcher,
	eventCache *cache.EventCache,
) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:   cfg,
		router:   r,
		indexing: indexing,
		store:    store,
		faces:    faces,
		cache:    eventCache,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.CORS())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // selfie uploads and large listings
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

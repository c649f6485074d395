// Package server provides the HTTP server for the Crate record browser.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/crate/internal/capture"
	"github.com/ayusman/crate/internal/gallery"
	"github.com/ayusman/crate/internal/server/api"
	"github.com/ayusman/crate/internal/store"
)

// Config holds the server configuration. Every field is optional; routes
// whose dependency is missing are not registered.
type Config struct {
	StaticDir string
	Store     *store.Store
	Carousel  *gallery.Carousel
	Camera    capture.Camera
}

// Server represents the HTTP server for the Crate application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if s.config.Store != nil {
		albums := api.NewAlbumHandler(s.config.Store, s.config.Carousel)
		s.mux.Handle("/api/albums", albums)
		s.mux.Handle("/api/albums/", albums)
	}

	if s.config.Carousel != nil {
		s.mux.Handle("/api/navigation", api.NewNavigationHandler(s.config.Carousel))
		s.mux.Handle("GET /api/navigation/ws", NewNavigationFeed(s.config.Carousel))
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Albums *int   `json:"albums,omitempty"`
	Camera *bool  `json:"camera_ready,omitempty"`
}

// handleHealth reports liveness plus the state of whichever dependencies
// are wired. A catalog that cannot be read turns the status into "degraded".
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.start).Round(time.Second).String(),
	}

	if s.config.Store != nil {
		if n, err := s.config.Store.Albums().Count(); err != nil {
			log.Warn().Err(err).Msg("health check could not count albums")
			resp.Status = "degraded"
		} else {
			resp.Albums = &n
		}
	}
	if s.config.Camera != nil {
		ready := s.config.Camera.Ready()
		resp.Camera = &ready
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// HTTPServer returns an *http.Server for addr so the caller controls
// startup and graceful shutdown.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Package server provides the local HTTP surface for Blinker: the JSON API, the
// MJPEG preview and the WebSocket overlay feed.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ayusman/blinker/internal/app"
	"github.com/ayusman/blinker/internal/observe"
	"github.com/ayusman/blinker/internal/server/api"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string

	// App enables the API, stream and overlay routes.
	App *app.App

	// Metrics records request durations; MetricsHandler is mounted at /metrics.
	Metrics        *observe.Metrics
	MetricsHandler http.Handler

	// StreamFPS caps the MJPEG preview rate (default: DefaultStreamFPS).
	StreamFPS int
}

// Server represents the HTTP server for the Blinker application.
type Server struct {
	config  Config
	mux     *http.ServeMux
	handler http.Handler
	hub     *OverlayHub
	start   time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	s.handler = observe.Middleware(config.Metrics)(s.mux)
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.MetricsHandler != nil {
		s.mux.Handle("/metrics", s.config.MetricsHandler)
	}

	if a := s.config.App; a != nil {
		control := api.NewControlHandler(a)
		st := api.NewStatsHandler(a)
		profile := api.NewProfileHandler(a)

		s.mux.HandleFunc("/api/status", control.Status)
		s.mux.HandleFunc("/api/calibrate", control.Calibrate)
		s.mux.HandleFunc("/api/camera/switch", control.SwitchCamera)
		s.mux.HandleFunc("/api/export", control.Export)
		s.mux.HandleFunc("/api/stats", st.Stats)
		s.mux.HandleFunc("/api/stats/reset", st.Reset)
		s.mux.HandleFunc("/api/hits", st.Hits)
		s.mux.HandleFunc("/api/leaderboard", st.Leaderboard)
		s.mux.HandleFunc("/api/profile", profile.Profile)
		s.mux.HandleFunc("/api/settings", profile.Settings)

		s.mux.Handle("/api/stream", NewStreamHandler(a, s.config.StreamFPS))

		s.hub = NewOverlayHub(s.config.Metrics)
		a.OnTick(s.hub.Broadcast)
		s.mux.Handle("/api/overlay", s.hub)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Hub returns the overlay hub, or nil when no App is configured.
func (s *Server) Hub() *OverlayHub {
	return s.hub
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if s.hub != nil {
		s.hub.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

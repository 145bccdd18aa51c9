// Package server exposes the tracking backend over HTTP: exercise catalog,
// live tracker control, video analysis uploads, session history, a WebSocket
// feed of rep updates, and an MJPEG camera preview.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Abhijeet1520/healthy-world/internal/app"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	app    *app.App
	log    *slog.Logger
	router chi.Router
	start  time.Time

	// uploadDir receives uploaded videos; empty means the OS temp dir.
	uploadDir string
}

// Options tunes the server beyond its app dependency.
type Options struct {
	// UploadDir is where uploaded videos are staged; empty uses os.TempDir.
	UploadDir string
	Logger    *slog.Logger
}

// New creates a Server with all routes configured.
func New(application *app.App, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		app:       application,
		log:       log.With("component", "server"),
		router:    chi.NewRouter(),
		start:     time.Now(),
		uploadDir: opts.UploadDir,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/exercises", s.handleListExercises)

	s.router.Post("/api/videos/analyze", s.handleAnalyzeVideo)

	s.router.Route("/api/tracker", func(r chi.Router) {
		r.Get("/", s.handleTrackerStatus)
		r.Post("/start", s.handleTrackerStart)
		r.Post("/stop", s.handleTrackerStop)
		r.Put("/exercise", s.handleTrackerExercise)
	})

	s.router.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Get("/stats", s.handleSessionStats)
		r.Get("/{id}", s.handleGetSession)
		r.Delete("/{id}", s.handleDeleteSession)
	})

	s.router.Get("/api/live", s.handleLive)
	s.router.Get("/api/stream", s.handleStream)
}

// ListenAndServe starts the server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, s)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

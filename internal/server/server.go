package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sandeepkv93/wird/internal/storage"
	"github.com/sandeepkv93/wird/internal/tracker"
)

// Server is the wird HTTP API. It also accepts mirrored records from other
// devices.
type Server struct {
	tracker *tracker.Tracker
	repo    *storage.SQLiteRepository
	router  chi.Router
	logger  *slog.Logger
	version string
	started time.Time
}

func New(tr *tracker.Tracker, repo *storage.SQLiteRepository, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		tracker: tr,
		repo:    repo,
		logger:  logger.With("component", "server"),
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/records", s.handleListRecords)
		r.Get("/streak", s.handleStreak)
		r.Get("/week", s.handleWeek)
		r.Post("/reconcile", s.handleReconcile)
		r.Post("/routines/{routine}/items/{index}/complete", s.handleCompleteItem)
		r.Get("/routines/{routine}/progress", s.handleProgress)
		r.Put("/mirror/records/{date}", s.handleMirror)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.repo.Ping(r.Context()); err != nil {
		dbOK = false
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"today":   s.tracker.Today().String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

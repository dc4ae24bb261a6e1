// Package server exposes the REST API: auth, stats history and trends,
// player tracking, and the leaderboard, all as JSON under /api.
package server

import (
	"database/sql"
	"net/http"
	"strconv"

	"battlefield-tracker/internal/auth"
	"battlefield-tracker/internal/middleware"
	"battlefield-tracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type Server struct {
	userSvc        *service.UserService
	statsSvc       *service.StatsService
	leaderboardSvc *service.LeaderboardService
	authSvc        *auth.Service
	db             *sql.DB
	validate       *validator.Validate
	logger         zerolog.Logger
}

func New(
	userSvc *service.UserService,
	statsSvc *service.StatsService,
	leaderboardSvc *service.LeaderboardService,
	authSvc *auth.Service,
	db *sql.DB,
	logger zerolog.Logger,
) *Server {
	return &Server{
		userSvc:        userSvc,
		statsSvc:       statsSvc,
		leaderboardSvc: leaderboardSvc,
		authSvc:        authSvc,
		db:             db,
		validate:       validator.New(),
		logger:         logger,
	}
}

// Routes builds the API router. CORS and request-id wrapping happen in
// main, around the whole handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Get("/users/{userID}", s.handleGetUser)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(s.authSvc))
			r.Get("/me", s.handleMe)
			r.Put("/profile", s.handleUpdateProfile)
			r.Put("/change-password", s.handleChangePassword)
		})
	})

	r.Route("/api/stats", func(r chi.Router) {
		r.Get("/history/{playerID}", s.handleHistory)
		r.Get("/trends/kd/{playerID}", s.handleKDTrend)
		r.Get("/trends/winrate/{playerID}", s.handleWinRateTrend)
		r.Post("/compare", s.handleCompare)
		r.Post("/track", s.handleTrack)
		r.Get("/tracked", s.handleTracked)
		r.Post("/collect", s.handleCollect)
	})

	r.Route("/api/leaderboard", func(r chi.Router) {
		r.Get("/", s.handleLeaderboard)
		r.Get("/rank/{playerID}", s.handleRank)
		r.Get("/stats", s.handleLeaderboardStats)
		r.Post("/batch-update", s.handleBatchUpdate)
		r.Post("/fetch-multiple", s.handleFetchMultiple)
	})

	r.Get("/health", s.handleHealth)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":   "error",
			"database": "disconnected",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": "connected",
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// queryInt reads an integer query parameter, falling back when absent or
// unparsable.
func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

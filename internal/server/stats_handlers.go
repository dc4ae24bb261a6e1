package server

import (
	"context"
	"net/http"

	"battlefield-tracker/internal/constants"
	"battlefield-tracker/internal/domain"

	"github.com/go-chi/chi/v5"
)

type compareRequest struct {
	PlayerIDs []string `json:"playerIds"`
}

type trackRequest struct {
	PlayerID   string `json:"playerId" validate:"required"`
	PlayerName string `json:"playerName" validate:"required"`
	Platform   string `json:"platform"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	days := queryInt(r, "days", constants.DefaultTrendDays)

	history, err := s.statsSvc.History(r.Context(), playerID, days)
	if err != nil {
		s.logger.Error().Err(err).Str("player_id", playerID).Msg("failed to fetch player history")
		writeError(w, http.StatusInternalServerError, "Failed to fetch player history")
		return
	}
	if history == nil {
		history = []domain.HistoryEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"playerId": playerID,
		"history":  history,
	})
}

func (s *Server) handleKDTrend(w http.ResponseWriter, r *http.Request) {
	s.handleTrend(w, r, s.statsSvc.KDTrend, "Failed to fetch K/D trend")
}

func (s *Server) handleWinRateTrend(w http.ResponseWriter, r *http.Request) {
	s.handleTrend(w, r, s.statsSvc.WinRateTrend, "Failed to fetch win rate trend")
}

func (s *Server) handleTrend(
	w http.ResponseWriter,
	r *http.Request,
	trend func(ctx context.Context, playerID string, days int) ([]domain.TrendPoint, error),
	errMsg string,
) {
	playerID := chi.URLParam(r, "playerID")
	days := queryInt(r, "days", constants.DefaultTrendDays)

	points, err := trend(r.Context(), playerID, days)
	if err != nil {
		s.logger.Error().Err(err).Str("player_id", playerID).Msg("failed to compute trend")
		writeError(w, http.StatusInternalServerError, errMsg)
		return
	}
	if points == nil {
		points = []domain.TrendPoint{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"playerId": playerID,
		"trend":    points,
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.PlayerIDs) < constants.MinComparePlayers {
		writeError(w, http.StatusBadRequest, "Please provide at least 2 player IDs")
		return
	}

	players, err := s.statsSvc.Compare(r.Context(), req.PlayerIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to compare players")
		writeError(w, http.StatusInternalServerError, "Failed to compare players")
		return
	}
	if players == nil {
		players = []domain.HistoryEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"players": players})
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, ok := s.validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, "playerId and playerName are required")
		return
	}

	if err := s.statsSvc.Track(r.Context(), req.PlayerID, req.PlayerName, req.Platform); err != nil {
		s.logger.Error().Err(err).Str("player_id", req.PlayerID).Msg("failed to track player")
		writeError(w, http.StatusInternalServerError, "Failed to track player")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": req.PlayerName + " is now being tracked",
	})
}

func (s *Server) handleTracked(w http.ResponseWriter, r *http.Request) {
	players, err := s.statsSvc.Tracked(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch tracked players")
		writeError(w, http.StatusInternalServerError, "Failed to fetch tracked players")
		return
	}
	if players == nil {
		players = []domain.TrackedPlayer{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"trackedPlayers": players})
}

// handleCollect starts a full sweep in the background and returns
// immediately.
func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	s.statsSvc.TriggerCollection()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Stats collection started",
	})
}

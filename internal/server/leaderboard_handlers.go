package server

import (
	"errors"
	"net/http"

	"battlefield-tracker/internal/constants"
	"battlefield-tracker/internal/domain"
	"battlefield-tracker/internal/service"

	"github.com/go-chi/chi/v5"
)

type batchPlayersRequest struct {
	PlayerIDs []string `json:"playerIds"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	orderBy := r.URL.Query().Get("orderBy")
	limit := queryInt(r, "limit", constants.DefaultLeaderboardSize)
	offset := queryInt(r, "offset", 0)

	entries, orderBy, err := s.leaderboardSvc.List(r.Context(), orderBy, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"leaderboard": entries,
		"orderBy":     orderBy,
		"limit":       limit,
		"offset":      offset,
	})
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	orderBy := r.URL.Query().Get("orderBy")

	rank, orderBy, err := s.leaderboardSvc.Rank(r.Context(), playerID, orderBy)
	if errors.Is(err, service.ErrPlayerNotRanked) {
		writeError(w, http.StatusNotFound, "Player not found in leaderboard")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch player rank")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"playerId": playerID,
		"rank":     rank,
		"orderBy":  orderBy,
	})
}

func (s *Server) handleLeaderboardStats(w http.ResponseWriter, r *http.Request) {
	summary, err := s.leaderboardSvc.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch leaderboard stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"stats": summary})
}

func (s *Server) handleBatchUpdate(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.decodeBatchIDs(w, r)
	if !ok {
		return
	}

	players, err := s.leaderboardSvc.BatchUpdate(r.Context(), ids)
	if errors.Is(err, service.ErrNoPlayerData) {
		writeError(w, http.StatusNotFound, "No player data found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("batch leaderboard update failed")
		writeError(w, http.StatusInternalServerError, "Failed to batch update leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"playersUpdated": len(players),
		"players":        players,
	})
}

func (s *Server) handleFetchMultiple(w http.ResponseWriter, r *http.Request) {
	ids, ok := s.decodeBatchIDs(w, r)
	if !ok {
		return
	}

	players, err := s.leaderboardSvc.FetchMultiple(r.Context(), ids)
	if err != nil {
		s.logger.Error().Err(err).Msg("batch fetch failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch multiple players")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"players": players,
		"count":   len(players),
	})
}

// decodeBatchIDs validates the shared batch request shape: a non-empty
// playerIds array of at most 128 entries.
func (s *Server) decodeBatchIDs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req batchPlayersRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "playerIds array is required")
		return nil, false
	}
	if req.PlayerIDs == nil {
		writeError(w, http.StatusBadRequest, "playerIds array is required")
		return nil, false
	}
	if len(req.PlayerIDs) == 0 {
		writeError(w, http.StatusBadRequest, "playerIds array cannot be empty")
		return nil, false
	}
	if len(req.PlayerIDs) > constants.MaxBatchPlayers {
		writeError(w, http.StatusBadRequest, "Maximum 128 players can be fetched at once")
		return nil, false
	}
	return req.PlayerIDs, true
}

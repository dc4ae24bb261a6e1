// Package normalize maps raw provider payloads onto the internal stat
// record. Field names drift between provider endpoints and versions, so
// each concept resolves through a first-match-wins fallback chain; anything
// missing defaults to zero, or "Unknown" for rank and name fields.
package normalize

import (
	"battlefield-tracker/internal/api"
	"battlefield-tracker/internal/domain"
)

// PlayerStats normalizes a single-player response. Identity comes from the
// caller: the provider response does not reliably echo the player id.
func PlayerStats(playerID, playerName string, raw *api.PlayerStatsResponse) domain.StatsSnapshot {
	s := domain.StatsSnapshot{
		PlayerID:   playerID,
		PlayerName: playerName,
		Rank:       "Unknown",
	}
	if raw == nil {
		return s
	}

	s.Kills = intOrZero(raw.Kills)
	s.Deaths = intOrZero(raw.Deaths)
	s.KDRatio = floatOrZero(raw.KillDeath)
	s.Wins = intOrZero(raw.Wins)
	s.Losses = intOrZero(raw.Losses)
	s.WinRate = floatOrZero(raw.WinPercent)
	s.Score = intOrZero(raw.Score)
	s.TimePlayed = intOrZero(raw.TimePlayed)
	s.Headshots = intOrZero(raw.Headshots)
	s.HeadshotPercentage = floatOrZero(raw.HeadshotPercent)
	s.Accuracy = floatOrZero(raw.Accuracy)

	if raw.Rank != nil {
		s.Level = intOrZero(raw.Rank.Number)
		s.Rank = strOr("Unknown", raw.Rank.Name)
	}

	return s
}

// BatchPlayer normalizes one element of a batch response.
// Fallback order per concept: playerId > id, playerName > name,
// killDeath > kdRatio, winPercent > winRate, rank.number > level,
// rank.name > rankName.
func BatchPlayer(raw api.BatchPlayer) domain.StatsSnapshot {
	var rankNumber *int64
	var rankName *string
	if raw.Rank != nil {
		rankNumber = raw.Rank.Number
		rankName = raw.Rank.Name
	}

	return domain.StatsSnapshot{
		PlayerID:   strOr("", raw.PlayerID, raw.ID),
		PlayerName: strOr("Unknown", raw.PlayerName, raw.Name),
		Kills:      intOrZero(raw.Kills),
		Deaths:     intOrZero(raw.Deaths),
		KDRatio:    firstFloat(raw.KillDeath, raw.KDRatio),
		Wins:       intOrZero(raw.Wins),
		Losses:     intOrZero(raw.Losses),
		WinRate:    firstFloat(raw.WinPercent, raw.WinRate),
		Score:      intOrZero(raw.Score),
		TimePlayed: intOrZero(raw.TimePlayed),
		Level:      firstInt(rankNumber, raw.Level),
		Rank:       strOr("Unknown", rankName, raw.RankName),
	}
}

// BatchPlayers normalizes a whole batch response. A nil slice normalizes to
// an empty result, never an error.
func BatchPlayers(raw []api.BatchPlayer) []domain.StatsSnapshot {
	players := make([]domain.StatsSnapshot, 0, len(raw))
	for _, p := range raw {
		players = append(players, BatchPlayer(p))
	}
	return players
}

func intOrZero(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func floatOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// firstInt returns the first present value in the chain, or zero.
func firstInt(ps ...*int64) int64 {
	for _, p := range ps {
		if p != nil {
			return *p
		}
	}
	return 0
}

// firstFloat returns the first present value in the chain, or zero.
func firstFloat(ps ...*float64) float64 {
	for _, p := range ps {
		if p != nil {
			return *p
		}
	}
	return 0
}

// strOr returns the first present non-empty value in the chain, or the
// fallback.
func strOr(fallback string, ps ...*string) string {
	for _, p := range ps {
		if p != nil && *p != "" {
			return *p
		}
	}
	return fallback
}

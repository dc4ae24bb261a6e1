package normalize

import (
	"testing"

	"battlefield-tracker/internal/api"
)

func intPtr(v int64) *int64       { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func TestPlayerStatsDefaults(t *testing.T) {
	tests := []struct {
		name string
		raw  *api.PlayerStatsResponse
	}{
		{name: "nil response", raw: nil},
		{name: "empty response", raw: &api.PlayerStatsResponse{}},
		{name: "rank object without fields", raw: &api.PlayerStatsResponse{Rank: &api.RankInfo{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := PlayerStats("123", "Alice", tt.raw)

			if s.PlayerID != "123" || s.PlayerName != "Alice" {
				t.Errorf("identity not preserved: %q %q", s.PlayerID, s.PlayerName)
			}
			if s.Kills != 0 || s.Deaths != 0 || s.Wins != 0 || s.Losses != 0 {
				t.Error("missing counters should default to 0")
			}
			if s.KDRatio != 0 || s.WinRate != 0 || s.Accuracy != 0 || s.HeadshotPercentage != 0 {
				t.Error("missing ratios should default to 0")
			}
			if s.Level != 0 {
				t.Errorf("missing level should default to 0, got %d", s.Level)
			}
			if s.Rank != "Unknown" {
				t.Errorf("missing rank should default to Unknown, got %q", s.Rank)
			}
		})
	}
}

func TestPlayerStatsFullPayload(t *testing.T) {
	raw := &api.PlayerStatsResponse{
		Kills:           intPtr(1500),
		Deaths:          intPtr(1000),
		KillDeath:       floatPtr(1.5),
		Wins:            intPtr(80),
		Losses:          intPtr(20),
		WinPercent:      floatPtr(80),
		Score:           intPtr(250000),
		TimePlayed:      intPtr(360000),
		Headshots:       intPtr(300),
		HeadshotPercent: floatPtr(20),
		Accuracy:        floatPtr(18.5),
		Rank:            &api.RankInfo{Number: intPtr(42), Name: strPtr("Sergeant")},
	}

	s := PlayerStats("123", "Alice", raw)

	if s.Kills != 1500 || s.Deaths != 1000 || s.KDRatio != 1.5 {
		t.Errorf("combat stats wrong: %+v", s)
	}
	if s.WinRate != 80 || s.Wins != 80 || s.Losses != 20 {
		t.Errorf("win stats wrong: %+v", s)
	}
	if s.Level != 42 || s.Rank != "Sergeant" {
		t.Errorf("rank mapping wrong: level=%d rank=%q", s.Level, s.Rank)
	}
	if s.Headshots != 300 || s.HeadshotPercentage != 20 || s.Accuracy != 18.5 {
		t.Errorf("aim stats wrong: %+v", s)
	}
}

func TestBatchPlayerFallbackChains(t *testing.T) {
	tests := []struct {
		name string
		raw  api.BatchPlayer
		id   string
		pn   string
		kd   float64
		wr   float64
		lvl  int64
		rank string
	}{
		{
			name: "primary names win over fallbacks",
			raw: api.BatchPlayer{
				PlayerID:   strPtr("p1"),
				ID:         strPtr("ignored"),
				PlayerName: strPtr("Alice"),
				Name:       strPtr("ignored"),
				KillDeath:  floatPtr(2.0),
				KDRatio:    floatPtr(9.9),
				WinPercent: floatPtr(55),
				WinRate:    floatPtr(1),
				Rank:       &api.RankInfo{Number: intPtr(10), Name: strPtr("Corporal")},
				Level:      intPtr(99),
				RankName:   strPtr("ignored"),
			},
			id: "p1", pn: "Alice", kd: 2.0, wr: 55, lvl: 10, rank: "Corporal",
		},
		{
			name: "fallback names used when primaries absent",
			raw: api.BatchPlayer{
				ID:       strPtr("p2"),
				Name:     strPtr("Bob"),
				KDRatio:  floatPtr(1.1),
				WinRate:  floatPtr(40),
				Level:    intPtr(7),
				RankName: strPtr("Private"),
			},
			id: "p2", pn: "Bob", kd: 1.1, wr: 40, lvl: 7, rank: "Private",
		},
		{
			name: "empty record gets defaults",
			raw:  api.BatchPlayer{},
			id:   "", pn: "Unknown", kd: 0, wr: 0, lvl: 0, rank: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := BatchPlayer(tt.raw)
			if s.PlayerID != tt.id {
				t.Errorf("playerId = %q, want %q", s.PlayerID, tt.id)
			}
			if s.PlayerName != tt.pn {
				t.Errorf("playerName = %q, want %q", s.PlayerName, tt.pn)
			}
			if s.KDRatio != tt.kd {
				t.Errorf("kdRatio = %v, want %v", s.KDRatio, tt.kd)
			}
			if s.WinRate != tt.wr {
				t.Errorf("winRate = %v, want %v", s.WinRate, tt.wr)
			}
			if s.Level != tt.lvl {
				t.Errorf("level = %d, want %d", s.Level, tt.lvl)
			}
			if s.Rank != tt.rank {
				t.Errorf("rank = %q, want %q", s.Rank, tt.rank)
			}
		})
	}
}

func TestBatchPlayerNeverCarriesHeadshotData(t *testing.T) {
	s := BatchPlayer(api.BatchPlayer{Kills: intPtr(10)})
	if s.Headshots != 0 || s.HeadshotPercentage != 0 || s.Accuracy != 0 {
		t.Errorf("batch records must zero headshot/accuracy fields: %+v", s)
	}
}

func TestBatchPlayersEmptyInput(t *testing.T) {
	if got := BatchPlayers(nil); got == nil || len(got) != 0 {
		t.Errorf("nil input should normalize to an empty slice, got %#v", got)
	}
}

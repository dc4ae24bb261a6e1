package repository

import (
	"context"
	"database/sql"
	"testing"

	"battlefield-tracker/internal/database"
	"battlefield-tracker/internal/domain"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// newTestDB opens an in-memory database and runs the real migrations.
// The pool is pinned to one connection: each in-memory connection is
// otherwise its own database.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db, zerolog.Nop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func snapshot(playerID, playerName string, kd float64, score int64) domain.StatsSnapshot {
	return domain.StatsSnapshot{
		PlayerID:   playerID,
		PlayerName: playerName,
		Kills:      100,
		Deaths:     50,
		KDRatio:    kd,
		Wins:       10,
		Losses:     5,
		WinRate:    66.7,
		Score:      score,
		TimePlayed: 3600,
		Level:      12,
		Rank:       "Sergeant",
	}
}

func TestLeaderboardUpsertOverwrites(t *testing.T) {
	db := newTestDB(t)
	repo := NewLeaderboardRepository(db, zerolog.Nop())
	ctx := context.Background()

	first := domain.LeaderboardEntry{StatsSnapshot: snapshot("p1", "Alice", 1.0, 100), Platform: "pc"}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second := domain.LeaderboardEntry{StatsSnapshot: snapshot("p1", "AliceRenamed", 2.5, 900), Platform: "psn"}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	entries, err := repo.List(ctx, "kd_ratio", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("upsert should keep one row per player, got %d", len(entries))
	}
	e := entries[0]
	if e.PlayerName != "AliceRenamed" || e.KDRatio != 2.5 || e.Score != 900 || e.Platform != "psn" {
		t.Errorf("row should hold latest values: %+v", e)
	}
	if e.LastUpdated.IsZero() {
		t.Error("last_updated should be set")
	}
}

func TestLeaderboardListOrderingAndPaging(t *testing.T) {
	db := newTestDB(t)
	repo := NewLeaderboardRepository(db, zerolog.Nop())
	ctx := context.Background()

	players := []struct {
		id string
		kd float64
	}{
		{"p1", 0.8}, {"p2", 3.1}, {"p3", 1.6},
	}
	for _, p := range players {
		entry := domain.LeaderboardEntry{StatsSnapshot: snapshot(p.id, p.id, p.kd, 0), Platform: "pc"}
		if err := repo.Upsert(ctx, entry); err != nil {
			t.Fatalf("upsert %s: %v", p.id, err)
		}
	}

	entries, err := repo.List(ctx, "kd_ratio", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	wantOrder := []string{"p2", "p3", "p1"}
	if len(entries) != len(wantOrder) {
		t.Fatalf("got %d entries, want %d", len(entries), len(wantOrder))
	}
	for i, want := range wantOrder {
		if entries[i].PlayerID != want {
			t.Errorf("position %d = %s, want %s", i, entries[i].PlayerID, want)
		}
	}

	page, err := repo.List(ctx, "kd_ratio", 1, 1)
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 1 || page[0].PlayerID != "p3" {
		t.Errorf("limit 1 offset 1 should yield p3, got %+v", page)
	}

	empty, err := repo.List(ctx, "kd_ratio", 10, 100)
	if err != nil {
		t.Fatalf("list past end: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("offset past the end should be empty, got %d rows", len(empty))
	}

	if _, err := repo.List(ctx, "password_hash", 10, 0); err == nil {
		t.Error("unsupported order column should be rejected")
	}
}

func TestLeaderboardPlayerRank(t *testing.T) {
	db := newTestDB(t)
	repo := NewLeaderboardRepository(db, zerolog.Nop())
	ctx := context.Background()

	for _, p := range []struct {
		id string
		kd float64
	}{
		{"top", 4.0}, {"tied_a", 2.0}, {"tied_b", 2.0}, {"bottom", 0.5},
	} {
		entry := domain.LeaderboardEntry{StatsSnapshot: snapshot(p.id, p.id, p.kd, 0), Platform: "pc"}
		if err := repo.Upsert(ctx, entry); err != nil {
			t.Fatalf("upsert %s: %v", p.id, err)
		}
	}

	tests := []struct {
		playerID string
		want     int64
	}{
		{"top", 1},
		{"tied_a", 2},
		{"tied_b", 2},
		{"bottom", 4},
	}
	for _, tt := range tests {
		rank, err := repo.PlayerRank(ctx, tt.playerID, "kd_ratio")
		if err != nil {
			t.Fatalf("rank %s: %v", tt.playerID, err)
		}
		if rank != tt.want {
			t.Errorf("rank(%s) = %d, want %d", tt.playerID, rank, tt.want)
		}
	}

	if _, err := repo.PlayerRank(ctx, "ghost", "kd_ratio"); err != sql.ErrNoRows {
		t.Errorf("unknown player should yield sql.ErrNoRows, got %v", err)
	}
}

func TestLeaderboardSummary(t *testing.T) {
	db := newTestDB(t)
	repo := NewLeaderboardRepository(db, zerolog.Nop())
	ctx := context.Background()

	empty, err := repo.Summary(ctx)
	if err != nil {
		t.Fatalf("summary on empty table: %v", err)
	}
	if empty.TotalPlayers != 0 || empty.AvgKD != 0 || empty.MaxKD != 0 {
		t.Errorf("empty leaderboard should aggregate to zeroes: %+v", empty)
	}

	for _, p := range []struct {
		id string
		kd float64
	}{
		{"p1", 1.0}, {"p2", 3.0},
	} {
		entry := domain.LeaderboardEntry{StatsSnapshot: snapshot(p.id, p.id, p.kd, 0), Platform: "pc"}
		if err := repo.Upsert(ctx, entry); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	s, err := repo.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.TotalPlayers != 2 || s.AvgKD != 2.0 || s.MaxKD != 3.0 {
		t.Errorf("summary mismatch: %+v", s)
	}
	if s.TotalKills != 200 || s.TotalDeaths != 100 {
		t.Errorf("kill totals mismatch: %+v", s)
	}
}

func TestStatsHistoryAppendIsImmutable(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatsHistoryRepository(db, zerolog.Nop())
	ctx := context.Background()

	if err := repo.Append(ctx, snapshot("p1", "Alice", 1.0, 100)); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := repo.Append(ctx, snapshot("p1", "Alice", 1.2, 150)); err != nil {
		t.Fatalf("second append: %v", err)
	}

	entries, err := repo.ForPlayer(ctx, "p1", 30)
	if err != nil {
		t.Fatalf("for player: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("appends must accumulate rows, got %d", len(entries))
	}
	if entries[0].ID == entries[1].ID {
		t.Error("history rows should get distinct ids")
	}
	// Both appends land within the same second, so only the set is stable.
	got := map[float64]bool{entries[0].KDRatio: true, entries[1].KDRatio: true}
	if !got[1.0] || !got[1.2] {
		t.Errorf("both snapshots should be preserved, got %v", got)
	}
	if entries[0].RecordedAt.IsZero() {
		t.Error("recorded_at should be set")
	}
}

func TestStatsHistoryDayWindow(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatsHistoryRepository(db, zerolog.Nop())
	ctx := context.Background()

	if err := repo.Append(ctx, snapshot("p1", "Alice", 1.0, 100)); err != nil {
		t.Fatalf("append: %v", err)
	}
	// Backdate a row beyond any window under test.
	_, err := db.ExecContext(ctx, `
		INSERT INTO player_stats_history (id, player_id, player_name, rank, recorded_at)
		VALUES ('old-row', 'p1', 'Alice', 'Unknown', datetime('now', '-90 days'))
	`)
	if err != nil {
		t.Fatalf("backdate row: %v", err)
	}

	recent, err := repo.ForPlayer(ctx, "p1", 30)
	if err != nil {
		t.Fatalf("for player: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("30 day window should exclude the 90 day old row, got %d rows", len(recent))
	}

	all, err := repo.ForPlayer(ctx, "p1", 365)
	if err != nil {
		t.Fatalf("for player full year: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("365 day window should include both rows, got %d", len(all))
	}
}

func TestStatsHistoryTrend(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatsHistoryRepository(db, zerolog.Nop())
	ctx := context.Background()

	for _, kd := range []float64{1.0, 2.0, 3.0} {
		if err := repo.Append(ctx, snapshot("p1", "Alice", kd, 0)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	points, err := repo.Trend(ctx, "p1", TrendMetricKD, 30)
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("same-day rows should group into one point, got %d", len(points))
	}
	p := points[0]
	if p.Avg != 2.0 || p.Max != 3.0 || p.Min != 1.0 {
		t.Errorf("aggregates wrong: %+v", p)
	}
	if p.Date == "" {
		t.Error("date should be populated")
	}

	if _, err := repo.Trend(ctx, "p1", "accuracy", 30); err == nil {
		t.Error("unsupported trend metric should be rejected")
	}
}

func TestStatsHistoryLatestForPlayers(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatsHistoryRepository(db, zerolog.Nop())
	ctx := context.Background()

	if err := repo.Append(ctx, snapshot("p1", "Alice", 1.0, 0)); err != nil {
		t.Fatalf("append: %v", err)
	}
	// A strictly later row for the same player.
	_, err := db.ExecContext(ctx, `
		INSERT INTO player_stats_history (id, player_id, player_name, kd_ratio, rank, recorded_at)
		VALUES ('later', 'p1', 'Alice', 9.9, 'Unknown', datetime('now', '+1 minute'))
	`)
	if err != nil {
		t.Fatalf("insert later row: %v", err)
	}
	if err := repo.Append(ctx, snapshot("p2", "Bob", 2.0, 0)); err != nil {
		t.Fatalf("append p2: %v", err)
	}

	entries, err := repo.LatestForPlayers(ctx, []string{"p1", "p2", "missing"})
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("players without history are absent, got %d entries", len(entries))
	}
	if entries[0].PlayerID != "p1" || entries[0].KDRatio != 9.9 {
		t.Errorf("p1 should resolve to its newest row: %+v", entries[0])
	}
	if entries[1].PlayerID != "p2" || entries[1].KDRatio != 2.0 {
		t.Errorf("p2 row wrong: %+v", entries[1])
	}

	none, err := repo.LatestForPlayers(ctx, nil)
	if err != nil {
		t.Fatalf("latest with no ids: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("empty id list should yield no rows, got %d", len(none))
	}
}

func TestTrackedPlayerUpsertAndOrdering(t *testing.T) {
	db := newTestDB(t)
	repo := NewTrackedPlayerRepository(db, zerolog.Nop())
	ctx := context.Background()

	if err := repo.Upsert(ctx, "p1", "Alice", "pc"); err != nil {
		t.Fatalf("upsert p1: %v", err)
	}
	if err := repo.Upsert(ctx, "p2", "Bob", "pc"); err != nil {
		t.Fatalf("upsert p2: %v", err)
	}
	// Repeat tracking refreshes the name without duplicating the row.
	if err := repo.Upsert(ctx, "p1", "AliceRenamed", "xbox"); err != nil {
		t.Fatalf("repeat upsert: %v", err)
	}

	players, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("repeat tracking must not duplicate: got %d rows", len(players))
	}
	if players[0].PlayerName != "AliceRenamed" || players[0].Platform != "xbox" {
		t.Errorf("repeat upsert should refresh name and platform: %+v", players[0])
	}
	if players[0].LastFetched != nil {
		t.Error("freshly tracked players have no fetch time")
	}

	if err := repo.TouchLastFetched(ctx, "p1"); err != nil {
		t.Fatalf("touch: %v", err)
	}

	// Never-fetched players sweep first, then oldest-fetched.
	order, err := repo.AllByFetchOrder(ctx)
	if err != nil {
		t.Fatalf("fetch order: %v", err)
	}
	if order[0].PlayerID != "p2" || order[0].LastFetched != nil {
		t.Errorf("never-fetched player should sweep first: %+v", order[0])
	}
	if order[1].PlayerID != "p1" || order[1].LastFetched == nil {
		t.Errorf("fetched player should sweep last: %+v", order[1])
	}
}

func TestUserLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, zerolog.Nop())
	ctx := context.Background()

	playerID := "p1"
	user, err := repo.Create(ctx, "alice", "alice@example.com", "hash1", &playerID, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.ID == 0 || user.Username != "alice" || user.Email != "alice@example.com" {
		t.Errorf("created user wrong: %+v", user)
	}
	if user.PlayerID == nil || *user.PlayerID != "p1" {
		t.Errorf("player id not stored: %+v", user.PlayerID)
	}
	if user.PlayerName != nil {
		t.Errorf("absent player name should stay nil, got %v", *user.PlayerName)
	}

	for _, login := range []string{"alice", "alice@example.com"} {
		got, err := repo.GetByLogin(ctx, login)
		if err != nil {
			t.Fatalf("get by login %q: %v", login, err)
		}
		if got.ID != user.ID {
			t.Errorf("login %q resolved to user %d, want %d", login, got.ID, user.ID)
		}
	}

	for _, tt := range []struct {
		username, email string
		want            bool
	}{
		{"alice", "other@example.com", true},
		{"other", "alice@example.com", true},
		{"other", "other@example.com", false},
	} {
		exists, err := repo.Exists(ctx, tt.username, tt.email)
		if err != nil {
			t.Fatalf("exists: %v", err)
		}
		if exists != tt.want {
			t.Errorf("exists(%q, %q) = %v, want %v", tt.username, tt.email, exists, tt.want)
		}
	}

	bio := "plays a lot"
	updated, err := repo.UpdateProfile(ctx, user.ID, nil, nil, nil, &bio)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Bio == nil || *updated.Bio != "plays a lot" {
		t.Errorf("bio not updated: %+v", updated.Bio)
	}
	if updated.PlayerID == nil || *updated.PlayerID != "p1" {
		t.Error("nil fields must keep their current value")
	}

	if _, err := repo.UpdateProfile(ctx, 9999, nil, nil, nil, &bio); err != sql.ErrNoRows {
		t.Errorf("updating a missing user should yield sql.ErrNoRows, got %v", err)
	}

	if err := repo.UpdatePassword(ctx, user.ID, "hash2"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.PasswordHash != "hash2" {
		t.Errorf("password hash = %q, want hash2", got.PasswordHash)
	}
}

package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/roster"
	"github.com/riskibarqy/budget-gm/internal/domain/session"
)

func newTestRepository(t *testing.T) *SessionRepository {
	t.Helper()

	db, err := Open(t.Context(), filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSessionRepository(db, roster.DefaultRules())
}

func TestSessionRepository_UpsertAndGet(t *testing.T) {
	repo := newTestRepository(t)
	rules := roster.DefaultRules()
	now := time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)

	item := session.New("4f1c9a3e-8b0a-4c51-a6a2-1c1d2e3f4a5b", "hooper", "2026-01-10", rules, now)
	item, err := session.AddPlayer(rules, item, player.Player{ID: "p1", Name: "A", Position: player.PositionPointGuard, Salary: 3})
	if err != nil {
		t.Fatalf("add player: %v", err)
	}
	if err := repo.Upsert(t.Context(), item); err != nil {
		t.Fatalf("insert: %v", err)
	}

	item.Nickname = "hooper2"
	if err := repo.Upsert(t.Context(), item); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, exists, err := repo.GetByID(t.Context(), item.ID)
	if err != nil || !exists {
		t.Fatalf("get: exists=%v err=%v", exists, err)
	}
	if got.Nickname != "hooper2" || got.Roster.BudgetRemaining != 12 || got.Roster.Size() != 1 {
		t.Fatalf("unexpected session: %+v", got)
	}
	if got.Phase != session.PhaseBuilding {
		t.Fatalf("unexpected phase: %s", got.Phase)
	}

	_, exists, err = repo.GetByID(t.Context(), "missing")
	if err != nil || exists {
		t.Fatalf("expected missing session, exists=%v err=%v", exists, err)
	}
}

func TestSessionRepository_ListStale(t *testing.T) {
	repo := newTestRepository(t)
	rules := roster.DefaultRules()
	now := time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)

	for _, item := range []session.Session{
		session.New("a", "", "2026-01-09", rules, now),
		session.New("b", "", "2026-01-10", rules, now),
	} {
		if err := repo.Upsert(t.Context(), item); err != nil {
			t.Fatalf("upsert %s: %v", item.ID, err)
		}
	}

	stale, err := repo.ListStale(t.Context(), "2026-01-10")
	if err != nil {
		t.Fatalf("list stale: %v", err)
	}
	if len(stale) != 1 || stale[0].ID != "a" {
		t.Fatalf("unexpected stale sessions: %+v", stale)
	}
}

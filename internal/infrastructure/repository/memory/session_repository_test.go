package memory

import (
	"testing"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/roster"
	"github.com/riskibarqy/budget-gm/internal/domain/session"
)

func TestSessionRepository_UpsertClonesRoster(t *testing.T) {
	repo := NewSessionRepository()
	rules := roster.DefaultRules()

	item := session.New("s-1", "hooper", "2026-01-10", rules, testNow)
	item, err := session.AddPlayer(rules, item, SeedPool()[0])
	if err != nil {
		t.Fatalf("add player: %v", err)
	}
	if err := repo.Upsert(t.Context(), item); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	item.Roster.Players[0] = player.Player{ID: "mutated"}

	got, exists, err := repo.GetByID(t.Context(), "s-1")
	if err != nil || !exists {
		t.Fatalf("get by id: exists=%v err=%v", exists, err)
	}
	if got.Roster.Players[0].ID != "nba-pg-01" {
		t.Fatalf("stored roster was mutated through caller: %s", got.Roster.Players[0].ID)
	}
	if got.Roster.BudgetRemaining != 10 {
		t.Fatalf("unexpected budget remaining: %d", got.Roster.BudgetRemaining)
	}
}

func TestSessionRepository_ListStale(t *testing.T) {
	repo := NewSessionRepository()
	rules := roster.DefaultRules()

	for _, item := range []session.Session{
		session.New("s-old", "", "2026-01-08", rules, testNow),
		session.New("s-older", "", "2026-01-07", rules, testNow),
		session.New("s-today", "", "2026-01-10", rules, testNow),
	} {
		if err := repo.Upsert(t.Context(), item); err != nil {
			t.Fatalf("upsert %s: %v", item.ID, err)
		}
	}

	stale, err := repo.ListStale(t.Context(), "2026-01-10")
	if err != nil {
		t.Fatalf("list stale: %v", err)
	}
	if len(stale) != 2 {
		t.Fatalf("expected 2 stale sessions, got %d", len(stale))
	}
	if stale[0].ID != "s-older" || stale[1].ID != "s-old" {
		t.Fatalf("unexpected stale order: %s, %s", stale[0].ID, stale[1].ID)
	}
}

package sessionrow

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/roster"
	"github.com/riskibarqy/budget-gm/internal/domain/session"
)

func TestToSession_RecomputesBudget(t *testing.T) {
	rules := roster.DefaultRules()
	now := time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)

	item := session.New("4f1c9a3e-8b0a-4c51-a6a2-1c1d2e3f4a5b", "hooper", "2026-01-10", rules, now)
	item, err := session.AddPlayer(rules, item, player.Player{ID: "p1", Name: "A", Position: player.PositionCenter, Salary: 4, Stats: player.Stats{Points: 11.5}})
	if err != nil {
		t.Fatalf("add player: %v", err)
	}

	row, err := From(item)
	if err != nil {
		t.Fatalf("row from session: %v", err)
	}
	if !strings.Contains(row.Roster, `"salary":4`) {
		t.Fatalf("unexpected roster json: %s", row.Roster)
	}

	row.BudgetRemaining = 99

	got, err := ToSession(rules, row)
	if err != nil {
		t.Fatalf("session from row: %v", err)
	}
	if got.Roster.BudgetRemaining != 11 {
		t.Fatalf("expected budget recomputed to 11, got %d", got.Roster.BudgetRemaining)
	}
	if got.Roster.Players[0].Stats.Points != 11.5 || got.Nickname != "hooper" {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestToSession_RejectsOverBudgetSnapshot(t *testing.T) {
	row := Row{
		PublicID: "s-1",
		Phase:    string(session.PhaseBuilding),
		Roster:   `[{"id":"a","name":"A","salary":5},{"id":"b","name":"B","salary":5},{"id":"c","name":"C","salary":5},{"id":"d","name":"D","salary":5}]`,
	}

	if _, err := ToSession(roster.DefaultRules(), row); !errors.Is(err, roster.ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
}

package roster

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
)

func samplePlayer(id string, salary int, pos player.Position) player.Player {
	return player.Player{ID: id, Name: "Player " + id, Position: pos, Salary: salary}
}

func mustAdd(t *testing.T, rules Rules, state State, p player.Player) State {
	t.Helper()
	next, err := Add(rules, state, p)
	if err != nil {
		t.Fatalf("add %s: %v", p.ID, err)
	}
	return next
}

func TestAddAndRemove(t *testing.T) {
	rules := DefaultRules()
	base := mustAdd(t, rules, NewState(rules), samplePlayer("a", 3, player.PositionPointGuard))

	tests := []struct {
		name      string
		state     State
		add       player.Player
		targetErr error
	}{
		{
			name:  "valid add",
			state: base,
			add:   samplePlayer("b", 2, player.PositionCenter),
		},
		{
			name:      "duplicate player",
			state:     base,
			add:       samplePlayer("a", 1, player.PositionCenter),
			targetErr: ErrDuplicatePlayer,
		},
		{
			name:      "salary over remaining",
			state:     State{Players: base.Players, BudgetRemaining: 1},
			add:       samplePlayer("b", 2, player.PositionCenter),
			targetErr: ErrInsufficientBudget,
		},
		{
			name:      "invalid salary",
			state:     base,
			add:       samplePlayer("b", 9, player.PositionCenter),
			targetErr: ErrInvalidPlayer,
		},
		{
			name:      "locked",
			state:     State{Players: base.Players, BudgetRemaining: base.BudgetRemaining, Locked: true},
			add:       samplePlayer("b", 1, player.PositionCenter),
			targetErr: ErrSubmissionLocked,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := tc.state.Clone()
			next, err := Add(rules, tc.state, tc.add)
			if tc.targetErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if next.Size() != before.Size()+1 {
					t.Fatalf("expected size %d, got %d", before.Size()+1, next.Size())
				}
				if next.BudgetRemaining != before.BudgetRemaining-tc.add.Salary {
					t.Fatalf("unexpected budget %d", next.BudgetRemaining)
				}
				return
			}
			if !errors.Is(err, tc.targetErr) {
				t.Fatalf("expected error %v, got %v", tc.targetErr, err)
			}
			if !reflect.DeepEqual(next, before) {
				t.Fatalf("state changed on failed add: before=%+v after=%+v", before, next)
			}
		})
	}
}

func TestAddDoesNotAliasInput(t *testing.T) {
	rules := DefaultRules()
	state := mustAdd(t, rules, NewState(rules), samplePlayer("a", 1, player.PositionPointGuard))
	next := mustAdd(t, rules, state, samplePlayer("b", 1, player.PositionShootingGuard))

	if state.Size() != 1 {
		t.Fatalf("input state mutated: %+v", state)
	}
	next.Players[0].Name = "changed"
	if state.Players[0].Name == "changed" {
		t.Fatalf("states share backing array")
	}
}

func TestRosterFull(t *testing.T) {
	rules := DefaultRules()
	state := NewState(rules)
	for i := 0; i < rules.MaxSize; i++ {
		state = mustAdd(t, rules, state, samplePlayer(fmt.Sprintf("p%d", i), 1, player.PositionCenter))
	}
	if !IsComplete(rules, state) {
		t.Fatalf("expected complete roster")
	}

	before := state.Clone()
	next, err := Add(rules, state, samplePlayer("extra", 1, player.PositionCenter))
	if !errors.Is(err, ErrRosterFull) {
		t.Fatalf("expected ErrRosterFull, got %v", err)
	}
	if !reflect.DeepEqual(next, before) {
		t.Fatalf("roster changed after full add")
	}
}

func TestRemove(t *testing.T) {
	rules := DefaultRules()
	state := mustAdd(t, rules, NewState(rules), samplePlayer("a", 4, player.PositionPointGuard))
	state = mustAdd(t, rules, state, samplePlayer("b", 2, player.PositionShootingGuard))
	state = mustAdd(t, rules, state, samplePlayer("c", 1, player.PositionCenter))

	next, err := Remove(state, "b")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := next.PlayerIDs(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("unexpected order after remove: %v", got)
	}
	if next.BudgetRemaining != 10 {
		t.Fatalf("expected budget 10, got %d", next.BudgetRemaining)
	}
	if state.Size() != 3 {
		t.Fatalf("input state mutated")
	}

	if _, err := Remove(state, "missing"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}

	state.Locked = true
	unchanged, err := Remove(state, "a")
	if !errors.Is(err, ErrSubmissionLocked) {
		t.Fatalf("expected ErrSubmissionLocked, got %v", err)
	}
	if unchanged.Size() != 3 || unchanged.BudgetRemaining != state.BudgetRemaining {
		t.Fatalf("locked remove changed state")
	}
}

func TestAddThenRemoveIsInverse(t *testing.T) {
	rules := DefaultRules()
	state := mustAdd(t, rules, NewState(rules), samplePlayer("a", 5, player.PositionPointGuard))
	state = mustAdd(t, rules, state, samplePlayer("b", 3, player.PositionCenter))

	added := mustAdd(t, rules, state, samplePlayer("c", 2, player.PositionSmallForward))
	restored, err := Remove(added, "c")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !reflect.DeepEqual(restored, state) {
		t.Fatalf("add/remove not inverse: before=%+v after=%+v", state, restored)
	}
}

func TestBudgetInvariantUnderRandomMutations(t *testing.T) {
	rules := DefaultRules()
	rng := rand.New(rand.NewSource(42))
	pool := make([]player.Player, 0, 20)
	for i := 0; i < 20; i++ {
		pool = append(pool, samplePlayer(fmt.Sprintf("p%d", i), 1+rng.Intn(5), player.PositionCenter))
	}

	state := NewState(rules)
	for step := 0; step < 2000; step++ {
		candidate := pool[rng.Intn(len(pool))]
		if rng.Intn(3) == 0 {
			if next, err := Remove(state, candidate.ID); err == nil {
				state = next
			}
		} else if next, err := Add(rules, state, candidate); err == nil {
			state = next
		}

		if state.Spent() > rules.Budget {
			t.Fatalf("step %d: spent %d exceeds budget", step, state.Spent())
		}
		if state.Spent()+state.BudgetRemaining != rules.Budget {
			t.Fatalf("step %d: budget desync spent=%d remaining=%d", step, state.Spent(), state.BudgetRemaining)
		}
		if state.Size() > rules.MaxSize {
			t.Fatalf("step %d: size %d exceeds max", step, state.Size())
		}
	}
}

func TestFullBudgetLineup(t *testing.T) {
	rules := DefaultRules()
	state := NewState(rules)
	for _, item := range []player.Player{
		samplePlayer("A", 5, player.PositionPointGuard),
		samplePlayer("B", 5, player.PositionShootingGuard),
		samplePlayer("C", 3, player.PositionSmallForward),
		samplePlayer("D", 1, player.PositionPowerForward),
		samplePlayer("E", 1, player.PositionCenter),
	} {
		state = mustAdd(t, rules, state, item)
	}

	if !IsComplete(rules, state) {
		t.Fatalf("expected complete roster")
	}
	if state.BudgetRemaining != 0 {
		t.Fatalf("expected remaining budget 0, got %d", state.BudgetRemaining)
	}
}

func TestRehydrate(t *testing.T) {
	rules := DefaultRules()
	players := []player.Player{
		samplePlayer("a", 5, player.PositionPointGuard),
		samplePlayer("b", 4, player.PositionCenter),
	}

	state, err := Rehydrate(rules, players, true)
	if err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if state.BudgetRemaining != 6 {
		t.Fatalf("expected recomputed budget 6, got %d", state.BudgetRemaining)
	}
	if !state.Locked {
		t.Fatalf("expected locked flag to be restored")
	}

	over := append(players, samplePlayer("c", 5, player.PositionSmallForward), samplePlayer("d", 5, player.PositionPowerForward))
	if _, err := Rehydrate(rules, over, false); !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
}

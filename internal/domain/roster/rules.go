package roster

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
)

var (
	ErrDuplicatePlayer    = errors.New("player already on roster")
	ErrRosterFull         = errors.New("roster is full")
	ErrInsufficientBudget = errors.New("insufficient budget")
	ErrSubmissionLocked   = errors.New("roster is locked after submission")
	ErrPlayerNotFound     = errors.New("player not on roster")
	ErrInvalidPlayer      = errors.New("invalid player")
	ErrInvalidSnapshot    = errors.New("invalid roster snapshot")
)

// Rules stores roster construction limits.
type Rules struct {
	Budget  int
	MaxSize int
}

func DefaultRules() Rules {
	return Rules{
		Budget:  15,
		MaxSize: 5,
	}
}

func (r Rules) Validate() error {
	if r.Budget <= 0 {
		return fmt.Errorf("roster budget must be > 0")
	}
	if r.MaxSize <= 0 {
		return fmt.Errorf("roster max size must be > 0")
	}
	return nil
}

// State is the roster together with its remaining budget. The two values are
// only ever produced and persisted together.
type State struct {
	Players         []player.Player
	BudgetRemaining int
	Locked          bool
}

func NewState(rules Rules) State {
	return State{
		Players:         []player.Player{},
		BudgetRemaining: rules.Budget,
	}
}

func (s State) Clone() State {
	out := s
	out.Players = append([]player.Player(nil), s.Players...)
	if out.Players == nil {
		out.Players = []player.Player{}
	}
	return out
}

func (s State) Size() int {
	return len(s.Players)
}

func (s State) Contains(playerID string) bool {
	return s.indexOf(playerID) >= 0
}

func (s State) Spent() int {
	total := 0
	for _, item := range s.Players {
		total += item.Salary
	}
	return total
}

func (s State) PlayerIDs() []string {
	out := make([]string, 0, len(s.Players))
	for _, item := range s.Players {
		out = append(out, item.ID)
	}
	return out
}

func (s State) indexOf(playerID string) int {
	for i, item := range s.Players {
		if item.ID == playerID {
			return i
		}
	}
	return -1
}

// Add returns a new state with p appended. On error the input state is
// returned unchanged.
func Add(rules Rules, state State, p player.Player) (State, error) {
	if state.Locked {
		return state, ErrSubmissionLocked
	}
	if err := p.Validate(); err != nil {
		return state, fmt.Errorf("%w: %v", ErrInvalidPlayer, err)
	}
	if state.Contains(p.ID) {
		return state, fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
	}
	if state.Size() >= rules.MaxSize {
		return state, fmt.Errorf("%w: max=%d", ErrRosterFull, rules.MaxSize)
	}
	if p.Salary > state.BudgetRemaining {
		return state, fmt.Errorf("%w: salary=%d remaining=%d", ErrInsufficientBudget, p.Salary, state.BudgetRemaining)
	}

	next := state.Clone()
	next.Players = append(next.Players, p)
	next.BudgetRemaining -= p.Salary
	return next, nil
}

// Remove returns a new state without playerID and with its salary restored.
func Remove(state State, playerID string) (State, error) {
	if state.Locked {
		return state, ErrSubmissionLocked
	}
	idx := state.indexOf(playerID)
	if idx < 0 {
		return state, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}

	removed := state.Players[idx]
	next := state.Clone()
	next.Players = append(next.Players[:idx], next.Players[idx+1:]...)
	next.BudgetRemaining += removed.Salary
	return next, nil
}

func IsComplete(rules Rules, state State) bool {
	return state.Size() == rules.MaxSize
}

// Rehydrate rebuilds a state from persisted players. The remaining budget is
// always recomputed from the players rather than trusted from storage.
func Rehydrate(rules Rules, players []player.Player, locked bool) (State, error) {
	state := NewState(rules)
	for _, item := range players {
		next, err := Add(rules, state, item)
		if err != nil {
			return NewState(rules), fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		state = next
	}
	state.Locked = locked
	return state, nil
}

package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
)

// PoolRepository serves a fixed player pool. It backs local runs without a
// game backend and the usecase tests.
type PoolRepository struct {
	mu      sync.RWMutex
	players []player.Player
}

func NewPoolRepository(players []player.Player) *PoolRepository {
	return &PoolRepository{players: append([]player.Player(nil), players...)}
}

func (r *PoolRepository) ListPool(_ context.Context) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.players) == 0 {
		return nil, player.ErrNoPlayersAvailable
	}
	out := make([]player.Player, 0, len(r.players))
	out = append(out, r.players...)
	return out, nil
}

func (r *PoolRepository) Replace(players []player.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.players = append([]player.Player(nil), players...)
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/budget-gm/internal/domain/session"
)

type SessionRepository struct {
	mu    sync.RWMutex
	items map[string]session.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{items: make(map[string]session.Session)}
}

func (r *SessionRepository) GetByID(_ context.Context, id string) (session.Session, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return session.Session{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *SessionRepository) Upsert(_ context.Context, item session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item.Clone()
	return nil
}

// ListStale returns sessions whose game day is before gameDay, oldest first.
func (r *SessionRepository) ListStale(_ context.Context, gameDay string) ([]session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]session.Session, 0)
	for _, item := range r.items {
		if item.GameDay < gameDay {
			out = append(out, item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GameDay != out[j].GameDay {
			return out[i].GameDay < out[j].GameDay
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

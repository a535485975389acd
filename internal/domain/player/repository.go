package player

import "context"

// PoolRepository provides the current game day's selectable players.
type PoolRepository interface {
	ListPool(ctx context.Context) ([]Player, error)
}

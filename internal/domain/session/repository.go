package session

import "context"

// Repository describes session persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (Session, bool, error)
	Upsert(ctx context.Context, s Session) error
	ListStale(ctx context.Context, gameDay string) ([]Session, error)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/platform/logging"
)

// PlayerPool is the selectable pool for one game day.
type PlayerPool struct {
	Players []player.Player
	Tiers   map[int][]player.Player
}

type PoolService struct {
	repo   player.PoolRepository
	logger *logging.Logger
}

func NewPoolService(repo player.PoolRepository, logger *logging.Logger) *PoolService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PoolService{repo: repo, logger: logger}
}

func (s *PoolService) Pool(ctx context.Context) (PlayerPool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.Pool")
	defer span.End()

	players, err := s.list(ctx)
	if err != nil {
		return PlayerPool{}, err
	}
	span.SetAttributes(attribute.Int("pool.size", len(players)))

	return PlayerPool{
		Players: players,
		Tiers:   player.GroupBySalary(players),
	}, nil
}

// Lookup resolves ids against today's pool, keeping the requested order.
func (s *PoolService) Lookup(ctx context.Context, playerIDs ...string) ([]player.Player, error) {
	players, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	index := player.IndexByID(players)
	out := make([]player.Player, 0, len(playerIDs))
	for _, raw := range playerIDs {
		playerID := strings.TrimSpace(raw)
		item, ok := index[playerID]
		if !ok {
			return nil, fmt.Errorf("%w: player %q is not in today's pool", ErrNotFound, playerID)
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *PoolService) list(ctx context.Context) ([]player.Player, error) {
	players, err := s.repo.ListPool(ctx)
	if err != nil {
		if errors.Is(err, player.ErrNoPlayersAvailable) {
			s.logger.WarnContext(ctx, "player pool is empty")
			return nil, err
		}
		return nil, fmt.Errorf("list player pool: %w", err)
	}
	if len(players) == 0 {
		return nil, player.ErrNoPlayersAvailable
	}

	valid := make([]player.Player, 0, len(players))
	for _, item := range players {
		if err := item.Validate(); err != nil {
			s.logger.WarnContext(ctx, "skip invalid pool player", "player_id", item.ID, "error", err)
			continue
		}
		valid = append(valid, item)
	}
	if len(valid) == 0 {
		return nil, player.ErrNoPlayersAvailable
	}
	return valid, nil
}

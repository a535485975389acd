package cache

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/budget-gm/internal/domain/gameday"
	"github.com/riskibarqy/budget-gm/internal/domain/leaderboard"
	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/submission"
	basecache "github.com/riskibarqy/budget-gm/internal/platform/cache"
)

const (
	poolKeyPrefix        = "pool:day:"
	leaderboardKeyPrefix = "leaderboard:"
	boardKeyPrefix       = leaderboardKeyPrefix + "date:"
	historyKeyPrefix     = leaderboardKeyPrefix + "history:"
)

// PoolRepository caches the player pool per game day, so a new day always
// misses the cache.
type PoolRepository struct {
	next     player.PoolRepository
	cache    *basecache.Store[[]player.Player]
	calendar gameday.Calendar
	now      func() time.Time
}

func NewPoolRepository(next player.PoolRepository, cache *basecache.Store[[]player.Player], calendar gameday.Calendar) *PoolRepository {
	return &PoolRepository{next: next, cache: cache, calendar: calendar, now: time.Now}
}

func (r *PoolRepository) ListPool(ctx context.Context) ([]player.Player, error) {
	key := poolKeyPrefix + r.calendar.Day(r.now())
	items, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]player.Player, error) {
		items, err := r.next.ListPool(ctx)
		if err != nil {
			return nil, err
		}
		return append([]player.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]player.Player(nil), items...), nil
}

type leaderboardEntry struct {
	board   leaderboard.Board
	history leaderboard.History
}

// LeaderboardRepository caches boards per date and histories per nickname.
// It also wraps submissions so an accepted entry invalidates the cached views.
type LeaderboardRepository struct {
	next        leaderboard.Repository
	submissions submission.Repository
	cache       *basecache.Store[leaderboardEntry]
}

func NewLeaderboardRepository(next leaderboard.Repository, submissions submission.Repository, ttl time.Duration) *LeaderboardRepository {
	return &LeaderboardRepository{
		next:        next,
		submissions: submissions,
		cache:       basecache.NewStore[leaderboardEntry](ttl),
	}
}

func (r *LeaderboardRepository) GetByDate(ctx context.Context, date string) (leaderboard.Board, error) {
	entry, err := r.cache.GetOrLoad(ctx, boardKeyPrefix+date, func(ctx context.Context) (leaderboardEntry, error) {
		board, err := r.next.GetByDate(ctx, date)
		if err != nil {
			return leaderboardEntry{}, err
		}
		return leaderboardEntry{board: board}, nil
	})
	if err != nil {
		return leaderboard.Board{}, err
	}
	return cloneBoard(entry.board), nil
}

func (r *LeaderboardRepository) History(ctx context.Context, nickname string) (leaderboard.History, error) {
	key := historyKeyPrefix + strings.ToLower(strings.TrimSpace(nickname))
	entry, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (leaderboardEntry, error) {
		history, err := r.next.History(ctx, nickname)
		if err != nil {
			return leaderboardEntry{}, err
		}
		return leaderboardEntry{history: history}, nil
	})
	if err != nil {
		return leaderboard.History{}, err
	}
	return leaderboard.History{
		Dates:       append([]string{}, entry.history.Dates...),
		PlayedDates: append([]string{}, entry.history.PlayedDates...),
	}, nil
}

func (r *LeaderboardRepository) Submit(ctx context.Context, entry submission.Entry) error {
	if err := r.submissions.Submit(ctx, entry); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, leaderboardKeyPrefix)
	return nil
}

func cloneBoard(b leaderboard.Board) leaderboard.Board {
	out := b
	out.Submissions = append([]leaderboard.Row{}, b.Submissions...)
	return out
}

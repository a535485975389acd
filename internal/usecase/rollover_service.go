package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/budget-gm/internal/domain/gameday"
	"github.com/riskibarqy/budget-gm/internal/domain/session"
	"github.com/riskibarqy/budget-gm/internal/platform/logging"
)

const defaultRolloverWorkers = 8

type sessionRoller interface {
	RollOver(ctx context.Context, sessionID string) (bool, error)
}

type RolloverResult struct {
	GameDay     string
	Scanned     int
	ResetCount  int
	FailedCount int
}

// RolloverService resets every stale session at the game-day cutover so
// sessions that are not opened still start the day empty.
type RolloverService struct {
	sessions session.Repository
	roller   sessionRoller
	calendar gameday.Calendar
	workers  int
	metrics  Recorder
	logger   *logging.Logger
	now      func() time.Time
}

func NewRolloverService(
	sessions session.Repository,
	roller sessionRoller,
	calendar gameday.Calendar,
	workers int,
	metrics Recorder,
	logger *logging.Logger,
) *RolloverService {
	if workers <= 0 {
		workers = defaultRolloverWorkers
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RolloverService{
		sessions: sessions,
		roller:   roller,
		calendar: calendar,
		workers:  workers,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *RolloverService) Run(ctx context.Context) (RolloverResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RolloverService.Run")
	defer span.End()

	today := s.calendar.Day(s.now())
	result := RolloverResult{GameDay: today}

	stale, err := s.sessions.ListStale(ctx, today)
	if err != nil {
		return result, fmt.Errorf("list stale sessions: %w", err)
	}
	result.Scanned = len(stale)
	if len(stale) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return result, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var resetCount atomic.Int32
	var failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, item := range stale {
		sessionID := item.ID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			reset, err := s.roller.RollOver(ctx, sessionID)
			if err != nil {
				failedCount.Add(1)
				s.logger.WarnContext(ctx, "session rollover failed", "session_id", sessionID, "error", err)
				return
			}
			if reset {
				resetCount.Add(1)
			}
		}); err != nil {
			workers.Done()
			return result, fmt.Errorf("submit rollover task: %w", err)
		}
	}
	workers.Wait()

	result.ResetCount = int(resetCount.Load())
	result.FailedCount = int(failedCount.Load())
	s.metrics.RolloverReset(result.ResetCount)
	s.logger.InfoContext(ctx, "game day rollover finished",
		"game_day", today,
		"scanned", result.Scanned,
		"reset", result.ResetCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

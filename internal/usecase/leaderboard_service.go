package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/budget-gm/internal/domain/gameday"
	"github.com/riskibarqy/budget-gm/internal/domain/leaderboard"
	"github.com/riskibarqy/budget-gm/internal/domain/session"
	"github.com/riskibarqy/budget-gm/internal/platform/logging"
)

// Overview is a leaderboard together with one nickname's play history.
type Overview struct {
	Board   leaderboard.Board
	History leaderboard.History
	Played  bool
}

type LeaderboardService struct {
	repo     leaderboard.Repository
	calendar gameday.Calendar
	logger   *logging.Logger
	now      func() time.Time
}

func NewLeaderboardService(repo leaderboard.Repository, calendar gameday.Calendar, logger *logging.Logger) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{
		repo:     repo,
		calendar: calendar,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *LeaderboardService) Board(ctx context.Context, date string) (leaderboard.Board, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Board")
	defer span.End()

	date, err := s.resolveDate(date)
	if err != nil {
		return leaderboard.Board{}, err
	}

	board, err := s.repo.GetByDate(ctx, date)
	if err != nil {
		return leaderboard.Board{}, fmt.Errorf("get leaderboard date=%s: %w", date, err)
	}
	if board.Date == "" {
		board.Date = date
	}
	return board.Sort(), nil
}

func (s *LeaderboardService) History(ctx context.Context, nickname string) (leaderboard.History, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.History")
	defer span.End()

	nickname, err := session.ValidateNickname(nickname)
	if err != nil {
		return leaderboard.History{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	history, err := s.repo.History(ctx, nickname)
	if err != nil {
		return leaderboard.History{}, fmt.Errorf("get history nickname=%s: %w", nickname, err)
	}
	return history, nil
}

// Overview loads the board and the nickname history concurrently.
func (s *LeaderboardService) Overview(ctx context.Context, nickname, date string) (Overview, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Overview")
	defer span.End()

	date, err := s.resolveDate(date)
	if err != nil {
		return Overview{}, err
	}
	if _, err := session.ValidateNickname(nickname); err != nil {
		return Overview{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var out Overview
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		board, err := s.Board(ctx, date)
		if err != nil {
			return err
		}
		out.Board = board
		return nil
	})
	p.Go(func(ctx context.Context) error {
		history, err := s.History(ctx, nickname)
		if err != nil {
			return err
		}
		out.History = history
		return nil
	})
	if err := p.Wait(); err != nil {
		return Overview{}, err
	}

	out.Played = out.History.Played(date)
	return out, nil
}

func (s *LeaderboardService) resolveDate(raw string) (string, error) {
	date := strings.TrimSpace(raw)
	if date == "" {
		return s.calendar.Day(s.now()), nil
	}
	if !gameday.ValidDate(date) {
		return "", fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return date, nil
}

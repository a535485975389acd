package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/budget-gm/internal/domain/gameday"
	"github.com/riskibarqy/budget-gm/internal/domain/leaderboard"
	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/submission"
)

// SubmissionRepository keeps daily submissions in memory and answers
// leaderboard and history queries from them. Nicknames are unique per day.
type SubmissionRepository struct {
	mu       sync.RWMutex
	calendar gameday.Calendar
	now      func() time.Time
	byDate   map[string]map[string]leaderboard.Row
}

func NewSubmissionRepository(calendar gameday.Calendar) *SubmissionRepository {
	return &SubmissionRepository{
		calendar: calendar,
		now:      time.Now,
		byDate:   make(map[string]map[string]leaderboard.Row),
	}
}

func (r *SubmissionRepository) Submit(_ context.Context, entry submission.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	date := r.calendar.Day(r.now())
	rows, ok := r.byDate[date]
	if !ok {
		rows = make(map[string]leaderboard.Row)
		r.byDate[date] = rows
	}

	key := strings.ToLower(strings.TrimSpace(entry.Nickname))
	if _, taken := rows[key]; taken {
		return submission.ErrNicknameTaken
	}
	rows[key] = leaderboard.Row{
		Nickname:      entry.Nickname,
		Players:       append([]player.Player(nil), entry.Players...),
		Wins:          entry.Results.Wins,
		Losses:        entry.Results.Losses,
		PredictedWins: entry.Results.Wins,
	}
	return nil
}

func (r *SubmissionRepository) GetByDate(_ context.Context, date string) (leaderboard.Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	board := leaderboard.Board{Date: date, Submissions: []leaderboard.Row{}}
	for _, row := range r.byDate[date] {
		row.Players = append([]player.Player(nil), row.Players...)
		board.Submissions = append(board.Submissions, row)
	}
	return board.Sort(), nil
}

func (r *SubmissionRepository) History(_ context.Context, nickname string) (leaderboard.History, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(nickname))
	out := leaderboard.History{Dates: []string{}, PlayedDates: []string{}}
	for date, rows := range r.byDate {
		out.Dates = append(out.Dates, date)
		if _, ok := rows[key]; ok {
			out.PlayedDates = append(out.PlayedDates, date)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out.Dates)))
	sort.Sort(sort.Reverse(sort.StringSlice(out.PlayedDates)))
	return out, nil
}

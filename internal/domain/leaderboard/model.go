package leaderboard

import (
	"context"
	"sort"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
)

type Row struct {
	Nickname      string
	Players       []player.Player
	Wins          int
	Losses        int
	PredictedWins int
}

// Board is one game day's submissions.
type Board struct {
	Date        string
	Submissions []Row
}

// Sort orders rows by wins descending, then nickname ascending.
func (b Board) Sort() Board {
	rows := append([]Row(nil), b.Submissions...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		return rows[i].Nickname < rows[j].Nickname
	})
	b.Submissions = rows
	return b
}

// History lists the game days with data and the ones a nickname played.
type History struct {
	Dates       []string
	PlayedDates []string
}

func (h History) Played(date string) bool {
	for _, item := range h.PlayedDates {
		if item == date {
			return true
		}
	}
	return false
}

type Repository interface {
	GetByDate(ctx context.Context, date string) (Board, error)
	History(ctx context.Context, nickname string) (History, error)
}

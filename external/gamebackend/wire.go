package gamebackend

import (
	"math"
	"strconv"
	"strings"

	"github.com/riskibarqy/budget-gm/internal/domain/leaderboard"
	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/submission"
)

// number accepts a JSON number, a numeric string or null. Anything it cannot
// parse decodes as zero.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		if unquoted, err := strconv.Unquote(text); err == nil {
			text = strings.TrimSpace(unquoted)
		}
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		*n = 0
		return nil
	}
	*n = number(value)
	return nil
}

// identifier accepts either a JSON string or a JSON number.
type identifier string

func (i *identifier) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*i = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = unquoted
	}
	*i = identifier(strings.TrimSpace(text))
	return nil
}

type playerPayload struct {
	ID            identifier `json:"Player ID"`
	Name          string     `json:"Full Name"`
	Position      string     `json:"Position"`
	Salary        number     `json:"Dollar Value"`
	Points        number     `json:"Points Per Game (Avg)"`
	Rebounds      number     `json:"Rebounds Per Game (Avg)"`
	Assists       number     `json:"Assists Per Game (Avg)"`
	Steals        number     `json:"Steals Per Game (Avg)"`
	Blocks        number     `json:"Blocks Per Game (Avg)"`
	FieldGoalPct  number     `json:"Field Goal % (Avg)"`
	FreeThrowPct  number     `json:"Free Throw % (Avg)"`
	ThreePointPct number     `json:"Three Point % (Avg)"`
	Turnovers     number     `json:"TOV"`
	Rating        number     `json:"Rating"`
}

func (p playerPayload) toDomain() player.Player {
	return player.Player{
		ID:       string(p.ID),
		Name:     strings.TrimSpace(p.Name),
		Position: player.ParsePosition(p.Position),
		Salary:   int(math.Round(float64(p.Salary))),
		Stats: player.Stats{
			Points:        float64(p.Points),
			Rebounds:      float64(p.Rebounds),
			Assists:       float64(p.Assists),
			Steals:        float64(p.Steals),
			Blocks:        float64(p.Blocks),
			Turnovers:     float64(p.Turnovers),
			FieldGoalPct:  float64(p.FieldGoalPct),
			FreeThrowPct:  float64(p.FreeThrowPct),
			ThreePointPct: float64(p.ThreePointPct),
			Rating:        float64(p.Rating),
		},
	}
}

func playerPayloadFrom(p player.Player) playerPayload {
	return playerPayload{
		ID:            identifier(p.ID),
		Name:          p.Name,
		Position:      string(p.Position),
		Salary:        number(p.Salary),
		Points:        number(p.Stats.Points),
		Rebounds:      number(p.Stats.Rebounds),
		Assists:       number(p.Stats.Assists),
		Steals:        number(p.Stats.Steals),
		Blocks:        number(p.Stats.Blocks),
		FieldGoalPct:  number(p.Stats.FieldGoalPct),
		FreeThrowPct:  number(p.Stats.FreeThrowPct),
		ThreePointPct: number(p.Stats.ThreePointPct),
		Turnovers:     number(p.Stats.Turnovers),
		Rating:        number(p.Stats.Rating),
	}
}

func toPlayers(items []playerPayload) []player.Player {
	out := make([]player.Player, 0, len(items))
	for _, item := range items {
		out = append(out, item.toDomain())
	}
	return out
}

type resultsPayload struct {
	Wins   number `json:"wins"`
	Losses number `json:"losses"`
}

type submitRequest struct {
	Nickname string          `json:"nickname"`
	Players  []playerPayload `json:"players"`
	Results  resultsPayload  `json:"results"`
}

func newSubmitRequest(entry submission.Entry) submitRequest {
	players := make([]playerPayload, 0, len(entry.Players))
	for _, item := range entry.Players {
		players = append(players, playerPayloadFrom(item))
	}
	return submitRequest{
		Nickname: entry.Nickname,
		Players:  players,
		Results: resultsPayload{
			Wins:   number(entry.Results.Wins),
			Losses: number(entry.Results.Losses),
		},
	}
}

type leaderboardResponse struct {
	Date        string               `json:"date"`
	Submissions []leaderboardPayload `json:"submissions"`
}

type leaderboardPayload struct {
	Nickname      string          `json:"nickname"`
	Players       []playerPayload `json:"players"`
	Results       resultsPayload  `json:"results"`
	PredictedWins number          `json:"predicted_wins"`
}

func (r leaderboardResponse) toDomain(date string) leaderboard.Board {
	board := leaderboard.Board{
		Date:        strings.TrimSpace(r.Date),
		Submissions: make([]leaderboard.Row, 0, len(r.Submissions)),
	}
	if board.Date == "" {
		board.Date = date
	}
	for _, item := range r.Submissions {
		board.Submissions = append(board.Submissions, leaderboard.Row{
			Nickname:      item.Nickname,
			Players:       toPlayers(item.Players),
			Wins:          int(math.Round(float64(item.Results.Wins))),
			Losses:        int(math.Round(float64(item.Results.Losses))),
			PredictedWins: int(math.Round(float64(item.PredictedWins))),
		})
	}
	return board.Sort()
}

type historyResponse struct {
	Dates       []string `json:"dates"`
	PlayedDates []string `json:"played_dates"`
}

func (r historyResponse) toDomain() leaderboard.History {
	out := leaderboard.History{
		Dates:       append([]string{}, r.Dates...),
		PlayedDates: append([]string{}, r.PlayedDates...),
	}
	return out
}

type errorResponse struct {
	Error string `json:"error"`
}

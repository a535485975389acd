package httpapi

import (
	"context"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/riskibarqy/budget-gm/internal/domain/leaderboard"
	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/prediction"
	"github.com/riskibarqy/budget-gm/internal/domain/roster"
	"github.com/riskibarqy/budget-gm/internal/domain/session"
	"github.com/riskibarqy/budget-gm/internal/usecase"
)

type playerStatsDTO struct {
	Points        float64 `json:"points"`
	Rebounds      float64 `json:"rebounds"`
	Assists       float64 `json:"assists"`
	Steals        float64 `json:"steals"`
	Blocks        float64 `json:"blocks"`
	Turnovers     float64 `json:"turnovers"`
	FieldGoalPct  float64 `json:"fieldGoalPct"`
	FreeThrowPct  float64 `json:"freeThrowPct"`
	ThreePointPct float64 `json:"threePointPct"`
	Rating        float64 `json:"rating"`
}

type playerDTO struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Position string         `json:"position"`
	Salary   int            `json:"salary"`
	Stats    playerStatsDTO `json:"stats"`
}

type salaryTierDTO struct {
	Salary  int         `json:"salary"`
	Players []playerDTO `json:"players"`
}

type playerPoolDTO struct {
	Players []playerDTO     `json:"players"`
	Tiers   []salaryTierDTO `json:"tiers"`
}

type submissionDTO struct {
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	ModelVersion string `json:"modelVersion"`
	SubmittedAt  string `json:"submittedAt"`
}

type sessionDTO struct {
	ID                string         `json:"id"`
	Nickname          string         `json:"nickname"`
	Phase             string         `json:"phase"`
	GameDay           string         `json:"gameDay"`
	LastSubmissionDay string         `json:"lastSubmissionDay,omitempty"`
	Budget            int            `json:"budget"`
	BudgetRemaining   int            `json:"budgetRemaining"`
	RosterSize        int            `json:"rosterSize"`
	MaxRosterSize     int            `json:"maxRosterSize"`
	Locked            bool           `json:"locked"`
	CanSubmit         bool           `json:"canSubmit"`
	Players           []playerDTO    `json:"players"`
	Submission        *submissionDTO `json:"submission,omitempty"`
	UpdatedAt         string         `json:"updatedAt"`
}

type teamStatsDTO struct {
	Points        float64 `json:"points"`
	Rebounds      float64 `json:"rebounds"`
	Assists       float64 `json:"assists"`
	Steals        float64 `json:"steals"`
	Blocks        float64 `json:"blocks"`
	Turnovers     float64 `json:"turnovers"`
	FieldGoalPct  float64 `json:"fieldGoalPct"`
	FreeThrowPct  float64 `json:"freeThrowPct"`
	ThreePointPct float64 `json:"threePointPct"`
}

type predictionDTO struct {
	Wins         int          `json:"wins"`
	Losses       int          `json:"losses"`
	Record       string       `json:"record"`
	BaseScore    float64      `json:"baseScore"`
	Multiplier   float64      `json:"multiplier"`
	Balance      string       `json:"balance"`
	Pattern      string       `json:"pattern,omitempty"`
	Outcome      string       `json:"outcome"`
	ModelVersion string       `json:"modelVersion"`
	TeamStats    teamStatsDTO `json:"teamStats"`
}

type rosterPredictionDTO struct {
	Players    []playerDTO   `json:"players"`
	Prediction predictionDTO `json:"prediction"`
}

type submitResultDTO struct {
	Session    sessionDTO    `json:"session"`
	Prediction predictionDTO `json:"prediction"`
}

type leaderboardPlayerDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Salary   int    `json:"salary"`
}

type leaderboardRowDTO struct {
	Rank          int                    `json:"rank"`
	Nickname      string                 `json:"nickname"`
	Wins          int                    `json:"wins"`
	Losses        int                    `json:"losses"`
	PredictedWins int                    `json:"predictedWins"`
	Players       []leaderboardPlayerDTO `json:"players"`
}

type leaderboardDTO struct {
	Date        string              `json:"date"`
	Submissions []leaderboardRowDTO `json:"submissions"`
}

type historyDTO struct {
	Nickname    string         `json:"nickname"`
	Dates       []string       `json:"dates"`
	PlayedDates []string       `json:"playedDates"`
	Played      bool           `json:"played"`
	Leaderboard leaderboardDTO `json:"leaderboard"`
}

func playerToDTO(ctx context.Context, v player.Player) playerDTO {
	_, span := startSpan(ctx, "httpapi.playerToDTO")
	defer span.End()

	return playerDTO{
		ID:       v.ID,
		Name:     v.Name,
		Position: string(v.Position),
		Salary:   v.Salary,
		Stats: playerStatsDTO{
			Points:        round2(v.Stats.Points),
			Rebounds:      round2(v.Stats.Rebounds),
			Assists:       round2(v.Stats.Assists),
			Steals:        round2(v.Stats.Steals),
			Blocks:        round2(v.Stats.Blocks),
			Turnovers:     round2(v.Stats.Turnovers),
			FieldGoalPct:  round2(v.Stats.FieldGoalPct),
			FreeThrowPct:  round2(v.Stats.FreeThrowPct),
			ThreePointPct: round2(v.Stats.ThreePointPct),
			Rating:        round2(v.Stats.Rating),
		},
	}
}

func playersToDTO(ctx context.Context, items []player.Player) []playerDTO {
	out := make([]playerDTO, 0, len(items))
	for _, item := range items {
		out = append(out, playerToDTO(ctx, item))
	}
	return out
}

// playerPoolToDTO lists tiers from the most expensive down.
func playerPoolToDTO(ctx context.Context, pool usecase.PlayerPool) playerPoolDTO {
	salaries := make([]int, 0, len(pool.Tiers))
	for salary := range pool.Tiers {
		salaries = append(salaries, salary)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(salaries)))

	tiers := make([]salaryTierDTO, 0, len(salaries))
	for _, salary := range salaries {
		tiers = append(tiers, salaryTierDTO{
			Salary:  salary,
			Players: playersToDTO(ctx, pool.Tiers[salary]),
		})
	}

	return playerPoolDTO{
		Players: playersToDTO(ctx, pool.Players),
		Tiers:   tiers,
	}
}

func sessionToDTO(ctx context.Context, v session.Session, rules roster.Rules) sessionDTO {
	out := sessionDTO{
		ID:                v.ID,
		Nickname:          v.Nickname,
		Phase:             string(v.Phase),
		GameDay:           v.GameDay,
		LastSubmissionDay: v.LastSubmissionDay,
		Budget:            rules.Budget,
		BudgetRemaining:   v.Roster.BudgetRemaining,
		RosterSize:        v.Roster.Size(),
		MaxRosterSize:     rules.MaxSize,
		Locked:            v.Frozen(),
		CanSubmit:         v.Phase == session.PhaseComplete && v.Nickname != "",
		Players:           playersToDTO(ctx, v.Roster.Players),
		UpdatedAt:         formatTime(v.UpdatedAt),
	}
	if v.Submission != nil {
		out.Submission = &submissionDTO{
			Wins:         v.Submission.Wins,
			Losses:       v.Submission.Losses,
			ModelVersion: v.Submission.ModelVersion,
			SubmittedAt:  formatTime(v.Submission.SubmittedAt),
		}
	}
	return out
}

func predictionToDTO(ctx context.Context, v prediction.Result) predictionDTO {
	_, span := startSpan(ctx, "httpapi.predictionToDTO")
	defer span.End()

	return predictionDTO{
		Wins:         v.Wins,
		Losses:       v.Losses,
		Record:       formatRecord(v.Wins, v.Losses),
		BaseScore:    round2(v.Base),
		Multiplier:   v.Multiplier,
		Balance:      string(v.Balance),
		Pattern:      v.Pattern,
		Outcome:      v.Outcome,
		ModelVersion: v.ModelVersion,
		TeamStats: teamStatsDTO{
			Points:        round2(v.Stats.Points),
			Rebounds:      round2(v.Stats.Rebounds),
			Assists:       round2(v.Stats.Assists),
			Steals:        round2(v.Stats.Steals),
			Blocks:        round2(v.Stats.Blocks),
			Turnovers:     round2(v.Stats.Turnovers),
			FieldGoalPct:  round2(v.Stats.FieldGoalPct),
			FreeThrowPct:  round2(v.Stats.FreeThrowPct),
			ThreePointPct: round2(v.Stats.ThreePointPct),
		},
	}
}

func leaderboardToDTO(ctx context.Context, v leaderboard.Board) leaderboardDTO {
	rows := make([]leaderboardRowDTO, 0, len(v.Submissions))
	for idx, row := range v.Submissions {
		players := make([]leaderboardPlayerDTO, 0, len(row.Players))
		for _, item := range row.Players {
			players = append(players, leaderboardPlayerDTO{
				ID:       item.ID,
				Name:     item.Name,
				Position: string(item.Position),
				Salary:   item.Salary,
			})
		}
		rows = append(rows, leaderboardRowDTO{
			Rank:          idx + 1,
			Nickname:      row.Nickname,
			Wins:          row.Wins,
			Losses:        row.Losses,
			PredictedWins: row.PredictedWins,
			Players:       players,
		})
	}
	_ = ctx

	return leaderboardDTO{Date: v.Date, Submissions: rows}
}

func formatRecord(wins, losses int) string {
	return strconv.Itoa(wins) + "-" + strconv.Itoa(losses)
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

package prediction

import (
	"fmt"
	"math"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
)

// Balance names the position-balance bucket a roster falls into.
type Balance string

const (
	BalanceOptimal    Balance = "optimal"
	BalanceSuboptimal Balance = "suboptimal"
	BalancePoor       Balance = "poor"
	BalanceNeutral    Balance = "neutral"
)

// TeamStats is the roster-level aggregate fed into the linear model.
type TeamStats struct {
	Points        float64
	Rebounds      float64
	Assists       float64
	Steals        float64
	Blocks        float64
	Turnovers     float64
	FieldGoalPct  float64
	FreeThrowPct  float64
	ThreePointPct float64
}

type Result struct {
	Wins         int
	Losses       int
	Base         float64
	Multiplier   float64
	Balance      Balance
	Pattern      string
	Outcome      string
	ModelVersion string
	Stats        TeamStats
}

// Aggregate sums counting stats and averages percentages over the roster.
// Missing or non-finite values count as zero.
func Aggregate(players []player.Player) TeamStats {
	var out TeamStats
	if len(players) == 0 {
		return out
	}

	for _, item := range players {
		s := item.Stats
		out.Points += finite(s.Points)
		out.Rebounds += finite(s.Rebounds)
		out.Assists += finite(s.Assists)
		out.Steals += finite(s.Steals)
		out.Blocks += finite(s.Blocks)
		out.Turnovers += finite(s.Turnovers)
		out.FieldGoalPct += finite(s.FieldGoalPct)
		out.FreeThrowPct += finite(s.FreeThrowPct)
		out.ThreePointPct += finite(s.ThreePointPct)
	}

	n := float64(len(players))
	out.FieldGoalPct /= n
	out.FreeThrowPct /= n
	out.ThreePointPct /= n
	return out
}

// BaseScore is the scaled linear combination of team stats.
func BaseScore(model Model, stats TeamStats) float64 {
	w := model.Weights
	sum := stats.Points*w.Points +
		stats.Rebounds*w.Rebounds +
		stats.Assists*w.Assists +
		stats.Steals*w.Steals +
		stats.Blocks*w.Blocks +
		stats.FieldGoalPct*w.FieldGoalPct +
		stats.FreeThrowPct*w.FreeThrowPct +
		stats.ThreePointPct*w.ThreePointPct -
		stats.Turnovers*w.Turnovers
	return finite(sum * model.Scale)
}

// PositionMultiplier classifies the lineup shape. Poor conditions are checked
// first, then suboptimal, then the optimal patterns; the first match wins.
func PositionMultiplier(model Model, players []player.Player) (float64, Balance, string) {
	c := CountPositions(players)
	guards := c.PG + c.SG

	switch {
	case c.C >= 4, guards >= 5, c.C == 0 && c.PF == 0:
		return model.Multipliers.Poor, BalancePoor, ""
	case c.C >= 3, c.PF >= 3, c.C >= 2 && c.PF >= 2, guards >= 4, c.PG >= 3,
		c.C == 0, c.PG == 0, c.PF == 0:
		return model.Multipliers.Suboptimal, BalanceSuboptimal, ""
	}

	for _, pattern := range model.OptimalPatterns {
		if pattern.matches(c) {
			return model.Multipliers.Optimal, BalanceOptimal, pattern.Name
		}
	}
	return 1.0, BalanceNeutral, ""
}

// Predict scores a complete roster. The result depends only on model and
// players.
func Predict(model Model, players []player.Player) (Result, error) {
	if len(players) != RosterSize {
		return Result{}, fmt.Errorf("%w: expected %d players, got %d", ErrIncompleteRoster, RosterSize, len(players))
	}

	stats := Aggregate(players)
	base := BaseScore(model, stats)
	multiplier, balance, pattern := PositionMultiplier(model, players)

	wins := int(math.Round(clamp(base*multiplier, model.Floor, model.Ceiling)))
	return Result{
		Wins:         wins,
		Losses:       SeasonGames - wins,
		Base:         base,
		Multiplier:   multiplier,
		Balance:      balance,
		Pattern:      pattern,
		Outcome:      Outcome(wins),
		ModelVersion: model.Version,
		Stats:        stats,
	}, nil
}

// Outcome labels a predicted win total.
func Outcome(wins int) string {
	switch {
	case wins >= 55:
		return "Championship Contender"
	case wins >= 45:
		return "Playoff Contender"
	case wins >= 35:
		return "Playoff Bubble Team"
	default:
		return "Rebuilding Year"
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

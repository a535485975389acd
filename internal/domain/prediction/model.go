package prediction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
)

const (
	SeasonGames = 82
	RosterSize  = 5
)

var (
	ErrIncompleteRoster = errors.New("prediction requires a complete roster")
	ErrInvalidModel     = errors.New("invalid prediction model")
)

// Weights are the linear coefficients applied to aggregated team stats.
// Turnovers are subtracted.
type Weights struct {
	Points        float64 `koanf:"points"`
	Rebounds      float64 `koanf:"rebounds"`
	Assists       float64 `koanf:"assists"`
	Steals        float64 `koanf:"steals"`
	Blocks        float64 `koanf:"blocks"`
	Turnovers     float64 `koanf:"turnovers"`
	FieldGoalPct  float64 `koanf:"field_goal_pct"`
	FreeThrowPct  float64 `koanf:"free_throw_pct"`
	ThreePointPct float64 `koanf:"three_point_pct"`
}

type Multipliers struct {
	Optimal    float64 `koanf:"optimal"`
	Suboptimal float64 `koanf:"suboptimal"`
	Poor       float64 `koanf:"poor"`
}

// Pattern is a named position-count tuple treated as a well balanced lineup.
type Pattern struct {
	Name string `koanf:"name"`
	PG   int    `koanf:"pg"`
	SG   int    `koanf:"sg"`
	SF   int    `koanf:"sf"`
	PF   int    `koanf:"pf"`
	C    int    `koanf:"c"`
}

func (p Pattern) Total() int {
	return p.PG + p.SG + p.SF + p.PF + p.C
}

func (p Pattern) matches(c Counts) bool {
	return p.PG == c.PG && p.SG == c.SG && p.SF == c.SF && p.PF == c.PF && p.C == c.C
}

// Model is a versioned coefficient table for the win predictor.
type Model struct {
	Version         string      `koanf:"version"`
	Scale           float64     `koanf:"scale"`
	Floor           float64     `koanf:"floor"`
	Ceiling         float64     `koanf:"ceiling"`
	Weights         Weights     `koanf:"weights"`
	Multipliers     Multipliers `koanf:"multipliers"`
	OptimalPatterns []Pattern   `koanf:"optimal_patterns"`
}

func DefaultModel() Model {
	return Model{
		Version: "v1",
		Scale:   1.1,
		Floor:   0,
		Ceiling: 74,
		Weights: Weights{
			Points:        0.58,
			Rebounds:      0.18,
			Assists:       0.08,
			Steals:        0.13,
			Blocks:        0.10,
			Turnovers:     0.19,
			FieldGoalPct:  0.20,
			FreeThrowPct:  0.06,
			ThreePointPct: 0.11,
		},
		Multipliers: Multipliers{
			Optimal:    1.10,
			Suboptimal: 0.90,
			Poor:       0.80,
		},
		OptimalPatterns: []Pattern{
			{Name: "traditional", PG: 1, SG: 1, SF: 1, PF: 1, C: 1},
			{Name: "positionless-wing", PG: 1, SG: 0, SF: 2, PF: 1, C: 1},
			{Name: "small-ball-guards", PG: 1, SG: 2, SF: 0, PF: 1, C: 1},
			{Name: "stretch-four", PG: 1, SG: 1, SF: 0, PF: 2, C: 1},
		},
	}
}

func (m Model) Validate() error {
	if strings.TrimSpace(m.Version) == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidModel)
	}
	if m.Scale <= 0 {
		return fmt.Errorf("%w: scale must be > 0", ErrInvalidModel)
	}
	if m.Floor < 0 || m.Floor > m.Ceiling {
		return fmt.Errorf("%w: floor must be within [0, ceiling]", ErrInvalidModel)
	}
	if m.Ceiling > SeasonGames {
		return fmt.Errorf("%w: ceiling must be <= %d", ErrInvalidModel, SeasonGames)
	}
	if m.Multipliers.Optimal <= 0 || m.Multipliers.Suboptimal <= 0 || m.Multipliers.Poor <= 0 {
		return fmt.Errorf("%w: multipliers must be > 0", ErrInvalidModel)
	}
	for _, pattern := range m.OptimalPatterns {
		if pattern.Total() != RosterSize {
			return fmt.Errorf("%w: pattern %q has %d slots, expected %d", ErrInvalidModel, pattern.Name, pattern.Total(), RosterSize)
		}
	}
	return nil
}

// Counts is the number of roster players per lineup slot.
type Counts struct {
	PG int
	SG int
	SF int
	PF int
	C  int
}

func CountPositions(players []player.Player) Counts {
	var out Counts
	for _, item := range players {
		switch item.Position {
		case player.PositionPointGuard:
			out.PG++
		case player.PositionShootingGuard:
			out.SG++
		case player.PositionSmallForward:
			out.SF++
		case player.PositionPowerForward:
			out.PF++
		case player.PositionCenter:
			out.C++
		}
	}
	return out
}

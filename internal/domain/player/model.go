package player

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinSalary = 1
	MaxSalary = 5
)

var ErrNoPlayersAvailable = errors.New("no players available")

// Position represents a basketball lineup slot.
type Position string

const (
	PositionPointGuard    Position = "PG"
	PositionShootingGuard Position = "SG"
	PositionSmallForward  Position = "SF"
	PositionPowerForward  Position = "PF"
	PositionCenter        Position = "C"
	PositionUnknown       Position = ""
)

var AllPositions = map[Position]struct{}{
	PositionPointGuard:    {},
	PositionShootingGuard: {},
	PositionSmallForward:  {},
	PositionPowerForward:  {},
	PositionCenter:        {},
}

var positionAliases = map[string]Position{
	"pg":             PositionPointGuard,
	"point guard":    PositionPointGuard,
	"sg":             PositionShootingGuard,
	"shooting guard": PositionShootingGuard,
	"g":              PositionShootingGuard,
	"guard":          PositionShootingGuard,
	"g-f":            PositionShootingGuard,
	"guard-forward":  PositionShootingGuard,
	"sf":             PositionSmallForward,
	"small forward":  PositionSmallForward,
	"f":              PositionSmallForward,
	"forward":        PositionSmallForward,
	"f-g":            PositionSmallForward,
	"forward-guard":  PositionSmallForward,
	"pf":             PositionPowerForward,
	"power forward":  PositionPowerForward,
	"f-c":            PositionPowerForward,
	"forward-center": PositionPowerForward,
	"c":              PositionCenter,
	"center":         PositionCenter,
	"c-f":            PositionCenter,
	"center-forward": PositionCenter,
}

// ParsePosition maps a feed label onto a lineup slot. Coarse labels such as
// "Guard" or "Forward-Center" land on their primary slot; unrecognised
// labels yield PositionUnknown.
func ParsePosition(raw string) Position {
	key := strings.ToLower(strings.TrimSpace(raw))
	if pos, ok := positionAliases[key]; ok {
		return pos
	}
	return PositionUnknown
}

// Stats holds per-game averages. Percentages are fractions in [0,1].
type Stats struct {
	Points        float64
	Rebounds      float64
	Assists       float64
	Steals        float64
	Blocks        float64
	Turnovers     float64
	FieldGoalPct  float64
	FreeThrowPct  float64
	ThreePointPct float64
	Rating        float64
}

// Player is a selectable athlete from the daily pool.
type Player struct {
	ID       string
	Name     string
	Position Position
	Salary   int
	Stats    Stats
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if p.Salary < MinSalary || p.Salary > MaxSalary {
		return fmt.Errorf("player salary must be between %d and %d, got %d", MinSalary, MaxSalary, p.Salary)
	}

	return nil
}

// GroupBySalary buckets players into salary tiers, preserving input order
// inside each tier.
func GroupBySalary(players []Player) map[int][]Player {
	out := make(map[int][]Player, MaxSalary)
	for _, item := range players {
		out[item.Salary] = append(out[item.Salary], item)
	}
	return out
}

// IndexByID returns a lookup keyed by player id. The first occurrence wins.
func IndexByID(players []Player) map[string]Player {
	out := make(map[string]Player, len(players))
	for _, item := range players {
		if _, exists := out[item.ID]; exists {
			continue
		}
		out[item.ID] = item
	}
	return out
}

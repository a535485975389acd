package memory

import "github.com/riskibarqy/budget-gm/internal/domain/player"

// SeedPool returns a small pool covering every position and salary tier.
func SeedPool() []player.Player {
	return []player.Player{
		{ID: "nba-pg-01", Name: "Marcus Vale", Position: player.PositionPointGuard, Salary: 5, Stats: player.Stats{Points: 22.4, Rebounds: 4.1, Assists: 7.9, Steals: 1.2, Blocks: 0.3, Turnovers: 2.8, FieldGoalPct: 0.47, FreeThrowPct: 0.86, ThreePointPct: 0.37}},
		{ID: "nba-pg-02", Name: "Dante Royce", Position: player.PositionPointGuard, Salary: 2, Stats: player.Stats{Points: 9.8, Rebounds: 2.6, Assists: 5.4, Steals: 0.9, Blocks: 0.1, Turnovers: 1.7, FieldGoalPct: 0.43, FreeThrowPct: 0.81, ThreePointPct: 0.34}},
		{ID: "nba-sg-01", Name: "Jalen Cross", Position: player.PositionShootingGuard, Salary: 5, Stats: player.Stats{Points: 18.0, Rebounds: 3.2, Assists: 2.5, Steals: 0.9, Blocks: 0.2, Turnovers: 1.6, FieldGoalPct: 0.45, FreeThrowPct: 0.82, ThreePointPct: 0.39}},
		{ID: "nba-sg-02", Name: "Theo Park", Position: player.PositionShootingGuard, Salary: 1, Stats: player.Stats{Points: 6.3, Rebounds: 1.9, Assists: 1.2, Steals: 0.5, Blocks: 0.1, Turnovers: 0.7, FieldGoalPct: 0.42, FreeThrowPct: 0.77, ThreePointPct: 0.36}},
		{ID: "nba-sf-01", Name: "Andre Holt", Position: player.PositionSmallForward, Salary: 3, Stats: player.Stats{Points: 12.5, Rebounds: 5.0, Assists: 2.1, Steals: 0.8, Blocks: 0.5, Turnovers: 1.2, FieldGoalPct: 0.46, FreeThrowPct: 0.78, ThreePointPct: 0.35}},
		{ID: "nba-sf-02", Name: "Kobe Lindqvist", Position: player.PositionSmallForward, Salary: 4, Stats: player.Stats{Points: 16.7, Rebounds: 6.2, Assists: 3.0, Steals: 1.1, Blocks: 0.6, Turnovers: 1.9, FieldGoalPct: 0.48, FreeThrowPct: 0.80, ThreePointPct: 0.36}},
		{ID: "nba-pf-01", Name: "Isaiah Brandt", Position: player.PositionPowerForward, Salary: 1, Stats: player.Stats{Points: 8.2, Rebounds: 6.4, Assists: 1.4, Steals: 0.6, Blocks: 0.7, Turnovers: 1.0, FieldGoalPct: 0.51, FreeThrowPct: 0.70, ThreePointPct: 0.31}},
		{ID: "nba-pf-02", Name: "Rashad Okoye", Position: player.PositionPowerForward, Salary: 4, Stats: player.Stats{Points: 17.1, Rebounds: 9.3, Assists: 2.4, Steals: 0.7, Blocks: 1.1, Turnovers: 2.0, FieldGoalPct: 0.52, FreeThrowPct: 0.74, ThreePointPct: 0.33}},
		{ID: "nba-c-01", Name: "Victor Amadi", Position: player.PositionCenter, Salary: 1, Stats: player.Stats{Points: 6.1, Rebounds: 8.8, Assists: 1.0, Steals: 0.5, Blocks: 1.6, Turnovers: 1.1, FieldGoalPct: 0.58, FreeThrowPct: 0.65}},
		{ID: "nba-c-02", Name: "Nikola Brzezinski", Position: player.PositionCenter, Salary: 5, Stats: player.Stats{Points: 24.9, Rebounds: 12.1, Assists: 8.3, Steals: 1.3, Blocks: 0.9, Turnovers: 3.0, FieldGoalPct: 0.58, FreeThrowPct: 0.82, ThreePointPct: 0.35}},
	}
}

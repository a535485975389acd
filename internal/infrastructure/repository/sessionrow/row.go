// Package sessionrow maps sessions to and from the flat row shape shared by
// the SQL session stores.
package sessionrow

import (
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/roster"
	"github.com/riskibarqy/budget-gm/internal/domain/session"
)

const Table = "game_sessions"

// Row is the scanned form of a game_sessions row.
type Row struct {
	PublicID          string    `db:"public_id"`
	Nickname          string    `db:"nickname"`
	Phase             string    `db:"phase"`
	GameDay           string    `db:"game_day"`
	LastSubmissionDay string    `db:"last_submission_day"`
	Roster            string    `db:"roster"`
	RosterLocked      bool      `db:"roster_locked"`
	BudgetRemaining   int       `db:"budget_remaining"`
	Submission        *string   `db:"submission"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

type rosterPlayerRecord struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Position      string  `json:"position"`
	Salary        int     `json:"salary"`
	Points        float64 `json:"pts"`
	Rebounds      float64 `json:"reb"`
	Assists       float64 `json:"ast"`
	Steals        float64 `json:"stl"`
	Blocks        float64 `json:"blk"`
	Turnovers     float64 `json:"tov"`
	FieldGoalPct  float64 `json:"fg_pct"`
	FreeThrowPct  float64 `json:"ft_pct"`
	ThreePointPct float64 `json:"fg3_pct"`
	Rating        float64 `json:"rating"`
}

type submissionRecord struct {
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	ModelVersion string    `json:"model_version"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

func From(item session.Session) (Row, error) {
	records := make([]rosterPlayerRecord, 0, len(item.Roster.Players))
	for _, p := range item.Roster.Players {
		records = append(records, rosterPlayerRecord{
			ID:            p.ID,
			Name:          p.Name,
			Position:      string(p.Position),
			Salary:        p.Salary,
			Points:        p.Stats.Points,
			Rebounds:      p.Stats.Rebounds,
			Assists:       p.Stats.Assists,
			Steals:        p.Stats.Steals,
			Blocks:        p.Stats.Blocks,
			Turnovers:     p.Stats.Turnovers,
			FieldGoalPct:  p.Stats.FieldGoalPct,
			FreeThrowPct:  p.Stats.FreeThrowPct,
			ThreePointPct: p.Stats.ThreePointPct,
			Rating:        p.Stats.Rating,
		})
	}
	rosterJSON, err := sonic.MarshalString(records)
	if err != nil {
		return Row{}, fmt.Errorf("encode roster: %w", err)
	}

	var submissionJSON *string
	if item.Submission != nil {
		encoded, err := sonic.MarshalString(submissionRecord{
			Wins:         item.Submission.Wins,
			Losses:       item.Submission.Losses,
			ModelVersion: item.Submission.ModelVersion,
			SubmittedAt:  item.Submission.SubmittedAt,
		})
		if err != nil {
			return Row{}, fmt.Errorf("encode submission: %w", err)
		}
		submissionJSON = &encoded
	}

	return Row{
		PublicID:          item.ID,
		Nickname:          item.Nickname,
		Phase:             string(item.Phase),
		GameDay:           item.GameDay,
		LastSubmissionDay: item.LastSubmissionDay,
		Roster:            rosterJSON,
		RosterLocked:      item.Roster.Locked,
		BudgetRemaining:   item.Roster.BudgetRemaining,
		Submission:        submissionJSON,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}, nil
}

// ToSession rebuilds the roster through the domain rules, so the stored
// budget column is informational only.
func ToSession(rules roster.Rules, row Row) (session.Session, error) {
	var records []rosterPlayerRecord
	if row.Roster != "" {
		if err := sonic.UnmarshalString(row.Roster, &records); err != nil {
			return session.Session{}, fmt.Errorf("decode roster session=%s: %w", row.PublicID, err)
		}
	}

	players := make([]player.Player, 0, len(records))
	for _, r := range records {
		players = append(players, player.Player{
			ID:       r.ID,
			Name:     r.Name,
			Position: player.Position(r.Position),
			Salary:   r.Salary,
			Stats: player.Stats{
				Points:        r.Points,
				Rebounds:      r.Rebounds,
				Assists:       r.Assists,
				Steals:        r.Steals,
				Blocks:        r.Blocks,
				Turnovers:     r.Turnovers,
				FieldGoalPct:  r.FieldGoalPct,
				FreeThrowPct:  r.FreeThrowPct,
				ThreePointPct: r.ThreePointPct,
				Rating:        r.Rating,
			},
		})
	}

	state, err := roster.Rehydrate(rules, players, row.RosterLocked)
	if err != nil {
		return session.Session{}, fmt.Errorf("rehydrate roster session=%s: %w", row.PublicID, err)
	}

	out := session.Session{
		ID:                row.PublicID,
		Nickname:          row.Nickname,
		Roster:            state,
		Phase:             session.Phase(row.Phase),
		GameDay:           row.GameDay,
		LastSubmissionDay: row.LastSubmissionDay,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	if row.Submission != nil && *row.Submission != "" {
		var record submissionRecord
		if err := sonic.UnmarshalString(*row.Submission, &record); err != nil {
			return session.Session{}, fmt.Errorf("decode submission session=%s: %w", row.PublicID, err)
		}
		out.Submission = &session.Submitted{
			Wins:         record.Wins,
			Losses:       record.Losses,
			ModelVersion: record.ModelVersion,
			SubmittedAt:  record.SubmittedAt,
		}
	}
	return out, nil
}

// Columns lists the row columns in insert order.
func Columns() []string {
	return []string{
		"public_id",
		"nickname",
		"phase",
		"game_day",
		"last_submission_day",
		"roster",
		"roster_locked",
		"budget_remaining",
		"submission",
		"created_at",
		"updated_at",
	}
}

package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/roster"
)

const (
	MinNicknameLength = 2
	MaxNicknameLength = 20
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrInvalidNickname   = errors.New("invalid nickname")
)

// Phase is the submission lifecycle of a session's roster.
type Phase string

const (
	PhaseBuilding  Phase = "building"
	PhaseComplete  Phase = "complete"
	PhaseSubmitted Phase = "submitted"
	PhaseLocked    Phase = "locked"
)

// Submitted records what was sent to the game backend.
type Submitted struct {
	Wins         int
	Losses       int
	ModelVersion string
	SubmittedAt  time.Time
}

// Session is the per-player state kept between requests: the roster/budget
// pair, nickname and submission bookkeeping for one game day.
type Session struct {
	ID                string
	Nickname          string
	Roster            roster.State
	Phase             Phase
	GameDay           string
	LastSubmissionDay string
	Submission        *Submitted
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func New(id, nickname, gameDay string, rules roster.Rules, now time.Time) Session {
	return Session{
		ID:        id,
		Nickname:  strings.TrimSpace(nickname),
		Roster:    roster.NewState(rules),
		Phase:     PhaseBuilding,
		GameDay:   gameDay,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s Session) Clone() Session {
	out := s
	out.Roster = s.Roster.Clone()
	if s.Submission != nil {
		sub := *s.Submission
		out.Submission = &sub
	}
	return out
}

func (s Session) Frozen() bool {
	return s.Phase == PhaseSubmitted || s.Phase == PhaseLocked
}

// Derive recomputes building/complete from the roster size. Frozen phases
// are left alone.
func Derive(rules roster.Rules, s Session) Session {
	if s.Frozen() {
		s.Roster.Locked = true
		return s
	}
	s.Roster.Locked = false
	if roster.IsComplete(rules, s.Roster) {
		s.Phase = PhaseComplete
	} else {
		s.Phase = PhaseBuilding
	}
	return s
}

func AddPlayer(rules roster.Rules, s Session, p player.Player) (Session, error) {
	if s.Frozen() {
		return s, roster.ErrSubmissionLocked
	}
	next, err := roster.Add(rules, s.Roster, p)
	if err != nil {
		return s, err
	}
	out := s.Clone()
	out.Roster = next
	return Derive(rules, out), nil
}

func RemovePlayer(rules roster.Rules, s Session, playerID string) (Session, error) {
	if s.Frozen() {
		return s, roster.ErrSubmissionLocked
	}
	next, err := roster.Remove(s.Roster, playerID)
	if err != nil {
		return s, err
	}
	out := s.Clone()
	out.Roster = next
	return Derive(rules, out), nil
}

func ValidateNickname(raw string) (string, error) {
	nickname := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(nickname)
	if n < MinNicknameLength || n > MaxNicknameLength {
		return "", fmt.Errorf("%w: must be %d-%d characters", ErrInvalidNickname, MinNicknameLength, MaxNicknameLength)
	}
	return nickname, nil
}

func SetNickname(s Session, raw string) (Session, error) {
	if s.Frozen() {
		return s, roster.ErrSubmissionLocked
	}
	nickname, err := ValidateNickname(raw)
	if err != nil {
		return s, err
	}
	out := s.Clone()
	out.Nickname = nickname
	return out, nil
}

// MarkSubmitted freezes a complete roster once its prediction is being sent.
func MarkSubmitted(s Session, sub Submitted) (Session, error) {
	if s.Phase != PhaseComplete {
		return s, fmt.Errorf("%w: submit from %s", ErrInvalidTransition, s.Phase)
	}
	out := s.Clone()
	out.Phase = PhaseSubmitted
	out.Roster.Locked = true
	out.Submission = &sub
	return out, nil
}

// MarkLocked records a confirmed submission for day.
func MarkLocked(s Session, day string) (Session, error) {
	if s.Phase != PhaseSubmitted {
		return s, fmt.Errorf("%w: lock from %s", ErrInvalidTransition, s.Phase)
	}
	out := s.Clone()
	out.Phase = PhaseLocked
	out.Roster.Locked = true
	out.LastSubmissionDay = day
	return out, nil
}

// Unfreeze returns a submitted session to complete after the backend
// rejected the submission.
func Unfreeze(rules roster.Rules, s Session) (Session, error) {
	if s.Phase != PhaseSubmitted {
		return s, fmt.Errorf("%w: unfreeze from %s", ErrInvalidTransition, s.Phase)
	}
	out := s.Clone()
	out.Phase = PhaseBuilding
	out.Submission = nil
	return Derive(rules, out), nil
}

// Load applies the "already submitted today" record found on load.
func Load(s Session, today string) Session {
	if s.LastSubmissionDay == "" || s.LastSubmissionDay != today || s.Phase == PhaseLocked {
		return s
	}
	out := s.Clone()
	out.Phase = PhaseLocked
	out.Roster.Locked = true
	return out
}

// Rollover resets the session to an empty building roster when a new game
// day has started. The caller decides isNewGameDay.
func Rollover(rules roster.Rules, s Session, isNewGameDay bool, today string) Session {
	if !isNewGameDay {
		return s
	}
	out := s.Clone()
	out.Roster = roster.NewState(rules)
	out.Phase = PhaseBuilding
	out.GameDay = today
	out.Submission = nil
	return out
}

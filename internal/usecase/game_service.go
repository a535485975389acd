package usecase

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/budget-gm/internal/domain/gameday"
	"github.com/riskibarqy/budget-gm/internal/domain/prediction"
	"github.com/riskibarqy/budget-gm/internal/domain/roster"
	"github.com/riskibarqy/budget-gm/internal/domain/session"
	"github.com/riskibarqy/budget-gm/internal/domain/submission"
	"github.com/riskibarqy/budget-gm/internal/platform/id"
	"github.com/riskibarqy/budget-gm/internal/platform/logging"
)

const sessionLockStripes = 64

const (
	submissionAccepted      = "accepted"
	submissionNicknameTaken = "nickname_taken"
	submissionFailed        = "failed"
)

type GameServiceConfig struct {
	Sessions    session.Repository
	Pool        *PoolService
	Predictor   *PredictionService
	Submissions submission.Repository
	Calendar    gameday.Calendar
	Rules       roster.Rules
	IDs         id.Generator
	Metrics     Recorder
	Logger      *logging.Logger
}

type SubmitResult struct {
	Session    session.Session
	Prediction prediction.Result
}

// GameService drives a session through building, complete, submitted and
// locked. Mutations on one session are serialized.
type GameService struct {
	sessions    session.Repository
	pool        *PoolService
	predictor   *PredictionService
	submissions submission.Repository
	calendar    gameday.Calendar
	rules       roster.Rules
	ids         id.Generator
	metrics     Recorder
	logger      *logging.Logger
	now         func() time.Time

	locks [sessionLockStripes]sync.Mutex
}

func NewGameService(cfg GameServiceConfig) *GameService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = nopRecorder{}
	}
	ids := cfg.IDs
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	rules := cfg.Rules
	if rules.Validate() != nil {
		rules = roster.DefaultRules()
	}
	return &GameService{
		sessions:    cfg.Sessions,
		pool:        cfg.Pool,
		predictor:   cfg.Predictor,
		submissions: cfg.Submissions,
		calendar:    cfg.Calendar,
		rules:       rules,
		ids:         ids,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *GameService) Rules() roster.Rules {
	return s.rules
}

func (s *GameService) Start(ctx context.Context, nickname string) (session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Start")
	defer span.End()

	nickname = strings.TrimSpace(nickname)
	if nickname != "" {
		valid, err := session.ValidateNickname(nickname)
		if err != nil {
			return session.Session{}, err
		}
		nickname = valid
	}

	sessionID, err := s.ids.NewID()
	if err != nil {
		return session.Session{}, fmt.Errorf("generate session id: %w", err)
	}

	now := s.now().UTC()
	item := session.New(sessionID, nickname, s.calendar.Day(now), s.rules, now)
	if err := s.sessions.Upsert(ctx, item); err != nil {
		return session.Session{}, fmt.Errorf("create session: %w", err)
	}

	s.logger.InfoContext(ctx, "session started", "session_id", item.ID, "game_day", item.GameDay)
	return item, nil
}

func (s *GameService) Get(ctx context.Context, sessionID string) (session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Get")
	defer span.End()

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	return s.load(ctx, sessionID)
}

func (s *GameService) AddPlayer(ctx context.Context, sessionID, playerID string) (session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.AddPlayer", attribute.String("player.id", playerID))
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return session.Session{}, fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.load(ctx, sessionID)
	if err != nil {
		return session.Session{}, err
	}
	if current.Frozen() {
		s.metrics.RosterMutation("add", roster.ErrSubmissionLocked)
		return current, roster.ErrSubmissionLocked
	}

	found, err := s.pool.Lookup(ctx, playerID)
	if err != nil {
		s.metrics.RosterMutation("add", err)
		return current, err
	}

	next, err := session.AddPlayer(s.rules, current, found[0])
	s.metrics.RosterMutation("add", err)
	if err != nil {
		return current, err
	}
	return s.save(ctx, next)
}

func (s *GameService) RemovePlayer(ctx context.Context, sessionID, playerID string) (session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.RemovePlayer", attribute.String("player.id", playerID))
	defer span.End()

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.load(ctx, sessionID)
	if err != nil {
		return session.Session{}, err
	}

	next, err := session.RemovePlayer(s.rules, current, strings.TrimSpace(playerID))
	s.metrics.RosterMutation("remove", err)
	if err != nil {
		return current, err
	}
	return s.save(ctx, next)
}

func (s *GameService) SetNickname(ctx context.Context, sessionID, nickname string) (session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.SetNickname")
	defer span.End()

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.load(ctx, sessionID)
	if err != nil {
		return session.Session{}, err
	}

	next, err := session.SetNickname(current, nickname)
	if err != nil {
		return current, err
	}
	return s.save(ctx, next)
}

// Preview predicts the current roster without submitting it.
func (s *GameService) Preview(ctx context.Context, sessionID string) (prediction.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Preview")
	defer span.End()

	current, err := s.Get(ctx, sessionID)
	if err != nil {
		return prediction.Result{}, err
	}
	if !roster.IsComplete(s.rules, current.Roster) {
		return prediction.Result{}, fmt.Errorf("%w: %d of %d players selected", prediction.ErrIncompleteRoster, current.Roster.Size(), s.rules.MaxSize)
	}
	return s.predictor.PredictPlayers(ctx, current.Roster.Players)
}

// Submit predicts the roster, freezes it and records it with the game
// backend exactly once. A rejected submission leaves the roster complete
// so the user can retry.
func (s *GameService) Submit(ctx context.Context, sessionID string) (SubmitResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Submit")
	defer span.End()

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.load(ctx, sessionID)
	if err != nil {
		return SubmitResult{}, err
	}
	if current.Frozen() {
		return SubmitResult{}, fmt.Errorf("%w: already submitted for %s", roster.ErrSubmissionLocked, current.GameDay)
	}
	if current.Phase != session.PhaseComplete {
		return SubmitResult{}, fmt.Errorf("%w: %d of %d players selected", prediction.ErrIncompleteRoster, current.Roster.Size(), s.rules.MaxSize)
	}
	nickname, err := session.ValidateNickname(current.Nickname)
	if err != nil {
		return SubmitResult{}, err
	}

	result, err := s.predictor.PredictPlayers(ctx, current.Roster.Players)
	if err != nil {
		return SubmitResult{}, err
	}

	submitted, err := session.MarkSubmitted(current, session.Submitted{
		Wins:         result.Wins,
		Losses:       result.Losses,
		ModelVersion: result.ModelVersion,
		SubmittedAt:  s.now().UTC(),
	})
	if err != nil {
		return SubmitResult{}, err
	}
	submitted, err = s.save(ctx, submitted)
	if err != nil {
		return SubmitResult{}, err
	}

	entry := submission.Entry{
		Nickname: nickname,
		Players:  submitted.Roster.Players,
		Results:  submission.Results{Wins: result.Wins, Losses: result.Losses},
	}
	if err := entry.Validate(); err != nil {
		return SubmitResult{}, s.rejectSubmission(ctx, submitted, fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}

	if err := s.submissions.Submit(ctx, entry); err != nil {
		return SubmitResult{}, s.rejectSubmission(ctx, submitted, err)
	}

	locked, err := session.MarkLocked(submitted, s.calendar.Day(s.now()))
	if err != nil {
		return SubmitResult{}, err
	}
	locked = s.saveAccepted(ctx, locked)

	s.metrics.Submission(submissionAccepted)
	s.logger.InfoContext(ctx, "roster submitted",
		"session_id", locked.ID,
		"nickname", locked.Nickname,
		"wins", result.Wins,
		"losses", result.Losses,
	)
	return SubmitResult{Session: locked, Prediction: result}, nil
}

// RollOver resets one session if its game day is stale. It reports whether
// the session was reset.
func (s *GameService) RollOver(ctx context.Context, sessionID string) (bool, error) {
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	current, exists, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("get session: %w", err)
	}
	if !exists {
		return false, nil
	}

	now := s.now()
	if !s.calendar.IsNewGameDay(current.GameDay, now) {
		return false, nil
	}
	next := session.Rollover(s.rules, current, true, s.calendar.Day(now))
	if _, err := s.save(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

func (s *GameService) rejectSubmission(ctx context.Context, submitted session.Session, cause error) error {
	outcome := submissionFailed
	if errors.Is(cause, submission.ErrNicknameTaken) {
		outcome = submissionNicknameTaken
	}
	s.metrics.Submission(outcome)

	restored, err := session.Unfreeze(s.rules, submitted)
	if err != nil {
		s.logger.ErrorContext(ctx, "unfreeze rejected session failed", "session_id", submitted.ID, "error", err)
		return cause
	}
	if _, err := s.save(ctx, restored); err != nil {
		s.logger.ErrorContext(ctx, "persist rejected session failed", "session_id", submitted.ID, "error", err)
	}

	s.logger.WarnContext(ctx, "roster submission rejected",
		"session_id", submitted.ID,
		"nickname", submitted.Nickname,
		"outcome", outcome,
		"error", cause,
	)
	return fmt.Errorf("submit roster: %w", cause)
}

// load reads a session and applies the game-day rules that depend on the
// clock. Any change is persisted before returning.
func (s *GameService) load(ctx context.Context, sessionID string) (session.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if !id.Valid(sessionID) {
		return session.Session{}, fmt.Errorf("%w: session_id must be a uuid", ErrInvalidInput)
	}

	current, exists, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return session.Session{}, fmt.Errorf("get session: %w", err)
	}
	if !exists {
		return session.Session{}, fmt.Errorf("%w: session=%s", ErrNotFound, sessionID)
	}

	now := s.now()
	today := s.calendar.Day(now)
	rolled := s.calendar.IsNewGameDay(current.GameDay, now)

	next := session.Rollover(s.rules, current, rolled, today)
	next = session.Load(next, today)
	next = session.Derive(s.rules, next)

	if !rolled && next.Phase == current.Phase && next.Roster.Locked == current.Roster.Locked {
		return current, nil
	}
	if rolled {
		s.logger.DebugContext(ctx, "session rolled over", "session_id", sessionID, "from", current.GameDay, "to", today)
	}
	return s.save(ctx, next)
}

// saveAccepted persists the lock after the backend took the entry. The POST
// cannot be repeated, so a failed write is retried once and then logged; the
// stored session stays submitted (still frozen) until the next rollover.
func (s *GameService) saveAccepted(ctx context.Context, locked session.Session) session.Session {
	saved, err := s.save(ctx, locked)
	if err == nil {
		return saved
	}
	s.logger.WarnContext(ctx, "persist locked session failed, retrying", "session_id", locked.ID, "error", err)

	saved, err = s.save(ctx, locked)
	if err == nil {
		return saved
	}
	s.logger.ErrorContext(ctx, "submission accepted but lock not persisted",
		"session_id", locked.ID,
		"nickname", locked.Nickname,
		"game_day", locked.LastSubmissionDay,
		"error", err,
	)
	locked.UpdatedAt = s.now().UTC()
	return locked
}

func (s *GameService) save(ctx context.Context, item session.Session) (session.Session, error) {
	item.UpdatedAt = s.now().UTC()
	if err := s.sessions.Upsert(ctx, item); err != nil {
		return session.Session{}, fmt.Errorf("save session: %w", err)
	}
	return item, nil
}

func (s *GameService) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%sessionLockStripes]
}

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/riskibarqy/budget-gm/internal/domain/gameday"
	"github.com/riskibarqy/budget-gm/internal/domain/prediction"
	"github.com/riskibarqy/budget-gm/internal/domain/roster"
	"github.com/riskibarqy/budget-gm/internal/domain/session"
	"github.com/riskibarqy/budget-gm/internal/domain/submission"
	"github.com/riskibarqy/budget-gm/internal/infrastructure/repository/memory"
	submissionmock "github.com/riskibarqy/budget-gm/internal/mocks/domain/submission"
	"github.com/riskibarqy/budget-gm/internal/platform/logging"
)

const testSessionID = "8f14e45f-ceea-467f-a0e6-0a1b2c3d4e5f"

type fixedIDGenerator struct {
	id string
}

func (g fixedIDGenerator) NewID() (string, error) {
	return g.id, nil
}

type gameFixture struct {
	service     *GameService
	sessions    *memory.SessionRepository
	submissions submission.Repository
	calendar    gameday.Calendar
	now         time.Time
}

func newGameFixture(t *testing.T, submissions submission.Repository) *gameFixture {
	t.Helper()

	calendar, err := gameday.NewCalendar(gameday.DefaultTimezone, gameday.DefaultCutoverHour)
	if err != nil {
		t.Fatalf("new calendar: %v", err)
	}
	if submissions == nil {
		submissions = memory.NewSubmissionRepository(calendar)
	}

	logger := logging.NewNop()
	pool := NewPoolService(memory.NewPoolRepository(memory.SeedPool()), logger)
	rules := roster.DefaultRules()
	sessions := memory.NewSessionRepository()

	service := NewGameService(GameServiceConfig{
		Sessions:    sessions,
		Pool:        pool,
		Predictor:   NewPredictionService(pool, prediction.DefaultModel(), rules, nil, logger),
		Submissions: submissions,
		Calendar:    calendar,
		Rules:       rules,
		IDs:         fixedIDGenerator{id: testSessionID},
		Logger:      logger,
	})

	f := &gameFixture{
		service:     service,
		sessions:    sessions,
		submissions: submissions,
		calendar:    calendar,
		now:         time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC),
	}
	service.now = func() time.Time { return f.now }
	return f
}

// contenderLineup costs exactly the full budget.
var contenderLineup = []string{"nba-pg-01", "nba-sg-01", "nba-sf-01", "nba-pf-01", "nba-c-01"}

func (f *gameFixture) fill(t *testing.T, playerIDs ...string) session.Session {
	t.Helper()

	var (
		current session.Session
		err     error
	)
	for _, playerID := range playerIDs {
		current, err = f.service.AddPlayer(t.Context(), testSessionID, playerID)
		if err != nil {
			t.Fatalf("add player %s: %v", playerID, err)
		}
	}
	return current
}

func TestGameService_BuildRosterToComplete(t *testing.T) {
	f := newGameFixture(t, nil)

	started, err := f.service.Start(t.Context(), "hooper")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Phase != session.PhaseBuilding || started.Roster.BudgetRemaining != 15 {
		t.Fatalf("unexpected new session: phase=%s budget=%d", started.Phase, started.Roster.BudgetRemaining)
	}
	if started.GameDay != "2026-01-10" {
		t.Fatalf("unexpected game day: %s", started.GameDay)
	}

	current := f.fill(t, contenderLineup[:4]...)
	if current.Phase != session.PhaseBuilding {
		t.Fatalf("expected building with 4 players, got %s", current.Phase)
	}
	if current.Roster.BudgetRemaining != 1 {
		t.Fatalf("expected budget 1 after 4 players, got %d", current.Roster.BudgetRemaining)
	}

	current = f.fill(t, contenderLineup[4])
	if current.Phase != session.PhaseComplete {
		t.Fatalf("expected complete with 5 players, got %s", current.Phase)
	}
	if current.Roster.BudgetRemaining != 0 {
		t.Fatalf("expected budget 0, got %d", current.Roster.BudgetRemaining)
	}

	current, err = f.service.RemovePlayer(t.Context(), testSessionID, "nba-sf-01")
	if err != nil {
		t.Fatalf("remove player: %v", err)
	}
	if current.Phase != session.PhaseBuilding || current.Roster.BudgetRemaining != 3 {
		t.Fatalf("unexpected state after remove: phase=%s budget=%d", current.Phase, current.Roster.BudgetRemaining)
	}
}

func TestGameService_AddPlayerRejections(t *testing.T) {
	f := newGameFixture(t, nil)
	if _, err := f.service.Start(t.Context(), ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.fill(t, "nba-pg-01", "nba-c-02", "nba-sf-02")

	testCases := []struct {
		name     string
		playerID string
		wantErr  error
	}{
		{name: "duplicate", playerID: "nba-pg-01", wantErr: roster.ErrDuplicatePlayer},
		{name: "over budget", playerID: "nba-sg-01", wantErr: roster.ErrInsufficientBudget},
		{name: "unknown player", playerID: "nba-xx-99", wantErr: ErrNotFound},
		{name: "blank id", playerID: "  ", wantErr: ErrInvalidInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.service.AddPlayer(t.Context(), testSessionID, tc.playerID)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr != ErrInvalidInput && got.Roster.Size() != 3 {
				t.Fatalf("roster changed on rejection: size=%d", got.Roster.Size())
			}
		})
	}

	stored, _, err := f.sessions.GetByID(t.Context(), testSessionID)
	if err != nil {
		t.Fatalf("get stored session: %v", err)
	}
	if stored.Roster.Size() != 3 || stored.Roster.BudgetRemaining != 1 {
		t.Fatalf("unexpected stored roster: size=%d budget=%d", stored.Roster.Size(), stored.Roster.BudgetRemaining)
	}
}

func TestGameService_SubmitLocksRoster(t *testing.T) {
	f := newGameFixture(t, nil)
	if _, err := f.service.Start(t.Context(), "hooper"); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.fill(t, contenderLineup...)

	result, err := f.service.Submit(t.Context(), testSessionID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Prediction.Wins != 54 || result.Prediction.Losses != 28 {
		t.Fatalf("unexpected prediction: %d-%d", result.Prediction.Wins, result.Prediction.Losses)
	}
	if result.Session.Phase != session.PhaseLocked || result.Session.LastSubmissionDay != "2026-01-10" {
		t.Fatalf("unexpected session after submit: phase=%s day=%s", result.Session.Phase, result.Session.LastSubmissionDay)
	}

	if _, err := f.service.RemovePlayer(t.Context(), testSessionID, "nba-pg-01"); !errors.Is(err, roster.ErrSubmissionLocked) {
		t.Fatalf("expected locked roster on remove, got %v", err)
	}
	if _, err := f.service.Submit(t.Context(), testSessionID); !errors.Is(err, roster.ErrSubmissionLocked) {
		t.Fatalf("expected locked roster on resubmit, got %v", err)
	}
}

func TestGameService_SubmitRequiresCompleteRosterAndNickname(t *testing.T) {
	f := newGameFixture(t, nil)
	if _, err := f.service.Start(t.Context(), ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.fill(t, contenderLineup[:3]...)

	if _, err := f.service.Submit(t.Context(), testSessionID); !errors.Is(err, prediction.ErrIncompleteRoster) {
		t.Fatalf("expected incomplete roster, got %v", err)
	}

	f.fill(t, contenderLineup[3:]...)
	if _, err := f.service.Submit(t.Context(), testSessionID); !errors.Is(err, session.ErrInvalidNickname) {
		t.Fatalf("expected invalid nickname, got %v", err)
	}
}

func TestGameService_SubmitNicknameTakenKeepsRosterEditable(t *testing.T) {
	submissions := submissionmock.NewRepository(t)
	f := newGameFixture(t, submissions)

	submissions.
		On("Submit", mock.Anything, mock.MatchedBy(func(entry submission.Entry) bool {
			return entry.Nickname == "hooper" && len(entry.Players) == 5 && entry.Results.Wins+entry.Results.Losses == 82
		})).
		Return(submission.ErrNicknameTaken).
		Once()

	if _, err := f.service.Start(t.Context(), "hooper"); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.fill(t, contenderLineup...)

	_, err := f.service.Submit(t.Context(), testSessionID)
	if !errors.Is(err, submission.ErrNicknameTaken) {
		t.Fatalf("expected ErrNicknameTaken, got %v", err)
	}

	current, err := f.service.Get(t.Context(), testSessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.Phase != session.PhaseComplete || current.Roster.Locked || current.Submission != nil {
		t.Fatalf("expected editable complete session, got phase=%s locked=%v", current.Phase, current.Roster.Locked)
	}

	if _, err := f.service.SetNickname(t.Context(), testSessionID, "hooper2"); err != nil {
		t.Fatalf("rename after rejection: %v", err)
	}
}

func TestGameService_SubmitBackendFailureCallsOnce(t *testing.T) {
	submissions := submissionmock.NewRepository(t)
	f := newGameFixture(t, submissions)

	submissions.
		On("Submit", mock.Anything, mock.Anything).
		Return(ErrDependencyUnavailable).
		Once()

	if _, err := f.service.Start(t.Context(), "hooper"); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.fill(t, contenderLineup...)

	if _, err := f.service.Submit(t.Context(), testSessionID); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	submissions.AssertNumberOfCalls(t, "Submit", 1)
}

func TestGameService_RolloverOnNewGameDay(t *testing.T) {
	f := newGameFixture(t, nil)
	if _, err := f.service.Start(t.Context(), "hooper"); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.fill(t, contenderLineup...)
	if _, err := f.service.Submit(t.Context(), testSessionID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// 00:30 New York is still the same game day.
	f.now = time.Date(2026, 1, 11, 5, 30, 0, 0, time.UTC)
	current, err := f.service.Get(t.Context(), testSessionID)
	if err != nil {
		t.Fatalf("get before cutover: %v", err)
	}
	if current.Phase != session.PhaseLocked {
		t.Fatalf("expected locked before cutover, got %s", current.Phase)
	}

	f.now = time.Date(2026, 1, 11, 6, 30, 0, 0, time.UTC)
	current, err = f.service.Get(t.Context(), testSessionID)
	if err != nil {
		t.Fatalf("get after cutover: %v", err)
	}
	if current.Phase != session.PhaseBuilding || current.Roster.Size() != 0 || current.Roster.BudgetRemaining != 15 {
		t.Fatalf("expected reset session, got phase=%s size=%d budget=%d", current.Phase, current.Roster.Size(), current.Roster.BudgetRemaining)
	}
	if current.GameDay != "2026-01-11" || current.Nickname != "hooper" {
		t.Fatalf("unexpected session after rollover: day=%s nickname=%s", current.GameDay, current.Nickname)
	}
}

func TestGameService_GetValidatesSessionID(t *testing.T) {
	f := newGameFixture(t, nil)

	if _, err := f.service.Get(t.Context(), "not-a-uuid"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := f.service.Get(context.Background(), testSessionID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGameService_Preview(t *testing.T) {
	f := newGameFixture(t, nil)
	if _, err := f.service.Start(t.Context(), ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.fill(t, contenderLineup[:4]...)

	if _, err := f.service.Preview(t.Context(), testSessionID); !errors.Is(err, prediction.ErrIncompleteRoster) {
		t.Fatalf("expected incomplete roster, got %v", err)
	}

	f.fill(t, contenderLineup[4])
	result, err := f.service.Preview(t.Context(), testSessionID)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if result.Wins != 54 || result.Balance != prediction.BalanceOptimal {
		t.Fatalf("unexpected preview: wins=%d balance=%s", result.Wins, result.Balance)
	}
}

// lockWriteFailingRepository fails the first n writes of a locked session.
type lockWriteFailingRepository struct {
	*memory.SessionRepository
	failures int
	attempts int
}

func (r *lockWriteFailingRepository) Upsert(ctx context.Context, item session.Session) error {
	if item.Phase == session.PhaseLocked {
		r.attempts++
		if r.attempts <= r.failures {
			return errors.New("connection reset")
		}
	}
	return r.SessionRepository.Upsert(ctx, item)
}

func TestGameService_SubmitAcceptedLockWrite(t *testing.T) {
	testCases := []struct {
		name        string
		failures    int
		wantStored  session.Phase
		wantAttempt int
		wantErrLog  bool
	}{
		{name: "retry succeeds", failures: 1, wantStored: session.PhaseLocked, wantAttempt: 2},
		{name: "retry fails", failures: 2, wantStored: session.PhaseSubmitted, wantAttempt: 2, wantErrLog: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			submissions := submissionmock.NewRepository(t)
			submissions.On("Submit", mock.Anything, mock.Anything).Return(nil).Once()

			f := newGameFixture(t, submissions)
			repo := &lockWriteFailingRepository{SessionRepository: f.sessions, failures: tc.failures}
			f.service.sessions = repo
			core, logs := observer.New(zap.WarnLevel)
			f.service.logger = logging.FromZap(zap.New(core))

			if _, err := f.service.Start(t.Context(), "hooper"); err != nil {
				t.Fatalf("start: %v", err)
			}
			f.fill(t, contenderLineup...)

			result, err := f.service.Submit(t.Context(), testSessionID)
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			if result.Session.Phase != session.PhaseLocked || result.Session.LastSubmissionDay != "2026-01-10" {
				t.Fatalf("unexpected result session: phase=%s day=%s", result.Session.Phase, result.Session.LastSubmissionDay)
			}
			if repo.attempts != tc.wantAttempt {
				t.Fatalf("expected %d lock writes, got %d", tc.wantAttempt, repo.attempts)
			}

			stored, ok, err := f.sessions.GetByID(t.Context(), testSessionID)
			if err != nil || !ok {
				t.Fatalf("get stored session: ok=%v err=%v", ok, err)
			}
			if stored.Phase != tc.wantStored || !stored.Roster.Locked {
				t.Fatalf("unexpected stored session: phase=%s locked=%v", stored.Phase, stored.Roster.Locked)
			}

			gotErrLog := logs.FilterMessage("submission accepted but lock not persisted").Len() == 1
			if gotErrLog != tc.wantErrLog {
				t.Fatalf("expected error log=%v, got %v", tc.wantErrLog, gotErrLog)
			}
			submissions.AssertNumberOfCalls(t, "Submit", 1)
		})
	}
}

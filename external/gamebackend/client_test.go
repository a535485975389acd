package gamebackend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/submission"
	"github.com/riskibarqy/budget-gm/internal/platform/logging"
	"github.com/riskibarqy/budget-gm/internal/platform/resilience"
	"github.com/riskibarqy/budget-gm/internal/usecase"
)

func newTestClient(t *testing.T, serverURL string, maxRetries int, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()

	return NewClient(ClientConfig{
		HTTPClient:     &http.Client{Timeout: 5 * time.Second},
		BaseURL:        serverURL,
		MaxRetries:     maxRetries,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
}

func samplePlayers() []player.Player {
	return []player.Player{
		{ID: "1", Name: "A", Position: player.PositionPointGuard, Salary: 5},
		{ID: "2", Name: "B", Position: player.PositionShootingGuard, Salary: 4},
		{ID: "3", Name: "C", Position: player.PositionSmallForward, Salary: 3},
		{ID: "4", Name: "D", Position: player.PositionPowerForward, Salary: 2},
		{ID: "5", Name: "E", Position: player.PositionCenter, Salary: 1},
	}
}

func TestClient_ListPoolDecodesLooseNumbers(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/players" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = jsoniter.NewEncoder(w).Encode([]map[string]any{
			{
				"Player ID":             203999,
				"Full Name":             " Nikola Jokic ",
				"Position":              "C",
				"Dollar Value":          "5",
				"Points Per Game (Avg)": 26.4,
				"TOV":                   "3.0",
				"Field Goal % (Avg)":    nil,
				"Three Point % (Avg)":   "n/a",
			},
			{
				"Player ID":    "1628983",
				"Full Name":    "Shai Gilgeous-Alexander",
				"Position":     "Guard",
				"Dollar Value": 4.0,
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0, resilience.DefaultCircuitBreakerConfig())
	players, err := client.ListPool(context.Background())
	if err != nil {
		t.Fatalf("list pool: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(players))
	}

	first := players[0]
	if first.ID != "203999" || first.Name != "Nikola Jokic" || first.Salary != 5 {
		t.Fatalf("unexpected first player: %+v", first)
	}
	if first.Stats.Points != 26.4 || first.Stats.Turnovers != 3.0 {
		t.Fatalf("unexpected stats: %+v", first.Stats)
	}
	if first.Stats.FieldGoalPct != 0 || first.Stats.ThreePointPct != 0 {
		t.Fatalf("expected unparsable stats to be zero: %+v", first.Stats)
	}
	if players[1].Position != player.PositionShootingGuard || players[1].Salary != 4 {
		t.Fatalf("unexpected second player: %+v", players[1])
	}
}

func TestClient_ListPoolRejectsNonArray(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body string
	}{
		{name: "object", body: `{"error":"pool not generated"}`},
		{name: "empty array", body: `[]`},
		{name: "empty body", body: ``},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, 0, resilience.DefaultCircuitBreakerConfig())
			if _, err := client.ListPool(context.Background()); !errors.Is(err, player.ErrNoPlayersAvailable) {
				t.Fatalf("expected ErrNoPlayersAvailable, got %v", err)
			}
		})
	}
}

func TestClient_ListPoolRetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = jsoniter.NewEncoder(w).Encode([]map[string]any{
			{"Player ID": "1", "Full Name": "A", "Position": "PG", "Dollar Value": 1},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 1, resilience.DefaultCircuitBreakerConfig())
	players, err := client.ListPool(context.Background())
	if err != nil {
		t.Fatalf("list pool: %v", err)
	}
	if len(players) != 1 || calls.Load() != 2 {
		t.Fatalf("expected one retry, calls=%d players=%d", calls.Load(), len(players))
	}
}

func TestClient_SubmitEncodesWireFormat(t *testing.T) {
	t.Parallel()

	var received map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/submit-team", func(w http.ResponseWriter, r *http.Request) {
		if err := jsoniter.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = jsoniter.NewEncoder(w).Encode(map[string]any{"message": "Team submitted successfully"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, 0, resilience.DefaultCircuitBreakerConfig())
	err := client.Submit(context.Background(), submission.Entry{
		Nickname: "hooper",
		Players:  samplePlayers(),
		Results:  submission.Results{Wins: 50, Losses: 32},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if received["nickname"] != "hooper" {
		t.Fatalf("unexpected nickname: %v", received["nickname"])
	}
	players, ok := received["players"].([]any)
	if !ok || len(players) != 5 {
		t.Fatalf("unexpected players payload: %v", received["players"])
	}
	first, _ := players[0].(map[string]any)
	if first["Player ID"] != "1" || first["Dollar Value"] != float64(5) || first["Position"] != "PG" {
		t.Fatalf("unexpected player wire object: %v", first)
	}
	results, _ := received["results"].(map[string]any)
	if results["wins"] != float64(50) || results["losses"] != float64(32) {
		t.Fatalf("unexpected results: %v", results)
	}
}

func TestClient_SubmitErrorMappingWithoutRetry(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "nickname taken", status: http.StatusConflict, wantErr: submission.ErrNicknameTaken},
		{name: "server error", status: http.StatusInternalServerError, wantErr: submission.ErrSubmissionFailed},
		{name: "bad request", status: http.StatusBadRequest, wantErr: submission.ErrSubmissionFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tc.status)
				_ = jsoniter.NewEncoder(w).Encode(map[string]string{"error": "Sorry, that name is already taken."})
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, 3, resilience.DefaultCircuitBreakerConfig())
			err := client.Submit(context.Background(), submission.Entry{
				Nickname: "hooper",
				Players:  samplePlayers(),
				Results:  submission.Results{Wins: 41, Losses: 41},
			})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if calls.Load() != 1 {
				t.Fatalf("expected exactly one POST, got %d", calls.Load())
			}
		})
	}
}

func TestClient_CircuitBreakerOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	if _, err := client.GetByDate(context.Background(), "2026-01-10"); !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable on first failure, got %v", err)
	}
	if _, err := client.GetByDate(context.Background(), "2026-01-10"); !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable from open breaker, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected open breaker to short-circuit, got %d calls", calls.Load())
	}
}

func TestClient_LeaderboardAndHistory(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/leaderboard":
			if got := r.URL.Query().Get("date"); got != "2026-01-10" {
				t.Errorf("unexpected date query: %s", got)
			}
			_ = jsoniter.NewEncoder(w).Encode(map[string]any{
				"date": "2026-01-10",
				"submissions": []map[string]any{
					{"nickname": "zed", "results": map[string]any{"wins": 40, "losses": 42}, "predicted_wins": 40.2},
					{"nickname": "amy", "results": map[string]any{"wins": "58", "losses": "24"}, "predicted_wins": 57.6},
				},
			})
		case "/api/history":
			if got := r.URL.Query().Get("nickname"); got != "amy" {
				t.Errorf("unexpected nickname query: %s", got)
			}
			_ = jsoniter.NewEncoder(w).Encode(map[string]any{
				"dates":        []string{"2026-01-10", "2026-01-09"},
				"played_dates": []string{"2026-01-10"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0, resilience.DefaultCircuitBreakerConfig())

	board, err := client.GetByDate(context.Background(), "2026-01-10")
	if err != nil {
		t.Fatalf("get by date: %v", err)
	}
	if len(board.Submissions) != 2 || board.Submissions[0].Nickname != "amy" {
		t.Fatalf("expected amy first, got %+v", board.Submissions)
	}
	if board.Submissions[0].Wins != 58 || board.Submissions[0].PredictedWins != 58 {
		t.Fatalf("unexpected top row: %+v", board.Submissions[0])
	}

	history, err := client.History(context.Background(), "amy")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !history.Played("2026-01-10") || history.Played("2026-01-09") {
		t.Fatalf("unexpected history: %+v", history)
	}
}

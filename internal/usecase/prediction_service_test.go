package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/prediction"
	"github.com/riskibarqy/budget-gm/internal/domain/roster"
	"github.com/riskibarqy/budget-gm/internal/infrastructure/repository/memory"
	playermock "github.com/riskibarqy/budget-gm/internal/mocks/domain/player"
	"github.com/riskibarqy/budget-gm/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

type countingRecorder struct {
	nopRecorder
	predictions []string
}

func (r *countingRecorder) Prediction(balance string, _ int) {
	r.predictions = append(r.predictions, balance)
}

func TestPredictionService_PredictIDs(t *testing.T) {
	logger := logging.NewNop()
	pool := NewPoolService(memory.NewPoolRepository(memory.SeedPool()), logger)
	recorder := &countingRecorder{}
	service := NewPredictionService(pool, prediction.DefaultModel(), roster.DefaultRules(), recorder, logger)

	testCases := []struct {
		name     string
		ids      []string
		wantErr  error
		wantWins int
	}{
		{name: "contender", ids: []string{"nba-pg-01", "nba-sg-01", "nba-sf-01", "nba-pf-01", "nba-c-01"}, wantWins: 54},
		{name: "too few", ids: []string{"nba-pg-01"}, wantErr: ErrInvalidInput},
		{name: "duplicate", ids: []string{"nba-pg-01", "nba-pg-01", "nba-sf-01", "nba-pf-01", "nba-c-01"}, wantErr: roster.ErrDuplicatePlayer},
		{name: "unknown", ids: []string{"nba-pg-01", "nba-sg-01", "nba-sf-01", "nba-pf-01", "ghost"}, wantErr: ErrNotFound},
		{name: "over budget", ids: []string{"nba-pg-01", "nba-sg-01", "nba-c-02", "nba-pf-01", "nba-c-01"}, wantErr: roster.ErrInsufficientBudget},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, players, err := service.PredictIDs(t.Context(), tc.ids)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("predict ids: %v", err)
			}
			if result.Wins != tc.wantWins || result.Wins+result.Losses != prediction.SeasonGames {
				t.Fatalf("unexpected result: %d-%d", result.Wins, result.Losses)
			}
			if len(players) != len(tc.ids) || players[0].ID != tc.ids[0] {
				t.Fatalf("unexpected players: %+v", players)
			}
		})
	}

	if len(recorder.predictions) != 1 || recorder.predictions[0] != string(prediction.BalanceOptimal) {
		t.Fatalf("unexpected recorded predictions: %v", recorder.predictions)
	}
}

func TestPoolService_PoolSkipsInvalidPlayers(t *testing.T) {
	repo := playermock.NewPoolRepository(t)
	repo.
		On("ListPool", mock.Anything).
		Return([]player.Player{
			{ID: "ok-1", Name: "Ok", Position: player.PositionCenter, Salary: 2},
			{ID: "bad-salary", Name: "Bad", Position: player.PositionCenter, Salary: 9},
			{ID: "", Name: "No ID", Position: player.PositionCenter, Salary: 1},
		}, nil).
		Once()

	service := NewPoolService(repo, logging.NewNop())
	got, err := service.Pool(t.Context())
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if len(got.Players) != 1 || got.Players[0].ID != "ok-1" {
		t.Fatalf("unexpected pool: %+v", got.Players)
	}
	if len(got.Tiers[2]) != 1 {
		t.Fatalf("expected one $2 player, got %+v", got.Tiers)
	}
}

func TestPoolService_EmptyPool(t *testing.T) {
	repo := playermock.NewPoolRepository(t)
	repo.On("ListPool", mock.Anything).Return([]player.Player{}, nil).Once()

	service := NewPoolService(repo, logging.NewNop())
	if _, err := service.Pool(t.Context()); !errors.Is(err, player.ErrNoPlayersAvailable) {
		t.Fatalf("expected ErrNoPlayersAvailable, got %v", err)
	}
}

package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/prediction"
	"github.com/riskibarqy/budget-gm/internal/domain/roster"
	"github.com/riskibarqy/budget-gm/internal/platform/logging"
)

type PredictionService struct {
	pool    *PoolService
	model   prediction.Model
	rules   roster.Rules
	metrics Recorder
	logger  *logging.Logger
}

func NewPredictionService(pool *PoolService, model prediction.Model, rules roster.Rules, metrics Recorder, logger *logging.Logger) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &PredictionService{
		pool:    pool,
		model:   model,
		rules:   rules,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *PredictionService) Model() prediction.Model {
	return s.model
}

// PredictIDs scores a hypothetical lineup drawn from today's pool. The lineup
// must satisfy the same roster rules as a real session.
func (s *PredictionService) PredictIDs(ctx context.Context, playerIDs []string) (prediction.Result, []player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.PredictIDs")
	defer span.End()

	ids, err := cleanPlayerIDs(playerIDs)
	if err != nil {
		return prediction.Result{}, nil, err
	}
	if len(ids) != s.rules.MaxSize {
		return prediction.Result{}, nil, fmt.Errorf("%w: expected %d player ids, got %d", ErrInvalidInput, s.rules.MaxSize, len(ids))
	}

	players, err := s.pool.Lookup(ctx, ids...)
	if err != nil {
		return prediction.Result{}, nil, err
	}
	if _, err := roster.Rehydrate(s.rules, players, false); err != nil {
		return prediction.Result{}, nil, err
	}

	result, err := s.PredictPlayers(ctx, players)
	if err != nil {
		return prediction.Result{}, nil, err
	}
	return result, players, nil
}

func (s *PredictionService) PredictPlayers(ctx context.Context, players []player.Player) (prediction.Result, error) {
	result, err := prediction.Predict(s.model, players)
	if err != nil {
		return prediction.Result{}, err
	}

	span := spanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("prediction.wins", result.Wins),
		attribute.String("prediction.balance", string(result.Balance)),
		attribute.String("prediction.model_version", result.ModelVersion),
	)
	s.metrics.Prediction(string(result.Balance), result.Wins)
	s.logger.DebugContext(ctx, "prediction computed",
		"wins", result.Wins,
		"base", result.Base,
		"multiplier", result.Multiplier,
		"balance", result.Balance,
	)
	return result, nil
}

func cleanPlayerIDs(playerIDs []string) ([]string, error) {
	seen := make(map[string]struct{}, len(playerIDs))
	out := make([]string, 0, len(playerIDs))
	for _, raw := range playerIDs {
		playerID := strings.TrimSpace(raw)
		if playerID == "" {
			return nil, fmt.Errorf("%w: player id cannot be empty", ErrInvalidInput)
		}
		if _, ok := seen[playerID]; ok {
			return nil, fmt.Errorf("%w: %s", roster.ErrDuplicatePlayer, playerID)
		}
		seen[playerID] = struct{}{}
		out = append(out, playerID)
	}
	return out, nil
}

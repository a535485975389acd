package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/budget-gm/internal/platform/logging"
	"github.com/riskibarqy/budget-gm/internal/usecase"
)

type Handler struct {
	gameService        *usecase.GameService
	poolService        *usecase.PoolService
	predictionService  *usecase.PredictionService
	leaderboardService *usecase.LeaderboardService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	gameService *usecase.GameService,
	poolService *usecase.PoolService,
	predictionService *usecase.PredictionService,
	leaderboardService *usecase.LeaderboardService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		gameService:        gameService,
		poolService:        poolService,
		predictionService:  predictionService,
		leaderboardService: leaderboardService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeRequest reads a JSON body into dst. An empty body is accepted only
// when allowEmpty is set.
func decodeRequest(r *http.Request, dst any, allowEmpty bool) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

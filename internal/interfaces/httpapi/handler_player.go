package httpapi

import (
	"net/http"
)

type predictRosterRequest struct {
	PlayerIDs []string `json:"playerIds" validate:"required,min=1,max=10,dive,required"`
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	pool, err := h.poolService.Pool(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list player pool failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerPoolToDTO(ctx, pool))
}

func (h *Handler) PredictRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PredictRoster")
	defer span.End()

	var req predictRosterRequest
	if err := decodeRequest(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, players, err := h.predictionService.PredictIDs(ctx, req.PlayerIDs)
	if err != nil {
		h.logger.InfoContext(ctx, "predict roster failed", "player_count", len(req.PlayerIDs), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rosterPredictionDTO{
		Players:    playersToDTO(ctx, players),
		Prediction: predictionToDTO(ctx, result),
	})
}

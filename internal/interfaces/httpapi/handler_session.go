package httpapi

import (
	"net/http"
	"strings"
)

type startSessionRequest struct {
	Nickname string `json:"nickname" validate:"omitempty,min=2,max=20"`
}

type setNicknameRequest struct {
	Nickname string `json:"nickname" validate:"required,min=2,max=20"`
}

type addPlayerRequest struct {
	PlayerID string `json:"playerId" validate:"required,max=64"`
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartSession")
	defer span.End()

	var req startSessionRequest
	if err := decodeRequest(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	req.Nickname = strings.TrimSpace(req.Nickname)
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.gameService.Start(ctx, req.Nickname)
	if err != nil {
		h.logger.WarnContext(ctx, "start session failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, sessionToDTO(ctx, item, h.gameService.Rules()))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSession")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	item, err := h.gameService.Get(ctx, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "get session failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(ctx, item, h.gameService.Rules()))
}

func (h *Handler) SetNickname(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetNickname")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	var req setNicknameRequest
	if err := decodeRequest(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	req.Nickname = strings.TrimSpace(req.Nickname)
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.gameService.SetNickname(ctx, sessionID, req.Nickname)
	if err != nil {
		h.logger.WarnContext(ctx, "set nickname failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(ctx, item, h.gameService.Rules()))
}

func (h *Handler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddPlayer")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	var req addPlayerRequest
	if err := decodeRequest(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.gameService.AddPlayer(ctx, sessionID, req.PlayerID)
	if err != nil {
		h.logger.InfoContext(ctx, "add player rejected", "session_id", sessionID, "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(ctx, item, h.gameService.Rules()))
}

func (h *Handler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemovePlayer")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	playerID := strings.TrimSpace(r.PathValue("playerID"))
	item, err := h.gameService.RemovePlayer(ctx, sessionID, playerID)
	if err != nil {
		h.logger.InfoContext(ctx, "remove player rejected", "session_id", sessionID, "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(ctx, item, h.gameService.Rules()))
}

func (h *Handler) PreviewPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PreviewPrediction")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	result, err := h.gameService.Preview(ctx, sessionID)
	if err != nil {
		h.logger.InfoContext(ctx, "preview prediction failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(ctx, result))
}

func (h *Handler) SubmitRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitRoster")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	result, err := h.gameService.Submit(ctx, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "submit roster failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, submitResultDTO{
		Session:    sessionToDTO(ctx, result.Session, h.gameService.Rules()),
		Prediction: predictionToDTO(ctx, result.Prediction),
	})
}

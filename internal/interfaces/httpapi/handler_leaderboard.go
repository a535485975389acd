package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	board, err := h.leaderboardService.Board(ctx, date)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "date", date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(ctx, board))
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetHistory")
	defer span.End()

	query := r.URL.Query()
	nickname := strings.TrimSpace(query.Get("nickname"))
	date := strings.TrimSpace(query.Get("date"))
	overview, err := h.leaderboardService.Overview(ctx, nickname, date)
	if err != nil {
		h.logger.WarnContext(ctx, "get history failed", "nickname", nickname, "date", date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, historyDTO{
		Nickname:    nickname,
		Dates:       nonNilStrings(overview.History.Dates),
		PlayedDates: nonNilStrings(overview.History.PlayedDates),
		Played:      overview.Played,
		Leaderboard: leaderboardToDTO(ctx, overview.Board),
	})
}

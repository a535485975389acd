package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}
	if !cfg.SwaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("POST /v1/predictions", handler.PredictRoster)
}

func registerSessionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/sessions", handler.StartSession)
	mux.HandleFunc("GET /v1/sessions/{sessionID}", handler.GetSession)
	mux.HandleFunc("PUT /v1/sessions/{sessionID}/nickname", handler.SetNickname)
	mux.HandleFunc("POST /v1/sessions/{sessionID}/players", handler.AddPlayer)
	mux.HandleFunc("DELETE /v1/sessions/{sessionID}/players/{playerID}", handler.RemovePlayer)
	mux.HandleFunc("GET /v1/sessions/{sessionID}/prediction", handler.PreviewPrediction)
	mux.HandleFunc("POST /v1/sessions/{sessionID}/submit", handler.SubmitRoster)
}

func registerLeaderboardRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/history", handler.GetHistory)
}

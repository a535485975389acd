package httpapi

import (
	"net/http"

	"github.com/riskibarqy/budget-gm/internal/platform/logging"
)

// RouterConfig carries the optional mounts next to the game routes. Nil
// handlers are not mounted.
type RouterConfig struct {
	Logger             *logging.Logger
	SwaggerEnabled     bool
	CORSAllowedOrigins []string
	Metrics            RequestRecorder
	MetricsHandler     http.Handler
	MCPHandler         http.Handler
}

func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg)
	registerPlayerRoutes(mux, handler)
	registerSessionRoutes(mux, handler)
	registerLeaderboardRoutes(mux, handler)
	if cfg.MCPHandler != nil {
		mux.Handle("/mcp", cfg.MCPHandler)
	}

	return RequestTracing(RequestMetrics(cfg.Metrics, RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux)))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

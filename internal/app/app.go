package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/robfig/cron/v3"

	"github.com/riskibarqy/budget-gm/external/gamebackend"
	"github.com/riskibarqy/budget-gm/internal/config"
	"github.com/riskibarqy/budget-gm/internal/domain/gameday"
	"github.com/riskibarqy/budget-gm/internal/domain/leaderboard"
	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/roster"
	"github.com/riskibarqy/budget-gm/internal/domain/submission"
	"github.com/riskibarqy/budget-gm/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/budget-gm/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/budget-gm/internal/interfaces/httpapi"
	"github.com/riskibarqy/budget-gm/internal/interfaces/mcptools"
	basecache "github.com/riskibarqy/budget-gm/internal/platform/cache"
	"github.com/riskibarqy/budget-gm/internal/platform/id"
	"github.com/riskibarqy/budget-gm/internal/platform/logging"
	"github.com/riskibarqy/budget-gm/internal/platform/metrics"
	"github.com/riskibarqy/budget-gm/internal/platform/resilience"
	"github.com/riskibarqy/budget-gm/internal/usecase"
)

// Runtime is the HTTP server plus the background jobs sharing its lifecycle.
type Runtime struct {
	Server    *http.Server
	Rollover  *usecase.RolloverService
	scheduler *cron.Cron
	closers   []func() error
	logger    *logging.Logger
}

type backendRepositories struct {
	pool        player.PoolRepository
	submissions submission.Repository
	leaderboard leaderboard.Repository
}

func NewRuntime(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	calendar, err := gameday.NewCalendar(cfg.GameDayTimezone, cfg.GameDayCutoverHour)
	if err != nil {
		return nil, err
	}
	model, err := config.LoadPredictionModel(cfg.PredictionModelFile)
	if err != nil {
		return nil, err
	}
	rules := roster.DefaultRules()

	var recorder *metrics.Recorder
	if cfg.MetricsEnabled {
		recorder = metrics.NewRecorder()
	}

	rt := &Runtime{logger: logger}
	sessions, closeStore, err := openSessionStore(ctx, cfg, rules, logger)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, closeStore)

	backend := newBackendRepositories(cfg, calendar, recorder, logger)

	poolSvc := usecase.NewPoolService(backend.pool, logger)
	predictionSvc := usecase.NewPredictionService(poolSvc, model, rules, recorder, logger)
	gameSvc := usecase.NewGameService(usecase.GameServiceConfig{
		Sessions:    sessions,
		Pool:        poolSvc,
		Predictor:   predictionSvc,
		Submissions: backend.submissions,
		Calendar:    calendar,
		Rules:       rules,
		IDs:         id.NewUUIDGenerator(),
		Metrics:     recorder,
		Logger:      logger,
	})
	leaderboardSvc := usecase.NewLeaderboardService(backend.leaderboard, calendar, logger)
	rt.Rollover = usecase.NewRolloverService(sessions, gameSvc, calendar, cfg.RolloverWorkers, recorder, logger)

	if cfg.RolloverEnabled {
		rt.scheduler, err = newRolloverScheduler(ctx, calendar.CronSpec(), rt.Rollover, logger)
		if err != nil {
			_ = rt.close()
			return nil, err
		}
	}

	routerCfg := httpapi.RouterConfig{
		Logger:             logger,
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if recorder != nil {
		routerCfg.Metrics = recorder
		routerCfg.MetricsHandler = recorder.Handler()
	}
	if cfg.MCPEnabled {
		routerCfg.MCPHandler = mcptools.NewHandler(mcptools.NewServer(mcptools.Config{
			Pool:        poolSvc,
			Predictions: predictionSvc,
			Leaderboard: leaderboardSvc,
			Version:     cfg.ServiceVersion,
			Logger:      logger,
		}))
	}

	handler := httpapi.NewHandler(gameSvc, poolSvc, predictionSvc, leaderboardSvc, logger)
	rt.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, routerCfg),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("runtime ready",
		"session_store", cfg.SessionStore,
		"backend_mode", cfg.BackendMode,
		"cache_enabled", cfg.CacheEnabled,
		"rollover_enabled", cfg.RolloverEnabled,
		"mcp_enabled", cfg.MCPEnabled,
		"model_version", model.Version,
	)
	return rt, nil
}

// newBackendRepositories builds the game backend adapters, optionally behind
// the read caches. Submissions go through the leaderboard cache so an
// accepted entry invalidates cached boards.
func newBackendRepositories(cfg config.Config, calendar gameday.Calendar, recorder *metrics.Recorder, logger *logging.Logger) backendRepositories {
	var out backendRepositories
	if cfg.BackendMode == config.BackendModeMemory {
		submissions := memory.NewSubmissionRepository(calendar)
		out = backendRepositories{
			pool:        memory.NewPoolRepository(memory.SeedPool()),
			submissions: submissions,
			leaderboard: submissions,
		}
	} else {
		clientCfg := gamebackend.ClientConfig{
			BaseURL:    cfg.BackendBaseURL,
			Timeout:    cfg.BackendTimeout,
			MaxRetries: cfg.BackendMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.BackendCircuitEnabled,
				FailureThreshold: cfg.BackendCircuitFailures,
				OpenTimeout:      cfg.BackendCircuitOpenFor,
				HalfOpenMaxReq:   cfg.BackendCircuitHalfOpen,
			},
		}
		if recorder != nil {
			clientCfg.Metrics = recorder
		}
		client := gamebackend.NewClient(clientCfg)
		out = backendRepositories{pool: client, submissions: client, leaderboard: client}
	}

	if !cfg.CacheEnabled {
		return out
	}

	boards := cache.NewLeaderboardRepository(out.leaderboard, out.submissions, cfg.CacheTTL)
	return backendRepositories{
		pool:        cache.NewPoolRepository(out.pool, basecache.NewStore[[]player.Player](cfg.CacheTTL), calendar),
		submissions: boards,
		leaderboard: boards,
	}
}

// StartJobs starts the rollover scheduler when enabled.
func (r *Runtime) StartJobs() {
	if r.scheduler == nil {
		return
	}
	r.scheduler.Start()
	r.logger.Info("rollover scheduler started", "entries", len(r.scheduler.Entries()))
}

// Shutdown stops the HTTP server, waits for a running rollover job and closes
// the session store.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error
	if r.Server != nil {
		if err := r.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}
	if r.scheduler != nil {
		select {
		case <-r.scheduler.Stop().Done():
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("wait for rollover job: %w", ctx.Err()))
		}
	}
	if err := r.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (r *Runtime) close() error {
	var errs []error
	for _, closeFn := range r.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

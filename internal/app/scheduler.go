package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/riskibarqy/budget-gm/internal/platform/logging"
	"github.com/riskibarqy/budget-gm/internal/usecase"
)

const rolloverJobTimeout = 5 * time.Minute

// cronLogger routes robfig/cron's own logging through the service logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

// newRolloverScheduler runs the rollover job once per game-day cutover.
// Overlapping runs are skipped.
func newRolloverScheduler(ctx context.Context, spec string, rollover *usecase.RolloverService, logger *logging.Logger) (*cron.Cron, error) {
	cl := cronLogger{logger: logger}
	scheduler := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	_, err := scheduler.AddFunc(spec, func() {
		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rolloverJobTimeout)
		defer cancel()

		result, err := rollover.Run(jobCtx)
		if err != nil {
			logger.ErrorContext(jobCtx, "scheduled rollover failed", "error", err)
			return
		}
		logger.InfoContext(jobCtx, "scheduled rollover finished",
			"game_day", result.GameDay,
			"scanned", result.Scanned,
			"reset", result.ResetCount,
			"failed", result.FailedCount,
		)
	})
	if err != nil {
		return nil, fmt.Errorf("register rollover job %q: %w", spec, err)
	}
	return scheduler, nil
}

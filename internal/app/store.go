package app

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/budget-gm/internal/config"
	"github.com/riskibarqy/budget-gm/internal/domain/roster"
	"github.com/riskibarqy/budget-gm/internal/domain/session"
	"github.com/riskibarqy/budget-gm/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/budget-gm/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/budget-gm/internal/infrastructure/repository/sqlite"
	"github.com/riskibarqy/budget-gm/internal/platform/logging"
)

// openSessionStore returns the configured session repository and a closer for
// any connection it opened.
func openSessionStore(ctx context.Context, cfg config.Config, rules roster.Rules, logger *logging.Logger) (session.Repository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SessionStore {
	case config.SessionStorePostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("session store ready", "store", cfg.SessionStore, "db_name", postgresDBName(cfg.DBURL))
		return postgres.NewSessionRepository(db, rules), db.Close, nil
	case config.SessionStoreSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("session store ready", "store", cfg.SessionStore, "path", cfg.SQLitePath)
		return sqlite.NewSessionRepository(db, rules), db.Close, nil
	default:
		logger.Info("session store ready", "store", config.SessionStoreMemory)
		return memory.NewSessionRepository(), noop, nil
	}
}

func openPostgres(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", postgresDSN(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(postgresDBName(cfg.DBURL)),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

const maxTracedQueryLength = 512

var sqlWhitespace = regexp.MustCompile(`\s+`)

// postgresDSN adds disable_prepared_binary_result=yes to URL-style DSNs
// unless the caller already set it. Key/value DSNs are returned unchanged.
func postgresDSN(raw string, disablePreparedBinary bool) string {
	if !disablePreparedBinary {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	if query.Has("disable_prepared_binary_result") {
		return raw
	}
	query.Set("disable_prepared_binary_result", "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func postgresDBName(raw string) string {
	raw = strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		if name := strings.Trim(parsed.Path, "/ "); name != "" {
			return name
		}
	}

	for _, field := range strings.Fields(raw) {
		if name, ok := strings.CutPrefix(field, "dbname="); ok {
			return strings.Trim(name, `"'`)
		}
	}
	return ""
}

// traceQuery collapses whitespace and truncates long statements for span
// attributes.
func traceQuery(query string) string {
	normalized := sqlWhitespace.ReplaceAllString(strings.TrimSpace(query), " ")
	if len(normalized) > maxTracedQueryLength {
		return normalized[:maxTracedQueryLength] + "..."
	}
	return normalized
}

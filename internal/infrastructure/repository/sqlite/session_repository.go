package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/riskibarqy/budget-gm/internal/domain/roster"
	"github.com/riskibarqy/budget-gm/internal/domain/session"
	"github.com/riskibarqy/budget-gm/internal/infrastructure/repository/sessionrow"
)

const schema = `CREATE TABLE IF NOT EXISTS game_sessions (
	public_id           TEXT PRIMARY KEY,
	nickname            TEXT NOT NULL DEFAULT '',
	phase               TEXT NOT NULL DEFAULT 'building',
	game_day            TEXT NOT NULL,
	last_submission_day TEXT NOT NULL DEFAULT '',
	roster              TEXT NOT NULL DEFAULT '[]',
	roster_locked       BOOLEAN NOT NULL DEFAULT 0,
	budget_remaining    INTEGER NOT NULL DEFAULT 15,
	submission          TEXT,
	created_at          DATETIME NOT NULL,
	updated_at          DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_game_sessions_game_day ON game_sessions(game_day);`

// Open opens (or creates) a single-file session store in WAL mode.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_time_format=sqlite"
	}

	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create session schema: %w", err)
	}
	return db, nil
}

type SessionRepository struct {
	db    *sqlx.DB
	rules roster.Rules
}

func NewSessionRepository(db *sqlx.DB, rules roster.Rules) *SessionRepository {
	return &SessionRepository{db: db, rules: rules}
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (session.Session, bool, error) {
	query := "SELECT " + strings.Join(sessionrow.Columns(), ", ") + " FROM " + sessionrow.Table + " WHERE public_id = ?"

	var row sessionrow.Row
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, fmt.Errorf("get session: %w", err)
	}

	item, err := sessionrow.ToSession(r.rules, row)
	if err != nil {
		return session.Session{}, false, err
	}
	return item, true, nil
}

func (r *SessionRepository) Upsert(ctx context.Context, item session.Session) error {
	row, err := sessionrow.From(item)
	if err != nil {
		return err
	}

	const query = `INSERT INTO game_sessions (public_id, nickname, phase, game_day, last_submission_day, roster, roster_locked, budget_remaining, submission, created_at, updated_at)
VALUES (:public_id, :nickname, :phase, :game_day, :last_submission_day, :roster, :roster_locked, :budget_remaining, :submission, :created_at, :updated_at)
ON CONFLICT (public_id) DO UPDATE SET
	nickname = excluded.nickname,
	phase = excluded.phase,
	game_day = excluded.game_day,
	last_submission_day = excluded.last_submission_day,
	roster = excluded.roster,
	roster_locked = excluded.roster_locked,
	budget_remaining = excluded.budget_remaining,
	submission = excluded.submission,
	updated_at = excluded.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert session id=%s: %w", item.ID, err)
	}
	return nil
}

func (r *SessionRepository) ListStale(ctx context.Context, gameDay string) ([]session.Session, error) {
	query := "SELECT " + strings.Join(sessionrow.Columns(), ", ") + " FROM " + sessionrow.Table +
		" WHERE game_day < ? ORDER BY game_day, public_id"

	var rows []sessionrow.Row
	if err := r.db.SelectContext(ctx, &rows, query, gameDay); err != nil {
		return nil, fmt.Errorf("list stale sessions: %w", err)
	}

	out := make([]session.Session, 0, len(rows))
	for _, row := range rows {
		item, err := sessionrow.ToSession(r.rules, row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

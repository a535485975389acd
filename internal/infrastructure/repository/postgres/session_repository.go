package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/budget-gm/internal/domain/roster"
	"github.com/riskibarqy/budget-gm/internal/domain/session"
	"github.com/riskibarqy/budget-gm/internal/infrastructure/repository/sessionrow"
	qb "github.com/riskibarqy/budget-gm/internal/platform/querybuilder"
)

const sessionUpsertSuffix = `ON CONFLICT (public_id) DO UPDATE SET
    nickname = EXCLUDED.nickname,
    phase = EXCLUDED.phase,
    game_day = EXCLUDED.game_day,
    last_submission_day = EXCLUDED.last_submission_day,
    roster = EXCLUDED.roster,
    roster_locked = EXCLUDED.roster_locked,
    budget_remaining = EXCLUDED.budget_remaining,
    submission = EXCLUDED.submission,
    updated_at = EXCLUDED.updated_at`

type SessionRepository struct {
	db    *sqlx.DB
	rules roster.Rules
}

func NewSessionRepository(db *sqlx.DB, rules roster.Rules) *SessionRepository {
	return &SessionRepository{db: db, rules: rules}
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (session.Session, bool, error) {
	query, args, err := sessionBaseSelectBuilder().
		Where(qb.Eq("public_id", id)).
		ToSQL()
	if err != nil {
		return session.Session{}, false, fmt.Errorf("build get session query: %w", err)
	}

	var row sessionrow.Row
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
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
	model, err := sessionrow.From(item)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel(sessionrow.Table, model, sessionUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert session query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert session id=%s: %w", item.ID, err)
	}
	return nil
}

func (r *SessionRepository) ListStale(ctx context.Context, gameDay string) ([]session.Session, error) {
	query, args, err := sessionBaseSelectBuilder().
		Where(qb.Expr("game_day < ?", gameDay)).
		OrderBy("game_day", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list stale sessions query: %w", err)
	}

	var rows []sessionrow.Row
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
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

func sessionBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select(sessionrow.Columns()...).From(sessionrow.Table)
}

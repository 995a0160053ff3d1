package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const schema = `CREATE TABLE IF NOT EXISTS authz_decisions (
	id          UUID PRIMARY KEY,
	occurred_at TIMESTAMPTZ NOT NULL,
	request_id  TEXT NOT NULL DEFAULT '',
	user_id     TEXT NOT NULL DEFAULT '',
	role        TEXT NOT NULL DEFAULT '',
	method      TEXT NOT NULL DEFAULT '',
	path        TEXT NOT NULL DEFAULT '',
	requirement TEXT NOT NULL,
	allowed     BOOLEAN NOT NULL,
	reason      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_authz_decisions_occurred_at ON authz_decisions (occurred_at)`

// DBTX is the subset of pgxpool.Pool used by Store.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists events into authz_decisions.
type Store struct {
	db DBTX
}

// NewStore returns a Store backed by db.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the decisions table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("audit: ensure schema: %w", err)
	}
	return nil
}

// Insert stores evt. Re-inserting an existing id is a no-op so that retried
// queue tasks do not fail.
func (s *Store) Insert(ctx context.Context, evt Event) error {
	if s == nil {
		return errors.New("audit: store not initialised")
	}
	if evt.Requirement == "" || evt.Reason == "" {
		return errors.New("audit: event requires requirement and reason")
	}
	evt = evt.WithDefaults()
	_, err := s.db.Exec(ctx, `INSERT INTO authz_decisions (id, occurred_at, request_id, user_id, role, method, path, requirement, allowed, reason)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		evt.ID, evt.OccurredAt, evt.RequestID, evt.UserID, evt.Role, evt.Method, evt.Path, evt.Requirement, evt.Allowed, evt.Reason)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil
		}
		return fmt.Errorf("audit: insert decision: %w", err)
	}
	return nil
}

// Record implements Recorder by inserting synchronously.
func (s *Store) Record(ctx context.Context, evt Event) error {
	return s.Insert(ctx, evt)
}

// Purge deletes events older than before and returns how many were removed.
func (s *Store) Purge(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM authz_decisions WHERE occurred_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("audit: purge decisions: %w", err)
	}
	return tag.RowsAffected(), nil
}

package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"examclock/internal/modules/session/domain"

	_ "modernc.org/sqlite"
)

type SQLiteHistoryStore struct {
	db *sql.DB
}

func NewSQLiteHistoryStore(dbPath string) (*SQLiteHistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteHistoryStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteHistoryStore) ensureSchema(ctx context.Context) error {
	statements := []struct {
		name string
		ddl  string
	}{
		{"sessions", `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  label TEXT NOT NULL,
  started_at INTEGER NOT NULL UNIQUE,
  ended_at INTEGER NOT NULL,
  duration_ms INTEGER NOT NULL,
  time_taken_ms INTEGER NOT NULL,
  ended_by TEXT NOT NULL
);`},
		{"violations", `
CREATE TABLE IF NOT EXISTS violations (
  session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
  seq INTEGER NOT NULL,
  category TEXT NOT NULL,
  occurred_at INTEGER NOT NULL,
  PRIMARY KEY (session_id, seq)
);`},
	}
	for _, st := range statements {
		if _, err := s.db.ExecContext(ctx, st.ddl); err != nil {
			return fmt.Errorf("create %s table: %w", st.name, err)
		}
	}
	return nil
}

// Append archives a session. Two views ending the same session race
// here; the start instant decides which row wins.
func (s *SQLiteHistoryStore) Append(ctx context.Context, session domain.Session) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin archive: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
INSERT INTO sessions (id, label, started_at, ended_at, duration_ms, time_taken_ms, ended_by)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(started_at) DO NOTHING;`,
		session.ID,
		session.Label,
		session.StartedAt.UnixMilli(),
		session.EndedAt.UnixMilli(),
		session.Duration.Milliseconds(),
		session.TimeTaken.Milliseconds(),
		string(session.EndedBy),
	)
	if err != nil {
		return false, fmt.Errorf("insert session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert session: %w", err)
	}
	if affected == 0 {
		return false, nil
	}
	for seq, entry := range session.Timeline {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO violations (session_id, seq, category, occurred_at) VALUES (?, ?, ?, ?);`,
			session.ID, seq, string(entry.Category), entry.At.UnixMilli(),
		); err != nil {
			return false, fmt.Errorf("insert violation: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit archive: %w", err)
	}
	return true, nil
}

// List returns archived sessions, most recent first. limit <= 0 means all.
func (s *SQLiteHistoryStore) List(ctx context.Context, limit int) ([]domain.Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, label, started_at, ended_at, duration_ms, time_taken_ms, ended_by
FROM sessions
ORDER BY started_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	sessions := []domain.Session{}
	for rows.Next() {
		var (
			item                    domain.Session
			startedAt, endedAt      int64
			durationMs, timeTakenMs int64
			endedBy                 string
		)
		if err := rows.Scan(&item.ID, &item.Label, &startedAt, &endedAt, &durationMs, &timeTakenMs, &endedBy); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan session: %w", err)
		}
		item.StartedAt = time.UnixMilli(startedAt).UTC()
		item.EndedAt = time.UnixMilli(endedAt).UTC()
		item.Duration = time.Duration(durationMs) * time.Millisecond
		item.TimeTaken = time.Duration(timeTakenMs) * time.Millisecond
		item.EndedBy = domain.EndReason(endedBy)
		sessions = append(sessions, item)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	rows.Close()

	for idx := range sessions {
		timeline, err := s.timeline(ctx, sessions[idx].ID)
		if err != nil {
			return nil, err
		}
		sessions[idx].Timeline = timeline
	}
	return sessions, nil
}

func (s *SQLiteHistoryStore) timeline(ctx context.Context, sessionID string) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, occurred_at FROM violations WHERE session_id = ? ORDER BY seq;`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query violations: %w", err)
	}
	defer rows.Close()
	out := []domain.Entry{}
	for rows.Next() {
		var (
			category string
			at       int64
		)
		if err := rows.Scan(&category, &at); err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		out = append(out, domain.Entry{Category: domain.Category(category), At: time.UnixMilli(at).UTC()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate violations: %w", err)
	}
	return out, nil
}

package schedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS scheduled_sends (
	id           TEXT PRIMARY KEY,
	target_json  TEXT NOT NULL,
	message_json TEXT NOT NULL,
	due_at       TEXT NOT NULL,
	status       TEXT NOT NULL,
	error        TEXT,
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scheduled_sends_status ON scheduled_sends(status);
`

// SQLiteStore persists one row per scheduled send. Unlike FileStore a
// status update touches only its own row, so concurrent processes can
// share the database safely.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a SQLiteStore at path. Call Init before use.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens the database and applies the schema.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create schedule dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("open schedule db: %w", err)
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode = WAL")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous = NORMAL")
	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout = 5000")

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return fmt.Errorf("apply schedule schema: %w", err)
	}
	s.db = db
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append inserts rec as a new row.
func (s *SQLiteStore) Append(ctx context.Context, rec ScheduledSend) error {
	target, err := json.Marshal(rec.Target)
	if err != nil {
		return fmt.Errorf("marshal target: %w", err)
	}
	msg, err := json.Marshal(rec.Message)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scheduled_sends(id, target_json, message_json, due_at, status, error, created_at)
		 VALUES(?,?,?,?,?,?,?)`,
		rec.ID, string(target), string(msg),
		rec.DueAt.Format(time.RFC3339Nano), string(rec.Status), nullStr(rec.Error),
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// List returns every record in creation order.
func (s *SQLiteStore) List(ctx context.Context) ([]ScheduledSend, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, target_json, message_json, due_at, status, error, created_at
		 FROM scheduled_sends ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []ScheduledSend
	for rows.Next() {
		var (
			rec           ScheduledSend
			target, msg   string
			dueAt, create string
			errMsg        sql.NullString
			status        string
		)
		if err := rows.Scan(&rec.ID, &target, &msg, &dueAt, &status, &errMsg, &create); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(target), &rec.Target); err != nil {
			return nil, fmt.Errorf("unmarshal target for %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(msg), &rec.Message); err != nil {
			return nil, fmt.Errorf("unmarshal message for %s: %w", rec.ID, err)
		}
		if rec.DueAt, err = time.Parse(time.RFC3339Nano, dueAt); err != nil {
			return nil, fmt.Errorf("parse due_at for %s: %w", rec.ID, err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, create); err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", rec.ID, err)
		}
		rec.Status = Status(status)
		rec.Error = errMsg.String
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// SetStatus updates one row in place.
func (s *SQLiteStore) SetStatus(ctx context.Context, id string, status Status, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_sends SET status = ?, error = ? WHERE id = ?`,
		string(status), nullStr(errMsg), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullStr(v string) any {
	if v == "" {
		return nil
	}
	return v
}

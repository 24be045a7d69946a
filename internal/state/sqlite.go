package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

const counterName = "generator"

// SQLite is a Store backed by a local SQLite database file.
type SQLite struct {
	db   *sql.DB
	path string
}

// DefaultPath returns ~/.cmtgen/state.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cmtgen", "state.db"), nil
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer keeps SQLITE_BUSY out of the picture.
	db.SetMaxOpenConns(1)
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

func initSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS counters (
  name  TEXT PRIMARY KEY,
  value INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS scripts (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id     TEXT,
  host       TEXT,
  seed       INTEGER,
  script     TEXT,
  error      TEXT,
  created_at TEXT
);`
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	_, err := db.Exec(`INSERT OR IGNORE INTO counters (name, value) VALUES (?, 0)`, counterName)
	return err
}

// Path is the database file location.
func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Counter(ctx context.Context) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = ?`, counterName).Scan(&v)
	return v, err
}

func (s *SQLite) Advance(ctx context.Context) (int64, error) {
	var prev int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE counters SET value = value + 1 WHERE name = ? RETURNING value - 1`, counterName).Scan(&prev)
	if err != nil {
		return 0, fmt.Errorf("advance counter: %w", err)
	}
	return prev, nil
}

func (s *SQLite) Reset(ctx context.Context, v int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE counters SET value = ? WHERE name = ?`, v, counterName)
	return err
}

func (s *SQLite) Record(ctx context.Context, rec ScriptRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scripts (run_id, host, seed, script, error, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Host, rec.Seed, rec.Script, rec.Error, created.UTC().Format(time.RFC3339))
	return err
}

func (s *SQLite) History(ctx context.Context, limit int) ([]ScriptRecord, error) {
	q := `SELECT run_id, host, seed, script, error, created_at FROM scripts ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScriptRecord
	for rows.Next() {
		var rec ScriptRecord
		var created sql.NullString
		if err := rows.Scan(&rec.RunID, &rec.Host, &rec.Seed, &rec.Script, &rec.Error, &created); err != nil {
			return nil, err
		}
		if created.Valid && created.String != "" {
			if t, err := time.Parse(time.RFC3339, created.String); err == nil {
				rec.CreatedAt = t
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }

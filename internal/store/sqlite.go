package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"divenludo/internal/game"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	target_word TEXT NOT NULL,
	hint        TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS guesses (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	attempt    INTEGER NOT NULL,
	text       TEXT NOT NULL,
	tags       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	UNIQUE (session_id, attempt)
);
`

// SQLiteStore persists sessions and their guess ledgers in SQLite.
type SQLiteStore struct {
	DB *sql.DB
}

// OpenSQLite opens (creating if missing) a SQLite database at dsn with WAL
// journaling, a busy timeout, and foreign keys enforced, then ensures the
// schema exists.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	// Ensure directory exists for ./data/app.db, etc.
	if dir := filepath.Dir(dsn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{DB: db}, nil
}

// NewSQLiteStore wraps an existing database handle. The schema must
// already exist.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: db}
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}

// Save upserts the session row and inserts any guess records not yet
// stored. Existing guess rows are never updated: the ledger is
// append-only, so "INSERT OR IGNORE" is sufficient.
func (s *SQLiteStore) Save(ctx context.Context, sess *game.Session) error {
	snapshot := sess.ToJSON()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, target_word, hint, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			updated_at = excluded.updated_at
	`, snapshot.ID, snapshot.TargetWord, snapshot.Hint, string(snapshot.Status), snapshot.CreatedAt, snapshot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	for attempt, rec := range snapshot.Records {
		tags, err := json.Marshal(rec.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO guesses (id, session_id, attempt, text, tags, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, rec.ID, snapshot.ID, attempt, rec.Text, string(tags), rec.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert guess: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get reconstructs a session and its ordered ledger by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*game.Session, error) {
	var snapshot game.SessionJSON
	var status string
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, target_word, hint, status, created_at, updated_at FROM sessions WHERE id = ?
	`, id).Scan(&snapshot.ID, &snapshot.TargetWord, &snapshot.Hint, &status, &snapshot.CreatedAt, &snapshot.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	snapshot.Status = game.Status(status)

	snapshot.Records, err = s.queryGuesses(ctx, id)
	if err != nil {
		return nil, err
	}

	if !validSession(snapshot) {
		return nil, fmt.Errorf("session %s violates word-length invariants", id)
	}
	return game.FromJSON(snapshot), nil
}

// ListGuesses returns the ordered guess records for a session.
func (s *SQLiteStore) ListGuesses(ctx context.Context, id string) ([]game.GuessRecord, error) {
	var exists int
	err := s.DB.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	return s.queryGuesses(ctx, id)
}

func (s *SQLiteStore) queryGuesses(ctx context.Context, id string) ([]game.GuessRecord, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, text, tags, created_at FROM guesses WHERE session_id = ? ORDER BY attempt
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list guesses: %w", err)
	}
	defer rows.Close()

	var records []game.GuessRecord
	for rows.Next() {
		var rec game.GuessRecord
		var tags string
		if err := rows.Scan(&rec.ID, &rec.Text, &tags, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes a session and, via the cascade, its guesses.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// CleanupExpired removes sessions not updated within maxAge.
func (s *SQLiteStore) CleanupExpired(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	res, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and creates if needed) a run history database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		tag TEXT NOT NULL,
		prefix TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		cached INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT,
		assets TEXT,
		duration_ms INTEGER NOT NULL,
		started_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_prefix ON runs(prefix);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record adds a run to the store.
func (s *SQLiteStore) Record(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	assetsJSON, err := json.Marshal(run.Assets)
	if err != nil {
		return fmt.Errorf("marshal assets: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO runs (id, tag, prefix, fingerprint, cached, outcome, error, assets, duration_ms, started_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.Tag, run.Prefix, run.Fingerprint, run.Cached, run.Outcome, run.Error, string(assetsJSON),
		run.Duration.Milliseconds(), run.StartedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent retrieves the newest runs first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, tag, prefix, fingerprint, cached, outcome, error, assets, duration_ms, started_at FROM runs ORDER BY seq DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			errText    sql.NullString
			assetsJSON sql.NullString
			durationMS int64
			startedMS  int64
		)
		if err := rows.Scan(&r.ID, &r.Tag, &r.Prefix, &r.Fingerprint, &r.Cached, &r.Outcome, &errText, &assetsJSON, &durationMS, &startedMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Error = errText.String
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.StartedAt = time.UnixMilli(startedMS)
		if assetsJSON.Valid && assetsJSON.String != "" {
			if err := json.Unmarshal([]byte(assetsJSON.String), &r.Assets); err != nil {
				return nil, fmt.Errorf("unmarshal assets: %w", err)
			}
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return runs, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

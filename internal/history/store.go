// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists completed collection runs in a local SQLite
// database. The store is write-only during collection: it is never
// consulted before querying the sources, so recorded runs are a log,
// not a cache.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/gene-scout/pkg/types"
)

const dbFile = "history.db"

// Store manages the run history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Entry is one recorded run. Payload is the full result payload JSON;
// List leaves it empty, Get fills it.
type Entry struct {
	ID          int64           `json:"id"`
	Query       string          `json:"query"`
	Kind        types.QueryKind `json:"type"`
	SourcesUsed []string        `json:"data_sources_used"`
	Summary     string          `json:"ai_summary"`
	CreatedAt   time.Time       `json:"created_at"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// NewStore opens or creates the history database at cfg.Dir/history.db,
// creating the schema if it does not exist.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		kind TEXT NOT NULL,
		sources_used TEXT NOT NULL,
		summary TEXT,
		payload TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Record appends one completed run and returns its id.
func (s *Store) Record(ctx context.Context, p types.ResultPayload) (int64, error) {
	sourcesJSON, err := json.Marshal(p.SourcesUsed)
	if err != nil {
		return 0, fmt.Errorf("marshaling sources: %w", err)
	}
	payloadJSON, err := json.Marshal(p)
	if err != nil {
		return 0, fmt.Errorf("marshaling payload: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (query, kind, sources_used, summary, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.Query, string(p.Kind), string(sourcesJSON), p.Summary, string(payloadJSON),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent runs, newest first, without payloads.
// A non-positive limit falls back to the configured maximum.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, kind, sources_used, summary, created_at FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows, false)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns one run by id, including its payload.
func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, kind, sources_used, summary, created_at, payload FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("querying run %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("no run with id %d", id)
	}
	e, err := scanEntry(rows, true)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanEntry(rows *sql.Rows, withPayload bool) (Entry, error) {
	var e Entry
	var kind, sourcesJSON, createdAt string
	var payload string

	dest := []any{&e.ID, &e.Query, &kind, &sourcesJSON, &e.Summary, &createdAt}
	if withPayload {
		dest = append(dest, &payload)
	}
	if err := rows.Scan(dest...); err != nil {
		return Entry{}, fmt.Errorf("scanning run: %w", err)
	}

	e.Kind = types.QueryKind(kind)
	if err := json.Unmarshal([]byte(sourcesJSON), &e.SourcesUsed); err != nil {
		return Entry{}, fmt.Errorf("parsing sources for run %d: %w", e.ID, err)
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp for run %d: %w", e.ID, err)
	}
	e.CreatedAt = t
	if withPayload {
		e.Payload = json.RawMessage(payload)
	}
	return e, nil
}

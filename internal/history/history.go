// Package history records completed fetch invocations in SQLite so cache
// effectiveness and registry activity can be inspected later.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const createTable = `
CREATE TABLE IF NOT EXISTS fetch_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	node TEXT NOT NULL,
	model TEXT NOT NULL,
	hash TEXT NOT NULL,
	sort_mode TEXT NOT NULL,
	pages_requested INTEGER NOT NULL,
	pages_fetched INTEGER NOT NULL,
	pages_failed INTEGER NOT NULL,
	images INTEGER NOT NULL,
	cache_hit INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Entry is one recorded invocation.
type Entry struct {
	ID             int64     `json:"id"`
	Node           string    `json:"node"`
	Model          string    `json:"model"`
	Hash           string    `json:"hash"`
	Sort           string    `json:"sort"`
	PagesRequested int       `json:"pages_requested"`
	PagesFetched   int       `json:"pages_fetched"`
	PagesFailed    int       `json:"pages_failed"`
	Images         int       `json:"images"`
	CacheHit       bool      `json:"cache_hit"`
	DurationMs     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// Summary aggregates the whole history table.
type Summary struct {
	Fetches   int64   `json:"fetches"`
	CacheHits int64   `json:"cache_hits"`
	HitRate   float64 `json:"hit_rate"`
	Models    int64   `json:"models"`
}

// Store is a SQLite-backed fetch history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one invocation.
func (s *Store) Record(e Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO fetch_history
		 (node, model, hash, sort_mode, pages_requested, pages_fetched, pages_failed, images, cache_hit, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Node, e.Model, e.Hash, e.Sort,
		e.PagesRequested, e.PagesFetched, e.PagesFailed, e.Images,
		boolToInt(e.CacheHit), e.DurationMs, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record fetch: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, node, model, hash, sort_mode, pages_requested, pages_fetched, pages_failed, images, cache_hit, duration_ms, created_at
		 FROM fetch_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var cacheHit int
		if err := rows.Scan(&e.ID, &e.Node, &e.Model, &e.Hash, &e.Sort,
			&e.PagesRequested, &e.PagesFetched, &e.PagesFailed, &e.Images,
			&cacheHit, &e.DurationMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.CacheHit = cacheHit != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Summarize reports totals across the whole table.
func (s *Store) Summarize() (Summary, error) {
	var sum Summary
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(cache_hit), 0), COUNT(DISTINCT hash) FROM fetch_history`,
	).Scan(&sum.Fetches, &sum.CacheHits, &sum.Models)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize history: %w", err)
	}
	if sum.Fetches > 0 {
		sum.HitRate = float64(sum.CacheHits) / float64(sum.Fetches)
	}
	return sum, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Package history persists completed search runs to a SQLite database so
// users can review and re-run past queries.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/findr/internal/filelock"
)

//go:embed schema.sql
var schemaSQL string

// SearchRecord is one completed search run.
type SearchRecord struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	Roots      []string  `json:"roots"`
	Pattern    string    `json:"pattern"`
	Mode       string    `json:"mode"` // "find" or "grep"
	Matches    int       `json:"matches"`
	Warnings   int       `json:"warnings"`
	DurationMS int64     `json:"duration_ms"`
}

// Stats aggregates the history table.
type Stats struct {
	TotalRuns    int
	TotalMatches int
	// TopPatterns lists the most-used patterns, most frequent first.
	TopPatterns []PatternCount
}

// PatternCount pairs a pattern with its usage count.
type PatternCount struct {
	Pattern string
	Count   int
}

// Store manages the SQLite database holding search history.
type Store struct {
	db     *sql.DB
	dbPath string
	keep   int
}

// NewStore opens (creating if necessary) the history database at dbPath.
// keep bounds the number of retained rows; 0 means unlimited.
func NewStore(dbPath string, keep int) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure SQLite for concurrent access with retry logic.
	// busy_timeout must come first so subsequent pragmas wait on locks held
	// by another findr process initializing the same file.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath, keep: keep}, nil
}

// execWithRetry executes a SQL statement with exponential backoff on
// "database is locked" errors; anything else fails immediately.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts one search run and prunes rows beyond the retention
// limit. An empty ID is assigned a fresh UUID.
func (s *Store) Record(ctx context.Context, rec *SearchRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}

	roots, err := json.Marshal(rec.Roots)
	if err != nil {
		return fmt.Errorf("encode roots: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO searches (id, started_at, roots, pattern, mode, match_count, warn_count, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StartedAt, string(roots), rec.Pattern, rec.Mode,
		rec.Matches, rec.Warnings, rec.DurationMS)
	if err != nil {
		return fmt.Errorf("insert search record: %w", err)
	}

	if s.keep > 0 {
		_, err = s.db.ExecContext(ctx,
			`DELETE FROM searches WHERE id NOT IN (
			     SELECT id FROM searches ORDER BY started_at DESC, id LIMIT ?)`,
			s.keep)
		if err != nil {
			return fmt.Errorf("prune search history: %w", err)
		}
	}
	return nil
}

// Recent returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]SearchRecord, error) {
	q := `SELECT id, started_at, roots, pattern, mode, match_count, warn_count, duration_ms
	      FROM searches ORDER BY started_at DESC, id`
	args := []interface{}{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query search history: %w", err)
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var rec SearchRecord
		var roots string
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &roots, &rec.Pattern, &rec.Mode,
			&rec.Matches, &rec.Warnings, &rec.DurationMS); err != nil {
			return nil, fmt.Errorf("scan search record: %w", err)
		}
		if err := json.Unmarshal([]byte(roots), &rec.Roots); err != nil {
			return nil, fmt.Errorf("decode roots for %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search history: %w", err)
	}
	return records, nil
}

// GetStats aggregates the history table.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(match_count), 0) FROM searches`)
	if err := row.Scan(&stats.TotalRuns, &stats.TotalMatches); err != nil {
		return nil, fmt.Errorf("aggregate search history: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT pattern, COUNT(*) AS uses FROM searches
		 WHERE pattern != '' GROUP BY pattern ORDER BY uses DESC, pattern LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("query top patterns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pc PatternCount
		if err := rows.Scan(&pc.Pattern, &pc.Count); err != nil {
			return nil, fmt.Errorf("scan pattern count: %w", err)
		}
		stats.TopPatterns = append(stats.TopPatterns, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top patterns: %w", err)
	}
	return stats, nil
}

// Clear deletes all history rows.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM searches`); err != nil {
		return fmt.Errorf("clear search history: %w", err)
	}
	return nil
}

// Export writes the full history as indented JSON to path. The write is
// lock-guarded and atomic so concurrent findr processes cannot corrupt it.
func (s *Store) Export(ctx context.Context, path string) error {
	records, err := s.Recent(ctx, 0)
	if err != nil {
		return err
	}
	if records == nil {
		records = []SearchRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode search history: %w", err)
	}
	data = append(data, '\n')

	if err := filelock.WriteLocked(path, data); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

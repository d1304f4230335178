package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/codecollab/swarm/pkg/models"
)

// Store wraps an SQLite database holding the durable run history.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// DefaultDBPath returns the path to the default history database.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "swarm", "history.db")
}

// Open opens an SQLite database at the given path.
// It creates the parent directories if they don't exist.
// WAL mode is enabled for concurrent reads.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	store := &Store{
		conn: conn,
		path: path,
	}

	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

// migrate applies all pending schema migrations.
func (s *Store) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Runs},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Runs = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	task_description TEXT NOT NULL,
	success INTEGER NOT NULL DEFAULT 0,
	final_decision TEXT NOT NULL,
	quality_score INTEGER NOT NULL DEFAULT 0,
	complexity TEXT NOT NULL,
	handoff_count INTEGER NOT NULL DEFAULT 0,
	execution_time_ms INTEGER NOT NULL DEFAULT 0,
	total_tokens INTEGER NOT NULL DEFAULT 0,
	payment_amount REAL NOT NULL DEFAULT 0.0,
	failure_tag TEXT,
	error TEXT,
	started_at DATETIME NOT NULL,
	result_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_success ON runs(success);
`

// SaveRun persists one run result. The queryable columns cover what the
// history listing needs; the full result is kept as JSON alongside.
func (s *Store) SaveRun(result *models.RunResult) error {
	if result == nil {
		return fmt.Errorf("save run: nil result")
	}

	full, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal run %s: %w", result.ID, err)
	}

	var amount float64
	if result.Payment != nil {
		amount = result.Payment.Amount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.conn.Exec(`
		INSERT OR REPLACE INTO runs (
			id, task_description, success, final_decision, quality_score,
			complexity, handoff_count, execution_time_ms, total_tokens,
			payment_amount, failure_tag, error, started_at, result_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.ID,
		result.TaskDescription,
		boolToInt(result.Success),
		string(result.FinalDecision),
		result.QualityScore,
		string(result.Complexity),
		result.HandoffCount,
		result.ExecutionTimeMS,
		result.TotalTokens,
		amount,
		string(result.FailureTag),
		result.Error,
		formatTime(result.StartedAt),
		string(full),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", result.ID, err)
	}

	return nil
}

// GetRun loads one run by ID. Returns nil, nil when not found.
func (s *Store) GetRun(id string) (*models.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	row := s.conn.QueryRow("SELECT result_json FROM runs WHERE id = ?", id)
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	var result models.RunResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &result, nil
}

// ListRuns returns up to limit runs, newest-first.
func (s *Store) ListRuns(limit int) ([]*models.RunResult, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(`
		SELECT result_json FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var results []*models.RunResult
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		var result models.RunResult
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
		results = append(results, &result)
	}
	return results, rows.Err()
}

// Stats summarizes the stored history.
type Stats struct {
	// TotalRuns is the number of stored runs.
	TotalRuns int64 `json:"total_runs"`
	// SuccessfulRuns is the number of successful runs.
	SuccessfulRuns int64 `json:"successful_runs"`
	// TotalEarned is the sum of all payment amounts.
	TotalEarned float64 `json:"total_earned"`
	// TotalTokens is the sum of tokens used across runs.
	TotalTokens int64 `json:"total_tokens"`
}

// Stats aggregates the stored runs.
func (s *Store) Stats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats Stats
	row := s.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(success), 0),
		       COALESCE(SUM(payment_amount), 0.0),
		       COALESCE(SUM(total_tokens), 0)
		FROM runs
	`)
	if err := row.Scan(&stats.TotalRuns, &stats.SuccessfulRuns, &stats.TotalEarned, &stats.TotalTokens); err != nil {
		return Stats{}, fmt.Errorf("history stats: %w", err)
	}
	return stats, nil
}

// PurgeOldRuns deletes runs older than the specified duration.
// Returns the number of runs deleted.
func (s *Store) PurgeOldRuns(olderThan time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.conn.Exec("DELETE FROM runs WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge old runs: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return count, nil
}

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

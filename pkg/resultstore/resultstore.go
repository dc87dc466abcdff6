// Package resultstore persists run metadata and per-cell prediction
// results in SQLite. Snapshots are upserted throughout the run, so the
// database always reflects the most recent known state of every
// (record, predictor) pair even if the process dies mid-run.
package resultstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/loschmidt/BenchStab/pkg/dataset"
)

// Store provides SQLite-based persistence for prediction runs.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and prepares the schema.
func New(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Writes are serialized in SQLite, keep the pool small.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		records INTEGER NOT NULL,
		predictors TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS results (
		run_id TEXT NOT NULL,
		record_idx INTEGER NOT NULL,
		predictor TEXT NOT NULL,
		identifier TEXT NOT NULL,
		mutation TEXT NOT NULL,
		chain TEXT,
		ddg REAL,
		status TEXT NOT NULL,
		status_message TEXT,
		input_type TEXT,
		url TEXT,
		elapsed_seconds REAL NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (run_id, record_idx, predictor),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// CreateRun records the start of a run.
func (s *Store) CreateRun(runID string, records int, predictors string) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, started_at, records, predictors) VALUES (?, ?, ?, ?)`,
		runID, time.Now().UTC(), records, predictors,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// FinishRun stamps the run's completion time.
func (s *Store) FinishRun(runID string) error {
	_, err := s.db.Exec(
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		time.Now().UTC(), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// SaveSnapshot upserts every row of a result table for the given run.
// Calling it repeatedly with fresher tables keeps the rows current.
func (s *Store) SaveSnapshot(runID string, table *dataset.ResultTable) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO results (
			run_id, record_idx, predictor, identifier, mutation, chain,
			ddg, status, status_message, input_type, url, elapsed_seconds, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, record_idx, predictor) DO UPDATE SET
			ddg = excluded.ddg,
			status = excluded.status,
			status_message = excluded.status_message,
			url = excluded.url,
			elapsed_seconds = excluded.elapsed_seconds,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	idx := 0
	prev := ""
	for _, row := range table.Rows {
		// Record index restarts for each predictor block of the table.
		if row.Predictor != prev {
			idx = 0
			prev = row.Predictor
		}
		var ddg interface{}
		if row.DDG != nil {
			ddg = *row.DDG
		}
		if _, err := stmt.Exec(
			runID, idx, row.Predictor, row.Identifier, row.Mutation, row.Chain,
			ddg, row.Status, row.StatusMessage, row.InputType, row.URL,
			row.ElapsedSeconds, now,
		); err != nil {
			return fmt.Errorf("failed to save result row: %w", err)
		}
		idx++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// LoadResults reads back the stored rows of a run, ordered by predictor
// and record index.
func (s *Store) LoadResults(runID string) (*dataset.ResultTable, error) {
	rows, err := s.db.Query(`
		SELECT identifier, mutation, chain, ddg, status, status_message,
		       predictor, input_type, url, elapsed_seconds
		FROM results WHERE run_id = ?
		ORDER BY predictor, record_idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	table := &dataset.ResultTable{}
	for rows.Next() {
		var (
			row   dataset.ResultRow
			ddg   sql.NullFloat64
			chain sql.NullString
			msg   sql.NullString
			url   sql.NullString
		)
		if err := rows.Scan(
			&row.Identifier, &row.Mutation, &chain, &ddg, &row.Status,
			&msg, &row.Predictor, &row.InputType, &url, &row.ElapsedSeconds,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		if ddg.Valid {
			v := ddg.Float64
			row.DDG = &v
		}
		row.Chain = chain.String
		row.StatusMessage = msg.String
		row.URL = url.String
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	return table, nil
}

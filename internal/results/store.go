package results

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"gauntlet/internal/faults"
)

// Store persists runs to a SQLite database.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open creates or opens the results database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		agent TEXT NOT NULL,
		suite TEXT NOT NULL,
		seed INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		elapsed_ms INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS samples (
		run_id TEXT NOT NULL,
		definition TEXT NOT NULL,
		sample INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		question TEXT NOT NULL,
		expected TEXT NOT NULL,
		answer TEXT,
		verdict TEXT NOT NULL,
		detail TEXT,
		failure_kind TEXT,
		failure_field TEXT,
		failure_message TEXT,
		dir TEXT,
		elapsed_ms INTEGER NOT NULL,
		PRIMARY KEY (run_id, definition, sample),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);
	CREATE INDEX IF NOT EXISTS idx_samples_verdict ON samples(verdict);
	CREATE INDEX IF NOT EXISTS idx_samples_definition ON samples(definition);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun writes the run and all its samples in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, agent, suite, seed, started_at, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Agent, run.Suite, run.Seed, run.StartedAt, run.Elapsed.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO samples (run_id, definition, sample, seed, question, expected,
			answer, verdict, detail, failure_kind, failure_field, failure_message,
			dir, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for _, smp := range run.Samples {
		var kind, field, message any
		if smp.Failure != nil {
			kind = string(smp.Failure.Kind)
			field = smp.Failure.Field
			message = smp.Failure.Message
		}
		_, err = stmt.ExecContext(ctx, run.ID, smp.Definition, smp.Sample, smp.Seed,
			smp.Question, smp.Expected, smp.Answer, smp.Verdict, smp.Detail,
			kind, field, message, smp.Dir, smp.Elapsed.Milliseconds())
		if err != nil {
			return fmt.Errorf("failed to save sample %s/%d: %w", smp.Definition, smp.Sample, err)
		}
	}

	return tx.Commit()
}

// LoadRun reads one run and its samples back. Returns sql.ErrNoRows wrapped
// when the id is unknown.
func (s *Store) LoadRun(ctx context.Context, id string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &Run{ID: id}
	var elapsedMs int64
	err := s.db.QueryRowContext(ctx, `
		SELECT agent, suite, seed, started_at, elapsed_ms FROM runs WHERE id = ?
	`, id).Scan(&run.Agent, &run.Suite, &run.Seed, &run.StartedAt, &elapsedMs)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	run.Elapsed = time.Duration(elapsedMs) * time.Millisecond

	rows, err := s.db.QueryContext(ctx, `
		SELECT definition, sample, seed, question, expected, answer, verdict,
			detail, failure_kind, failure_field, failure_message, dir, elapsed_ms
		FROM samples
		WHERE run_id = ?
		ORDER BY definition, sample
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var smp Sample
		var answer, detail, kind, field, message, dir sql.NullString
		var sampleElapsedMs int64
		if err := rows.Scan(&smp.Definition, &smp.Sample, &smp.Seed, &smp.Question,
			&smp.Expected, &answer, &smp.Verdict, &detail, &kind, &field, &message,
			&dir, &sampleElapsedMs); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		smp.Answer = answer.String
		smp.Detail = detail.String
		smp.Dir = dir.String
		smp.Elapsed = time.Duration(sampleElapsedMs) * time.Millisecond
		if kind.Valid {
			smp.Failure = &faults.Record{
				Kind:    faults.Kind(kind.String),
				Message: message.String,
				Field:   field.String,
			}
		}
		run.Samples = append(run.Samples, smp)
	}
	return run, rows.Err()
}

// RunInfo is one row of the run listing.
type RunInfo struct {
	ID        string
	Agent     string
	Suite     string
	StartedAt time.Time
	Total     int
	Passed    int
}

// ListRuns returns recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.agent, r.suite, r.started_at,
			COUNT(s.run_id),
			COALESCE(SUM(CASE WHEN s.verdict = 'pass' THEN 1 ELSE 0 END), 0)
		FROM runs r
		LEFT JOIN samples s ON s.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var infos []RunInfo
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.ID, &info.Agent, &info.Suite, &info.StartedAt,
			&info.Total, &info.Passed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/vktec/afkslime"
)

// Store keeps a history of search runs in SQLite.
type Store struct {
	db *sql.DB
}

// Run is one recorded search.
type Run struct {
	ID        string
	StartedAt time.Time
	Radius    int32
	// Threshold the search filtered with; it decides which results the run kept.
	Threshold int
	Report    afkslime.Report
}

func OpenSQLite(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			seed_text TEXT NOT NULL,
			search_range INTEGER NOT NULL,
			radius INTEGER NOT NULL,
			threshold INTEGER,
			candidates INTEGER NOT NULL,
			best_x INTEGER NOT NULL,
			best_z INTEGER NOT NULL,
			best_count INTEGER NOT NULL,
			slime_json TEXT NOT NULL,
			started_at TEXT NOT NULL,
			elapsed_ns INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			rank INTEGER NOT NULL,
			x INTEGER NOT NULL,
			z INTEGER NOT NULL,
			chunks INTEGER NOT NULL,
			PRIMARY KEY (run_id, rank)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	if err := migrateRunsThreshold(db); err != nil {
		return fmt.Errorf("migrate runs: %w", err)
	}
	for _, s := range []string{
		`DROP INDEX IF EXISTS idx_runs_seed_range;`,
		`CREATE INDEX IF NOT EXISTS idx_runs_lookup ON runs(seed, search_range, radius, threshold, started_at);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','2');`,
	} {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Schema version 1 had no threshold column. Its runs keep a NULL threshold,
// which no lookup matches, since the filter they used is unknown.
func migrateRunsThreshold(db *sql.DB) error {
	rows, err := db.Query(`PRAGMA table_info(runs);`)
	if err != nil {
		return err
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return err
		}
		found = found || name == "threshold"
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if found {
		return nil
	}
	_, err = db.Exec(`ALTER TABLE runs ADD COLUMN threshold INTEGER;`)
	return err
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun saves run and its top list, assigning an ID and start time if unset.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	rep := run.Report
	slime, err := json.Marshal(rep.Slime)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs(id,seed,seed_text,search_range,radius,threshold,candidates,best_x,best_z,best_count,slime_json,started_at,elapsed_ns)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, rep.Seed, rep.SeedText, rep.Range, run.Radius, run.Threshold, rep.Candidates,
		rep.Best.X, rep.Best.Z, int64(rep.Best.Count), string(slime),
		run.StartedAt.UTC().Format(timeLayout), int64(rep.Elapsed))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO results(run_id,rank,x,z,chunks) VALUES(?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, r := range rep.Top {
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.X, r.Z, int64(r.Count)); err != nil {
			return fmt.Errorf("insert result %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Fixed width so started_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = `id,seed,seed_text,search_range,radius,threshold,candidates,best_x,best_z,best_count,slime_json,started_at,elapsed_ns`

// FindRun returns the latest run for the same search, with its top list.
func (s *Store) FindRun(ctx context.Context, seed int64, searchRange, radius int32, threshold int) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs
		WHERE seed=? AND search_range=? AND radius=? AND threshold=? ORDER BY started_at DESC LIMIT 1`,
		seed, searchRange, radius, threshold)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	if run.Report.Top, err = s.loadTop(ctx, run.ID); err != nil {
		return Run{}, false, err
	}
	return run, true, nil
}

// ListRuns returns the most recent runs first, without their top lists.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) loadTop(ctx context.Context, runID string) ([]afkslime.Result, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT x,z,chunks FROM results WHERE run_id=? ORDER BY rank`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []afkslime.Result
	for rows.Next() {
		var (
			r     afkslime.Result
			count int64
		)
		if err := rows.Scan(&r.X, &r.Z, &count); err != nil {
			return nil, err
		}
		r.Count = uint(count)
		top = append(top, r)
	}
	return top, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run       Run
		rep       = &run.Report
		count     int64
		slime     string
		startedAt string
		elapsed   int64
		threshold sql.NullInt64
	)
	err := sc.Scan(&run.ID, &rep.Seed, &rep.SeedText, &rep.Range, &run.Radius, &threshold, &rep.Candidates,
		&rep.Best.X, &rep.Best.Z, &count, &slime, &startedAt, &elapsed)
	if err != nil {
		return Run{}, err
	}
	run.Threshold = int(threshold.Int64)
	rep.Best.Count = uint(count)
	rep.Elapsed = time.Duration(elapsed)
	if err := json.Unmarshal([]byte(slime), &rep.Slime); err != nil {
		return Run{}, fmt.Errorf("run %s: slime: %w", run.ID, err)
	}
	if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return Run{}, fmt.Errorf("run %s: started_at: %w", run.ID, err)
	}
	return run, nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/belegwerk/belegscan/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS scan_runs (
	id          TEXT PRIMARY KEY,
	input_dir   TEXT NOT NULL,
	output_path TEXT NOT NULL,
	format      TEXT NOT NULL,
	status      TEXT NOT NULL,
	files       INTEGER NOT NULL DEFAULT 0,
	amounts     INTEGER NOT NULL DEFAULT 0,
	periods     INTEGER NOT NULL DEFAULT 0,
	failures    INTEGER NOT NULL DEFAULT 0,
	results     TEXT,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scan_runs_status ON scan_runs(status);
CREATE INDEX IF NOT EXISTS idx_scan_runs_input_dir ON scan_runs(input_dir);
CREATE INDEX IF NOT EXISTS idx_scan_runs_started_at ON scan_runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.ScanRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	resultsJSON, err := json.Marshal(run.Results)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal results")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scan_runs
		 (id, input_dir, output_path, format, status, files, amounts, periods, failures, results, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputDir, run.OutputPath, run.Format, string(run.Status),
		run.Files, run.Amounts, run.Periods, run.Failures,
		string(resultsJSON), run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.ScanRun, error) {
	// Prefix match lets users paste the short IDs shown in listings.
	// substr instead of LIKE so % and _ in the argument stay literal.
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input_dir, output_path, format, status, files, amounts, periods, failures, results, started_at, finished_at
		 FROM scan_runs WHERE substr(id, 1, length(?)) = ?
		 ORDER BY started_at DESC LIMIT 1`,
		runID, runID,
	)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "%s", runID)
	}
	return run, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ScanRun, error) {
	query := `SELECT id, input_dir, output_path, format, status, files, amounts, periods, failures, results, started_at, finished_at
	          FROM scan_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.InputDir != "" {
		query += ` AND input_dir = ?`
		args = append(args, filter.InputDir)
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.ScanRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) Stats(ctx context.Context) (*RunStats, error) {
	var st RunStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(files), 0), COALESCE(SUM(amounts), 0),
		        COALESCE(SUM(periods), 0), COALESCE(SUM(failures), 0)
		 FROM scan_runs`,
	).Scan(&st.Runs, &st.Files, &st.Amounts, &st.Periods, &st.Failures)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT started_at FROM scan_runs ORDER BY started_at DESC LIMIT 1`,
	)
	if err := row.Scan(&st.LastRun); err != nil && err != sql.ErrNoRows {
		return nil, eris.Wrap(err, "sqlite: stats last run")
	}
	return &st, nil
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.ScanRun, error) {
	var r model.ScanRun
	var resultsJSON sql.NullString

	err := row.Scan(&r.ID, &r.InputDir, &r.OutputPath, &r.Format, &r.Status,
		&r.Files, &r.Amounts, &r.Periods, &r.Failures,
		&resultsJSON, &r.StartedAt, &r.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if resultsJSON.Valid && resultsJSON.String != "" && resultsJSON.String != "null" {
		if err := json.Unmarshal([]byte(resultsJSON.String), &r.Results); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal results")
		}
	}
	return &r, nil
}

// Public domain.

// Package runlog keeps a history of compaction runs in a SQLite database.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one compaction run.
type Run struct {
	ID          int64
	Time        time.Time
	Input       string
	Output      string
	Model       string
	Preset      string
	Policy      string
	TMax        float64
	Threshold   float64
	TermsBefore int
	TermsAfter  int
	CharsBefore int
	CharsAfter  int
	Failures    int
	// MaxPosErr is the largest measured relative position error, or 0 if
	// errors were not measured.
	MaxPosErr float64
}

// Log is an open run database.
type Log struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	time INTEGER NOT NULL,
	input TEXT NOT NULL,
	output TEXT NOT NULL,
	model TEXT NOT NULL,
	preset TEXT NOT NULL,
	policy TEXT NOT NULL,
	t_max REAL NOT NULL,
	threshold REAL NOT NULL,
	terms_before INTEGER NOT NULL,
	terms_after INTEGER NOT NULL,
	chars_before INTEGER NOT NULL,
	chars_after INTEGER NOT NULL,
	failures INTEGER NOT NULL,
	max_pos_err REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_time ON runs(time);`

// Open opens or creates the database at path.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("runlog: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("runlog: open %s: %w", path, err)
	}
	// one writer
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: schema: %w", err)
	}
	return &Log{db: db}, nil
}

func (l *Log) Close() error { return l.db.Close() }

// Record stores r and returns its ID.  A zero Time is set to now.
func (l *Log) Record(ctx context.Context, r Run) (int64, error) {
	if r.Time.IsZero() {
		r.Time = time.Now()
	}
	res, err := l.db.ExecContext(ctx, `INSERT INTO runs
		(time, input, output, model, preset, policy, t_max, threshold,
		 terms_before, terms_after, chars_before, chars_after, failures, max_pos_err)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Time.UnixNano(), r.Input, r.Output, r.Model, r.Preset, r.Policy, r.TMax, r.Threshold,
		r.TermsBefore, r.TermsAfter, r.CharsBefore, r.CharsAfter, r.Failures, r.MaxPosErr)
	if err != nil {
		return 0, fmt.Errorf("runlog: record: %w", err)
	}
	return res.LastInsertId()
}

// List returns the latest runs, newest first.  limit <= 0 lists all.
func (l *Log) List(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, time, input, output, model, preset, policy, t_max, threshold,
		terms_before, terms_after, chars_before, chars_after, failures, max_pos_err
		FROM runs ORDER BY time DESC, id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("runlog: list: %w", err)
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var r Run
		var ns int64
		if err := rows.Scan(&r.ID, &ns, &r.Input, &r.Output, &r.Model, &r.Preset, &r.Policy,
			&r.TMax, &r.Threshold, &r.TermsBefore, &r.TermsAfter, &r.CharsBefore,
			&r.CharsAfter, &r.Failures, &r.MaxPosErr); err != nil {
			return nil, fmt.Errorf("runlog: list: %w", err)
		}
		r.Time = time.Unix(0, ns)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Ratio is the fraction of characters kept.
func (r Run) Ratio() float64 {
	if r.CharsBefore == 0 {
		return 1
	}
	return float64(r.CharsAfter) / float64(r.CharsBefore)
}

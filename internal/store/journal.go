package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// Action kinds.
const (
	ActionDuplicate = "duplicate"
	ActionLive      = "live"
	ActionOffline   = "offline"
	ActionDelete    = "delete"
)

// Action outcomes.
const (
	OutcomeDone    = "done"
	OutcomeSkipped = "skipped"
)

type Action struct {
	Kind     string    `json:"kind"`
	PostID   int       `json:"postId"`
	JobID    int       `json:"jobId"`
	BoardID  int       `json:"boardId"`
	Location string    `json:"location"`
	Outcome  string    `json:"outcome"`
	Detail   string    `json:"detail"`
	At       time.Time `json:"at"`
}

type ErrorRecord struct {
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields"`
	At      time.Time      `json:"at"`
}

type Run struct {
	ID         string    `json:"id"`
	Command    string    `json:"command"`
	JobID      int       `json:"jobId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error"`
}

// Journal records one run's mutations and reported errors.
type Journal struct {
	db    *sql.DB
	runID string
}

func NewJournal(db *DB, runID string) *Journal {
	return &Journal{db: db.Pool, runID: runID}
}

func (j *Journal) RunID() string { return j.runID }

func (j *Journal) StartRun(ctx context.Context, command string, jobID int) error {
	_, err := j.db.ExecContext(ctx, `
INSERT INTO runs(id, command, job_id, started_at)
VALUES(?,?,?,?);`, j.runID, command, jobID, now())
	if err != nil {
		return fmt.Errorf("start run %s: %w", j.runID, err)
	}
	return nil
}

// FinishRun stamps the run with its outcome; a nil runErr means success.
func (j *Journal) FinishRun(ctx context.Context, runErr error) error {
	outcome, msg := "ok", ""
	if runErr != nil {
		outcome, msg = "failed", runErr.Error()
	}
	_, err := j.db.ExecContext(ctx, `
UPDATE runs SET finished_at = ?, outcome = ?, error = ?
WHERE id = ?;`, now(), outcome, msg, j.runID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", j.runID, err)
	}
	return nil
}

func (j *Journal) RecordAction(ctx context.Context, a Action) error {
	if a.Outcome == "" {
		a.Outcome = OutcomeDone
	}
	_, err := j.db.ExecContext(ctx, `
INSERT INTO actions(run_id, kind, post_id, job_id, board_id, location, outcome, detail, at)
VALUES(?,?,?,?,?,?,?,?,?);`,
		j.runID, a.Kind, a.PostID, a.JobID, a.BoardID, a.Location, a.Outcome, a.Detail, now())
	if err != nil {
		return fmt.Errorf("record %s post=%d: %w", a.Kind, a.PostID, err)
	}
	return nil
}

// RecordError stores a reported error for the current run.
func (j *Journal) RecordError(ctx context.Context, msg string, fields map[string]any) error {
	b, err := json.Marshal(fields)
	if err != nil {
		log.Printf("[store] error fields not serializable: %v", err)
		b = []byte("{}")
	}
	_, err = j.db.ExecContext(ctx, `
INSERT INTO errors(run_id, message, fields, at)
VALUES(?,?,?,?);`, j.runID, msg, string(b), now())
	if err != nil {
		return fmt.Errorf("record error: %w", err)
	}
	return nil
}

func (j *Journal) Actions(ctx context.Context, runID string) ([]Action, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT kind, post_id, job_id, board_id, location, outcome, detail, at
FROM actions
WHERE run_id = ?
ORDER BY id ASC;`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Action
	for rows.Next() {
		var a Action
		var at string
		if err := rows.Scan(&a.Kind, &a.PostID, &a.JobID, &a.BoardID, &a.Location, &a.Outcome, &a.Detail, &at); err != nil {
			return nil, err
		}
		a.At, _ = time.Parse(tsLayout, at)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (j *Journal) Errors(ctx context.Context, runID string) ([]ErrorRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT message, fields, at
FROM errors
WHERE run_id = ?
ORDER BY id ASC;`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ErrorRecord
	for rows.Next() {
		var e ErrorRecord
		var fields, at string
		if err := rows.Scan(&e.Message, &fields, &at); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(fields), &e.Fields)
		e.At, _ = time.Parse(tsLayout, at)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Runs lists the most recent runs first.
func (j *Journal) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT id, command, job_id, started_at, finished_at, outcome, error
FROM runs
ORDER BY started_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Command, &r.JobID, &started, &finished, &r.Outcome, &r.Error); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(tsLayout, started)
		r.FinishedAt, _ = time.Parse(tsLayout, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CleanupOldRuns drops runs and their rows older than age.
func CleanupOldRuns(ctx context.Context, db *sql.DB, age time.Duration) (deleted int64, err error) {
	cutoff := time.Now().UTC().Add(-age).Format(tsLayout)
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM actions WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?);`,
		`DELETE FROM errors WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?);`,
	} {
		if _, err := tx.ExecContext(ctx, q, cutoff); err != nil {
			return 0, fmt.Errorf("cleanup old runs: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup old runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// tsLayout is fixed width so stored timestamps sort as text.
const tsLayout = "2006-01-02T15:04:05.000000Z"

func now() string {
	return time.Now().UTC().Format(tsLayout)
}

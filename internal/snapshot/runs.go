package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Run status values.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Run is one recorded match run over a single input file.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	InputFile  string
	SourceID   string
	OutputDir  string
	Records    int
	Counts     map[string]int
	Status     string
	Error      string
}

// StartRun inserts a running row for run.
func (s *Store) StartRun(ctx context.Context, run Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, input_file, source_id, output_dir, status)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(time.RFC3339Nano), run.InputFile, run.SourceID,
		nullableString(run.OutputDir), RunRunning,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores final counters and status. A non-nil runErr marks the run
// failed.
func (s *Store) FinishRun(ctx context.Context, runID string, records int, counts map[string]int, runErr error) error {
	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("marshal counts: %w", err)
	}
	status := RunCompleted
	message := ""
	if runErr != nil {
		status = RunFailed
		message = runErr.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, records = ?, counts_json = ?, status = ?, error_message = ?
         WHERE run_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), records, string(countsJSON), status,
		nullableString(message), runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update run: no run with id %s", runID)
	}
	return nil
}

// Runs returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT run_id, started_at, finished_at, input_file, source_id, output_dir,
                     records, counts_json, status, error_message
              FROM runs ORDER BY started_at DESC, run_id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run                 Run
			started             string
			finished, outputDir sql.NullString
			countsJSON, message sql.NullString
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.InputFile, &run.SourceID, &outputDir,
			&run.Records, &countsJSON, &run.Status, &message); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished.String)
		run.OutputDir = outputDir.String
		run.Error = message.String
		if countsJSON.Valid && countsJSON.String != "" {
			if err := json.Unmarshal([]byte(countsJSON.String), &run.Counts); err != nil {
				return nil, fmt.Errorf("decode counts for run %s: %w", run.ID, err)
			}
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

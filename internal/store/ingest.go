package store

import (
	"database/sql"
	"time"
)

// IngestRun represents a single dataset import for auditing.
type IngestRun struct {
	ID                int64
	StartedAt         time.Time
	FinishedAt        sql.NullTime
	Source            string // dataset location
	Scheme            string // "file", "https", "ftp", ...
	ResponseSizeBytes sql.NullInt64
	RecordsParsed     sql.NullInt64
	RecordsStored     sql.NullInt64
	InvalidRecords    sql.NullInt64 // records carrying at least one quality flag
	Success           bool
	ErrorMessage      sql.NullString
}

// StartIngestRun creates a new ingest run record and returns it.
func (s *Store) StartIngestRun(source, scheme string) (*IngestRun, error) {
	run := &IngestRun{
		StartedAt: time.Now().UTC(),
		Source:    source,
		Scheme:    scheme,
	}

	result, err := s.db.Exec(`
		INSERT INTO ingest_runs (started_at, source, scheme, success)
		VALUES (?, ?, ?, FALSE)
	`, run.StartedAt, run.Source, run.Scheme)
	if err != nil {
		return nil, err
	}

	run.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return run, nil
}

// CompleteIngestRun updates the ingest run with results.
func (s *Store) CompleteIngestRun(run *IngestRun) error {
	if run == nil {
		return nil
	}

	run.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}

	_, err := s.db.Exec(`
		UPDATE ingest_runs SET
			finished_at = ?,
			response_size_bytes = ?,
			records_parsed = ?,
			records_stored = ?,
			invalid_records = ?,
			success = ?,
			error_message = ?
		WHERE id = ?
	`, run.FinishedAt, run.ResponseSizeBytes, run.RecordsParsed, run.RecordsStored,
		run.InvalidRecords, run.Success, run.ErrorMessage, run.ID)
	return err
}

// RecentIngestRuns returns the latest runs, newest first.
func (s *Store) RecentIngestRuns(limit int) ([]IngestRun, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, source, scheme,
			   response_size_bytes, records_parsed, records_stored, invalid_records,
			   success, error_message
		FROM ingest_runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []IngestRun
	for rows.Next() {
		var r IngestRun
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Source, &r.Scheme,
			&r.ResponseSizeBytes, &r.RecordsParsed, &r.RecordsStored, &r.InvalidRecords,
			&r.Success, &r.ErrorMessage); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// LastSuccessfulIngest returns the most recent successful run, or nil if
// there is none.
func (s *Store) LastSuccessfulIngest() (*IngestRun, error) {
	runs, err := s.db.Query(`
		SELECT id, started_at, finished_at, source, scheme,
			   response_size_bytes, records_parsed, records_stored, invalid_records,
			   success, error_message
		FROM ingest_runs
		WHERE success = TRUE
		ORDER BY id DESC
		LIMIT 1
	`)
	if err != nil {
		return nil, err
	}
	defer runs.Close()

	if !runs.Next() {
		return nil, runs.Err()
	}
	var r IngestRun
	if err := runs.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Source, &r.Scheme,
		&r.ResponseSizeBytes, &r.RecordsParsed, &r.RecordsStored, &r.InvalidRecords,
		&r.Success, &r.ErrorMessage); err != nil {
		return nil, err
	}
	return &r, nil
}

package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists run records to a SQLite database. One row is stored
// per run plus one row per scheduled stop so technician and job filters run
// in SQL.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS routing_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    ts INTEGER NOT NULL,
    strategy TEXT,
    record TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS routing_stops (
    run_id TEXT NOT NULL,
    technician_id TEXT NOT NULL,
    job_id TEXT
);
CREATE INDEX IF NOT EXISTS idx_routing_stops_run ON routing_stops(run_id);`

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the record and its stops in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, rec LogRecord) (err error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO routing_runs (run_id, ts, strategy, record) VALUES (?, ?, ?, ?)`,
		rec.RunID, rec.Timestamp.Unix(), rec.Strategy, string(b)); err != nil {
		return err
	}
	techs := append([]string(nil), rec.Technicians...)
	for id := range rec.Schedule {
		if !containsString(techs, id) {
			techs = append(techs, id)
		}
	}
	for _, tech := range techs {
		stops := rec.Schedule[tech]
		if len(stops) == 0 {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO routing_stops (run_id, technician_id, job_id) VALUES (?, ?, NULL)`,
				rec.RunID, tech); err != nil {
				return err
			}
			continue
		}
		for _, st := range stops {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO routing_stops (run_id, technician_id, job_id) VALUES (?, ?, ?)`,
				rec.RunID, tech, st.JobID); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// Query returns records matching q, oldest first.
func (s *SQLiteStore) Query(ctx context.Context, q LogQuery) ([]LogRecord, error) {
	var args []any
	query := `SELECT r.record FROM routing_runs r WHERE 1=1`
	if !q.Start.IsZero() {
		query += ` AND r.ts >= ?`
		args = append(args, q.Start.Unix())
	}
	if !q.End.IsZero() {
		query += ` AND r.ts <= ?`
		args = append(args, q.End.Unix())
	}
	if q.RunID != "" {
		query += ` AND r.run_id = ?`
		args = append(args, q.RunID)
	}
	if q.Strategy != "" {
		query += ` AND r.strategy = ?`
		args = append(args, q.Strategy)
	}
	if q.TechnicianID != "" {
		query += ` AND EXISTS (SELECT 1 FROM routing_stops s WHERE s.run_id = r.run_id AND s.technician_id = ?)`
		args = append(args, q.TechnicianID)
	}
	if q.JobID != "" {
		query += ` AND EXISTS (SELECT 1 FROM routing_stops s WHERE s.run_id = r.run_id AND s.job_id = ?)`
		args = append(args, q.JobID)
	}
	query += ` ORDER BY r.ts, r.id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []LogRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r LogRecord
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

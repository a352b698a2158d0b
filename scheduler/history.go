package scheduler

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// History persists terminal job records to the service database. The
// job_history table is created by the db package migrations.
type History struct {
	db *sql.DB
}

// NewHistory creates a history store over an open database.
func NewHistory(sqldb *sql.DB) *History {
	return &History{db: sqldb}
}

// Save upserts a terminal job record.
func (h *History) Save(ctx context.Context, record Record) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO job_history (id, status, submitted_at, started_at, finished_at, error)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			error = excluded.error`,
		record.ID.String(), string(record.Status), record.SubmittedAt,
		record.StartedAt, record.FinishedAt, nullableString(record.Error),
	)
	if err != nil {
		return fmt.Errorf("save job history: %w", err)
	}
	return nil
}

// Recent returns up to limit records ordered by submission time, newest
// first.
func (h *History) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, status, submitted_at, started_at, finished_at, error
		FROM job_history
		ORDER BY submitted_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query job history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var record Record
		var id string
		var errMsg sql.NullString
		if err := rows.Scan(&id, &record.Status, &record.SubmittedAt,
			&record.StartedAt, &record.FinishedAt, &errMsg); err != nil {
			return nil, fmt.Errorf("scan job history: %w", err)
		}
		parsed, err := parseUUID(id)
		if err != nil {
			return nil, err
		}
		record.ID = parsed
		record.Error = errMsg.String
		out = append(out, record)
	}
	return out, rows.Err()
}

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse job id %q: %w", s, err)
	}
	return id, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

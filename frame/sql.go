package frame

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/winterop-com/servicekit-sub001/domain"
)

// ScanRows drains a SQL result set into a Frame. Column order follows the
// result set; []byte values are converted to strings so drivers that
// return raw bytes for text columns round-trip cleanly.
func ScanRows(rows *sql.Rows) (*Frame, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("result columns: %w", err)
	}

	var data [][]any
	for rows.Next() {
		cells := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range cells {
			if b, ok := v.([]byte); ok {
				cells[i] = string(b)
			}
		}
		data = append(data, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return New(columns, data)
}

// Query executes a query against the database and returns the full result
// as a Frame.
func Query(ctx context.Context, db *sql.DB, query string, args ...any) (*Frame, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	return ScanRows(rows)
}

// InsertInto writes every row of the frame into the named table inside a
// single transaction. The table must already exist with matching columns.
func (f *Frame) InsertInto(ctx context.Context, db *sql.DB, table string) error {
	if len(f.Columns) == 0 {
		return domain.ErrValidation("cannot insert a frame with no columns")
	}

	quoted := make([]string, len(f.Columns))
	placeholders := make([]string, len(f.Columns))
	for i, col := range f.Columns {
		quoted[i] = `"` + strings.ReplaceAll(col, `"`, `""`) + `"`
		placeholders[i] = "?"
	}
	stmt := fmt.Sprintf(
		`INSERT INTO "%s" (%s) VALUES (%s)`,
		strings.ReplaceAll(table, `"`, `""`),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer prepared.Close()

	for i, row := range f.Data {
		if _, err := prepared.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// query.go implements the read-only query executor.
//
// The read path never opens a transaction and never mutates state: input is
// classified first, and anything other than a single SELECT is rejected
// before it reaches the database. Rows are converted to JSON-safe values so
// results can be returned to MCP clients unchanged.

package store

import (
	"context"
	"fmt"
)

// Query executes a single SELECT statement against the working copy and
// returns its columns and rows. Statements of any other kind fail with
// ErrNotRead before execution. Args may be positional (? placeholders) or
// named (sql.Named values for :name placeholders).
func (s *Store) Query(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	if Classify(query) != Read {
		return nil, ErrNotRead
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := &QueryResult{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range cells {
			cells[i] = jsonCell(v)
		}
		result.Rows = append(result.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result.RowCount = len(result.Rows)
	return result, nil
}

// jsonCell converts a scanned database value into something that survives
// JSON encoding. Blobs are summarised as "<N bytes>" since raw bytes would
// be base64-mangled or invalid UTF-8 in a tool result.
func jsonCell(v any) any {
	if b, ok := v.([]byte); ok {
		return fmt.Sprintf("<%d bytes>", len(b))
	}
	return v
}

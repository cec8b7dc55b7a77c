// write.go implements the guarded write executor.
//
// Every write runs inside a transaction scoped to that single statement:
// commit on success, rollback on any execution error. Statement kinds other
// than INSERT, UPDATE, DELETE and REPLACE are rejected before the
// transaction opens, as is multi-statement input. Nothing here retries -
// constraint violations and lock contention are surfaced to the caller.

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Exec executes a single guarded write statement and returns the number of
// rows it affected. Rejected statement kinds fail with ErrNotWrite without
// touching the database. A write affecting more rows than the configured
// ceiling fails with ErrTooManyRows and is rolled back, which protects the
// working copy from runaway unqualified UPDATE or DELETE statements issued
// by an agent.
func (s *Store) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if Classify(query) != Write {
		return 0, ErrNotWrite
	}

	var affected int64
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("execute write: %w", err)
		}
		affected, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("affected rows: %w", err)
		}
		if affected > s.maxWriteRows {
			return fmt.Errorf("%w: %d affected, limit %d", ErrTooManyRows, affected, s.maxWriteRows)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

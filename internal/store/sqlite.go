// sqlite.go provides SQLite connection management and low-level helpers.
//
// Separated to isolate SQLite-specific concerns (pragmas, driver
// registration, transaction ceremony) from the guarded operations. This is
// the only file that imports the SQLite driver.
//
// Design: WAL mode with a busy timeout balances concurrency and durability.
// Concurrent agent sessions may issue overlapping tool calls; WAL lets
// readers proceed during a write, and the storage engine serialises
// conflicting writers so the store needs no locking of its own.

package store

import (
	"context"
	"database/sql"
	"fmt"

	// Register sqlite driver
	_ "modernc.org/sqlite"
)

// DefaultMaxWriteRows is the affected-row ceiling applied to the guarded
// write path when no limit is configured.
const DefaultMaxWriteRows = 10000

// Options configures behaviour that is deployment policy rather than
// hard-coded.
type Options struct {
	// MaxWriteRows caps the affected-row count of a single guarded write.
	// Zero means DefaultMaxWriteRows.
	MaxWriteRows int64
	// ValidateEmail enables format validation of customer email fields.
	ValidateEmail bool
}

// NewOptions returns Options with the defaults used by the server.
func NewOptions() Options {
	return Options{MaxWriteRows: DefaultMaxWriteRows, ValidateEmail: true}
}

// Store is the single owned handle to the working copy. All reads and
// writes, from both the CLI and the MCP server, go through it.
type Store struct {
	db            *sql.DB
	path          string
	tables        tableNames
	maxWriteRows  int64
	validateEmail bool
}

// Open opens the working copy at path and returns a configured Store. The
// caller should call Close on the returned store. Opening fails if the
// database does not contain a recognisable customer/invoice schema, since
// the domain helpers would be unusable.
func Open(path string, opts Options) (*Store, error) {
	// Pragmas ride on the DSN so every pooled connection gets them, not just
	// the one that happens to run an Exec at startup.
	//
	//   foreign_keys: referential integrity is load-bearing for invoice
	//     creation - line items reference the invoice header and tracks.
	//   journal_mode=WAL: allows concurrent readers during writes. Trade-off:
	//     creates -wal and -shm files alongside the working copy.
	//   busy_timeout: how long to wait when another connection holds a lock.
	//     Tool calls complete in milliseconds; five seconds prevents
	//     "database is locked" errors without waiting forever.
	//   synchronous=NORMAL: with WAL this is safe against corruption and much
	//     faster than FULL. The only risk is losing the last transaction on
	//     OS crash, acceptable for a copy that can be re-seeded from base.
	dsn := path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// Fail fast on an unreadable or locked file rather than on the first
	// tool call.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	maxRows := opts.MaxWriteRows
	if maxRows <= 0 {
		maxRows = DefaultMaxWriteRows
	}

	s := &Store{
		db:            db,
		path:          path,
		maxWriteRows:  maxRows,
		validateEmail: opts.ValidateEmail,
	}

	// Resolve the table naming variant once at startup (classic Chinook
	// versus snake_case exports).
	tn, err := detectTables(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.tables = tn

	return s, nil
}

// Close releases the database connection. Call before process exit so
// pending WAL frames are flushed.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the working copy.
func (s *Store) Path() string {
	return s.path
}

// DB exposes the underlying connection for read-only maintenance commands
// (status, integrity checks). Tool handlers must not use it.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Tx executes fn within a database transaction, handling Begin, Commit and
// Rollback automatically. If fn returns an error the transaction is rolled
// back; otherwise it is committed. Context cancellation aborts the
// transaction at the next database call.
func (s *Store) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

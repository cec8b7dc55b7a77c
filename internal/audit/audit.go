// Package audit provides centralised audit logging for chinookd operations.
// Entries are stored in ~/.chinookd/log/chinookd-log.db and track all CLI
// commands and MCP tool invocations, so an operator can answer "which agent
// ran which statement against the working copy, and when".
//
// # Fluent API
//
// Use the fluent builder API to construct and write log entries:
//
//	audit.Event("mcp:run_sql", "read").
//		Detail("rows", result.RowCount).
//		Write(err)
//
//	audit.Event("cli:exec", "write").
//		Detail("affected", n).
//		Write(err)
//
// The source parameter follows the format "cli:{command}" for CLI commands
// or "mcp:{tool}" for MCP tools.
package audit

import (
	"database/sql"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single audit log entry.
type Entry struct {
	Source string // e.g. "cli:query", "mcp:run_sql"
	Action string // verb: read, write, schema, sales, serve
	Table  string // table targeted, when known

	// Timing
	Start int64 // unix timestamp when Event() was called
	End   int64 // unix timestamp when Write() was called

	Success bool           // whether the operation succeeded
	Error   string         // error message if failed
	Detail  map[string]any // operation-specific data (row counts, limits)
}

// Builder constructs a log entry using a fluent API. Create with [Event],
// chain methods to set fields, then call [Builder.Write].
type Builder struct {
	entry Entry
}

// Event creates a new log entry builder for an operation.
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().Unix(),
		},
	}
}

// Table sets the table this operation targets, when it is known up front
// (introspection and domain helpers; raw SQL entries leave it empty).
func (b *Builder) Table(name string) *Builder {
	b.entry.Table = name
	return b
}

// Detail adds a key-value pair to the entry's detail map. Can be called
// multiple times.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write completes the entry, deriving success or failure from err, and
// records it. Best-effort: a logging failure never affects the operation.
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().Unix()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call multiple times. Errors
// are returned but callers may choose to ignore them (best-effort logging).
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	db, err := openLogDB()
	if err != nil {
		return err
	}

	global = &Logger{db: db}
	return nil
}

// SetDataset records which working copy subsequent entries belong to. The
// path is hashed so logs can be aggregated across deployments without
// recording filesystem layout.
func SetDataset(workingPath string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.dataset = hash(workingPath)
	}
}

// Log writes an entry. Safe to call if the logger is not initialised (no-op).
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}

// openLogDB opens and migrates the audit database.
func openLogDB() (*sql.DB, error) {
	p := dbPath()
	if err := ensureDir(p); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

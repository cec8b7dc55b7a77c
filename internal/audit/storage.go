// storage.go implements SQLite-based persistent audit logging.
//
// Separated from audit.go to isolate database concerns: audit.go provides
// the fluent API for building entries, this file handles persistence.
// Errors during logging are reported to stderr but otherwise ignored - a
// tool call should succeed even if we cannot record it.

package audit

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
)

// Logger writes audit log entries to a SQLite database.
type Logger struct {
	db      *sql.DB
	dataset string
}

func (l *Logger) log(e Entry) {
	var detail *string
	if len(e.Detail) > 0 {
		if b, err := json.Marshal(e.Detail); err == nil {
			s := string(b)
			detail = &s
		}
	}

	success := 0
	if e.Success {
		success = 1
	}

	_, err := l.db.Exec(`
		INSERT INTO log (start, end, dataset, source, action, tbl, success, error, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Start, e.End, l.dataset, e.Source, e.Action,
		nilIfEmpty(e.Table), success, nilIfEmpty(e.Error), detail,
	)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "chinookd: audit log write failed: %v\n", err)
	}
}

// dbPathFunc is the function that returns the database path.
// Tests can override this to use a temp directory.
var dbPathFunc = defaultDBPath

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fall back to the current directory in unusual environments
		// (containers without HOME) rather than silently failing.
		return filepath.Join(".chinookd", "log", "chinookd-log.db")
	}
	return filepath.Join(home, ".chinookd", "log", "chinookd-log.db")
}

func dbPath() string {
	return dbPathFunc()
}

// DBPath returns the path to the audit log database.
func DBPath() string {
	return dbPath()
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}

// hash creates a dataset identifier from the working-copy path, enabling
// cross-deployment log queries while preserving privacy.
func hash(s string) string {
	h, err := blake2b.New(8, nil) // 64-bit = 16 hex chars
	if err != nil {
		// Cannot happen with a nil key, but don't silently ignore.
		panic("blake2b.New failed: " + err.Error())
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// migrate creates the log table if it doesn't exist.
func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS log (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			start   INTEGER NOT NULL,
			end     INTEGER NOT NULL,
			dataset TEXT NOT NULL,
			source  TEXT NOT NULL,
			action  TEXT NOT NULL,
			tbl     TEXT,
			success INTEGER NOT NULL,
			error   TEXT,
			detail  TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_log_start ON log(start);
		CREATE INDEX IF NOT EXISTS idx_log_dataset ON log(dataset);
		CREATE INDEX IF NOT EXISTS idx_log_source ON log(source);
	`)
	return err
}

// nilIfEmpty returns nil for empty strings, keeping NULLs queryable.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
